package cache

import (
	"context"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-request-cache/durable"
)

// RawPayload is the form data takes when an entry has been hydrated from the
// durable tier: the still-encoded bytes of the original value. Typed access
// through Get decodes it on demand.
type RawPayload = durable.RawPayload

// CacheService exposes the two-tier request cache. Implementations never
// propagate durable-tier failures: the medium being unavailable, full, or
// corrupt degrades the operation to memory-only behaviour and is reported
// through the configured logger.
type CacheService interface {
	// Get returns the data stored under key, or false when no valid entry
	// exists in either tier. Expired entries are never returned.
	Get(ctx context.Context, key string) (any, bool)

	// Set stores data under key with the given ttl, overwriting any prior
	// entry. A zero ttl uses the configured default. When persist is true
	// the entry is mirrored to the durable tier.
	Set(ctx context.Context, key string, data any, ttl time.Duration, persist bool)

	// Has reports whether a valid entry exists for key.
	Has(ctx context.Context, key string) bool

	// Delete removes key from both tiers. Idempotent.
	Delete(ctx context.Context, key string)

	// Clear empties both tiers.
	Clear(ctx context.Context)

	// ClearMatching removes every key that contains pattern as a
	// substring, across both tiers.
	ClearMatching(ctx context.Context, pattern string)

	// CleanExpired evicts expired in-memory entries and reports how many
	// were removed. Durable records are validated lazily on Get.
	CleanExpired(ctx context.Context) int

	// Close releases the durable medium, if any.
	Close() error
}

// Get is the typed access helper for CacheService. In-memory values are
// type-asserted to T; values hydrated from the durable tier arrive as
// RawPayload and are msgpack-decoded into T. A value that neither asserts
// nor decodes reads as a miss.
func Get[T any](ctx context.Context, s CacheService, key string) (T, bool) {
	v, ok := s.Get(ctx, key)
	if !ok {
		var zero T
		return zero, false
	}
	return Decode[T](v)
}

// Decode converts a value returned by CacheService.Get into T.
func Decode[T any](v any) (T, bool) {
	if raw, ok := v.(RawPayload); ok {
		var out T
		if err := msgpack.Unmarshal(raw, &out); err != nil {
			var zero T
			return zero, false
		}
		return out, true
	}
	t, ok := v.(T)
	return t, ok
}
