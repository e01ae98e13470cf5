// Package cache provides the public surface of the request cache: the
// CacheService interface, typed access helpers, key serialization, and the
// periodic expiry sweeper.
//
// # Overview
//
// The cache is two-tiered. An in-memory entry store is authoritative while
// the process lives; entries flagged for persistence are mirrored into a
// durable medium (see the durable package) and hydrated back on a miss after
// a restart. All entries carry a TTL and are logically absent strictly after
// their expiry instant.
//
// # Key Convention
//
// Keys are opaque strings to the facade, but the invalidation layer matches
// them by substring. Callers therefore adopt the "<entity>:<queryParams>"
// convention, which the default KeySerializer produces:
//
//	serializer := cache.NewDefaultKeySerializer()
//	key := serializer.SerializeKey("products", map[string]any{"cat": 3})
//	// "products:{cat=3}"
//
// This is a documented caller contract, not enforced by the type system;
// keys outside the convention simply fall outside pattern invalidation.
//
// # Typed Access
//
// CacheService stores data as any. Use the generic helper for typed reads;
// it also transparently decodes payloads hydrated from the durable tier:
//
//	products, ok := cache.Get[[]Product](ctx, svc, key)
//
// # Failure Semantics
//
// Durable-tier failures (quota exhaustion, corrupt records, an unavailable
// medium) never reach callers. The facade degrades to memory-only behaviour
// for the failing operation and reports through its slog logger.
//
// # Sweeping
//
// A single Sweeper, started at bootstrap, calls CleanExpired at a fixed
// interval so abandoned entries do not accumulate between reads. Durable
// records are validated lazily on Get instead, which bounds sweep cost to
// the in-memory set.
package cache
