package cacheinfra

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-request-cache/durable"
)

// Config holds the settings for the two-tier facade. It mirrors the public
// cache.Config; the cache package converts between the two at the boundary.
type Config struct {
	// DefaultTTL is applied when Set receives a zero ttl.
	DefaultTTL time.Duration

	// Namespace prefixes every key written to the durable medium so the
	// cache can share the medium with other tenants.
	Namespace string

	// MaxPersistBytes caps the encoded size of a single durable record.
	// Larger entries stay memory-only for the process lifetime.
	MaxPersistBytes int

	// Medium is the optional durable tier. Nil means memory-only.
	Medium durable.Medium

	// Logger receives durable-tier diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// Facade is the two-tier cache: an in-memory entry store that is
// authoritative while the process lives, optionally mirrored into a durable
// medium for persist-flagged entries and warmed back from it on a miss.
//
// Durable failures never propagate: the facade degrades to memory-only
// behaviour for the failing operation and reports through the logger.
type Facade struct {
	entries   *xsync.MapOf[string, Entry]
	medium    durable.Medium
	namespace string
	ttl       time.Duration
	maxBytes  int
	log       *slog.Logger

	// now is swapped in tests to pin expiry boundaries.
	now func() time.Time
}

// NewFacade builds a facade from cfg, filling unset fields with the
// defaults the public cache package documents.
func NewFacade(cfg Config) *Facade {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	if cfg.MaxPersistBytes <= 0 {
		cfg.MaxPersistBytes = 5 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Facade{
		entries:   xsync.NewMapOf[string, Entry](),
		medium:    cfg.Medium,
		namespace: cfg.Namespace,
		ttl:       cfg.DefaultTTL,
		maxBytes:  cfg.MaxPersistBytes,
		log:       cfg.Logger,
		now:       time.Now,
	}
}

// Set stores data under key with the given ttl, overwriting any prior entry
// wholesale. A zero ttl falls back to the facade default. Persist-flagged
// entries are mirrored to the durable tier; a mirror that fails or exceeds
// the size ceiling is skipped and the in-memory copy stays authoritative.
func (f *Facade) Set(ctx context.Context, key string, data any, ttl time.Duration, persist bool) {
	if ttl <= 0 {
		ttl = f.ttl
	}
	now := f.now()
	e := Entry{Data: data, Timestamp: now, Expiry: now.Add(ttl), Persist: persist}
	f.entries.Store(key, e)

	if persist {
		f.mirror(ctx, key, e)
	}
}

// Get returns the data stored under key, or false when no valid entry exists
// in either tier. Expired entries are never returned. On a memory miss the
// durable tier is consulted; a still-fresh record is re-inserted into the
// entry store with its payload surfaced as durable.RawPayload.
func (f *Facade) Get(ctx context.Context, key string) (any, bool) {
	if e, ok := f.entries.Load(key); ok {
		if !e.Expired(f.now()) {
			return e.Data, true
		}
		f.entries.Delete(key)
		if e.Persist {
			f.dropDurable(ctx, key)
		}
		return nil, false
	}
	return f.hydrate(ctx, key)
}

// Has reports whether a valid entry exists for key. Hydration from the
// durable tier is the only side effect.
func (f *Facade) Has(ctx context.Context, key string) bool {
	_, ok := f.Get(ctx, key)
	return ok
}

// Delete removes key from both tiers. Idempotent; missing keys are a no-op.
func (f *Facade) Delete(ctx context.Context, key string) {
	f.entries.Delete(key)
	f.dropDurable(ctx, key)
}

// Clear empties both tiers.
func (f *Facade) Clear(ctx context.Context) {
	f.entries.Clear()
	if f.medium == nil {
		return
	}
	if err := f.medium.Clear(ctx, f.namespace); err != nil {
		f.log.Warn("durable clear failed", "error", err)
	}
}

// ClearMatching removes every key containing pattern as a substring, in both
// tiers. Durable keys carry the namespace prefix and are matched after
// stripping it; matching the namespaced key directly would silently miss
// durable entries.
func (f *Facade) ClearMatching(ctx context.Context, pattern string) {
	f.entries.Range(func(k string, _ Entry) bool {
		if strings.Contains(k, pattern) {
			f.entries.Delete(k)
		}
		return true
	})

	if f.medium == nil {
		return
	}
	keys, err := f.medium.Keys(ctx, f.namespace)
	if err != nil {
		f.log.Warn("durable key scan failed", "pattern", pattern, "error", err)
		return
	}
	for _, nk := range keys {
		if !strings.Contains(strings.TrimPrefix(nk, f.namespace), pattern) {
			continue
		}
		if err := f.medium.Delete(ctx, nk); err != nil {
			f.log.Warn("durable delete failed", "key", nk, "error", err)
		}
	}
}

// CleanExpired evicts every expired in-memory entry and reports how many
// were removed. The durable tier is not scanned; its records are validated
// lazily on Get, which bounds sweep cost to the in-memory set.
func (f *Facade) CleanExpired(_ context.Context) int {
	now := f.now()
	removed := 0
	f.entries.Range(func(k string, e Entry) bool {
		if e.Expired(now) {
			f.entries.Delete(k)
			removed++
		}
		return true
	})
	return removed
}

// Close releases the durable medium, if any.
func (f *Facade) Close() error {
	if f.medium == nil {
		return nil
	}
	return f.medium.Close()
}

// mirror serializes the entry and writes it behind the namespace prefix.
// Every failure path degrades to memory-only and logs.
func (f *Facade) mirror(ctx context.Context, key string, e Entry) {
	if f.medium == nil {
		return
	}

	payload, err := msgpack.Marshal(e.Data)
	if err != nil {
		f.log.Warn("durable write skipped: payload not serializable", "key", key, "error", err)
		return
	}
	rec, err := msgpack.Marshal(durable.Record{
		Payload:   payload,
		Timestamp: e.Timestamp,
		Expiry:    e.Expiry,
	})
	if err != nil {
		f.log.Warn("durable write skipped: record not serializable", "key", key, "error", err)
		return
	}
	if len(rec) > f.maxBytes {
		f.log.Warn("durable write skipped: record exceeds size ceiling",
			"key", key, "size", len(rec), "ceiling", f.maxBytes)
		return
	}

	if err := f.medium.Set(ctx, f.namespace+key, rec); err != nil {
		f.log.Warn("durable write failed, entry stays memory-only", "key", key, "error", err)
	}
}

// hydrate attempts to restore key from the durable tier. Corrupt or expired
// records are deleted opportunistically and read as absent.
func (f *Facade) hydrate(ctx context.Context, key string) (any, bool) {
	if f.medium == nil {
		return nil, false
	}

	raw, err := f.medium.Get(ctx, f.namespace+key)
	if err != nil {
		if !errors.Is(err, durable.ErrNotFound) {
			f.log.Warn("durable read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var rec durable.Record
	if err := msgpack.Unmarshal(raw, &rec); err != nil {
		f.log.Warn("dropping corrupt durable record", "key", key, "error", err)
		f.dropDurable(ctx, key)
		return nil, false
	}
	if !rec.Expiry.After(rec.Timestamp) || rec.Expired(f.now()) {
		f.dropDurable(ctx, key)
		return nil, false
	}

	e := Entry{
		Data:      rec.Payload,
		Timestamp: rec.Timestamp,
		Expiry:    rec.Expiry,
		Persist:   true,
	}
	f.entries.Store(key, e)
	return e.Data, true
}

func (f *Facade) dropDurable(ctx context.Context, key string) {
	if f.medium == nil {
		return
	}
	if err := f.medium.Delete(ctx, f.namespace+key); err != nil {
		f.log.Warn("durable delete failed", "key", key, "error", err)
	}
}
