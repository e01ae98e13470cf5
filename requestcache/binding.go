package requestcache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-request-cache/cache"
)

var (
	// ErrSuperseded reports that a producer settled after the binding was
	// deactivated or after a newer fetch took over; its result was
	// discarded without touching the cache or the binding state.
	ErrSuperseded = errors.New("requestcache: fetch superseded")

	// ErrDisabled reports that the binding was created with Enabled=false.
	ErrDisabled = errors.New("requestcache: binding disabled")

	// ErrInactive reports a Refetch on a binding that is not active.
	ErrInactive = errors.New("requestcache: binding not active")
)

// Producer fetches the value for a binding's key from the source of truth.
// The cache treats it as opaque and applies no retry policy; a producer that
// wants true cancellation must honor ctx itself.
type Producer[T any] func(ctx context.Context) (T, error)

// State is a point-in-time view of a binding for the UI layer.
type State[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Err     error
}

// Binding ties one consumer to a cache key and a producer. Bindings are
// ephemeral and never shared: two bindings on the same key each perform
// their own lookup against the shared facade.
//
// Activate and Refetch block until the fetch settles; UI callers run them in
// a goroutine and observe progress through Snapshot. Commits are guarded by
// liveness and a generation counter, so a stale completion can never
// overwrite the result of a later fetch regardless of settle order.
type Binding[T any] struct {
	id       string
	svc      cache.CacheService
	key      string
	producer Producer[T]
	opts     Options
	log      *slog.Logger

	mu      sync.Mutex
	active  bool
	gen     uint64
	data    T
	hasData bool
	loading bool
	err     error
}

// NewBinding creates a binding for key backed by producer. A nil logger
// falls back to slog.Default().
func NewBinding[T any](svc cache.CacheService, key string, producer Producer[T], opts Options, logger *slog.Logger) *Binding[T] {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Binding[T]{
		id:       id,
		svc:      svc,
		key:      key,
		producer: producer,
		opts:     opts,
		log:      logger.With("binding", id[:8], "key", key),
	}
}

// ID returns the binding's unique identifier, useful for log correlation.
func (b *Binding[T]) ID() string { return b.id }

// Key returns the cache key the binding is bound to.
func (b *Binding[T]) Key() string { return b.key }

// Activate makes the binding live and performs the initial load. When
// RefetchOnMount is off and a fresh cached value exists it is adopted
// immediately and the producer is never invoked; otherwise the producer runs
// and its result is written through the facade with the binding's TTL and
// persist options.
func (b *Binding[T]) Activate(ctx context.Context) error {
	if !b.opts.Enabled {
		return ErrDisabled
	}

	b.mu.Lock()
	b.active = true

	if !b.opts.RefetchOnMount {
		if v, ok := cache.Get[T](ctx, b.svc, b.key); ok {
			b.data, b.hasData = v, true
			b.loading = false
			b.err = nil
			b.mu.Unlock()
			return nil
		}
	}

	gen := b.beginFetchLocked()
	b.mu.Unlock()

	return b.fetch(ctx, gen)
}

// Refetch drops the cached entry for the key, then fetches unconditionally.
// This is the only caller-triggered path that forces a round-trip to the
// producer regardless of TTL.
func (b *Binding[T]) Refetch(ctx context.Context) error {
	if !b.opts.Enabled {
		return ErrDisabled
	}

	b.mu.Lock()
	if !b.active {
		b.mu.Unlock()
		return ErrInactive
	}
	gen := b.beginFetchLocked()
	b.mu.Unlock()

	b.svc.Delete(ctx, b.key)
	return b.fetch(ctx, gen)
}

// Deactivate clears liveness. Producer results that settle afterwards are
// discarded: no cache write, no state mutation. The underlying request is
// not cancelled, only the handling of its result.
func (b *Binding[T]) Deactivate() {
	b.mu.Lock()
	b.active = false
	b.loading = false
	b.gen++
	b.mu.Unlock()
}

// Snapshot returns the binding's current data, loading, and error state.
func (b *Binding[T]) Snapshot() State[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State[T]{Data: b.data, HasData: b.hasData, Loading: b.loading, Err: b.err}
}

// Active reports whether the binding is live.
func (b *Binding[T]) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// beginFetchLocked claims a fetch generation and marks the binding loading.
// Caller must hold the mutex.
func (b *Binding[T]) beginFetchLocked() uint64 {
	b.gen++
	b.loading = true
	b.err = nil
	return b.gen
}

// fetch runs the producer and commits the outcome, unless the binding was
// deactivated or a newer fetch claimed a later generation while the producer
// was in flight.
func (b *Binding[T]) fetch(ctx context.Context, gen uint64) error {
	result, err := b.invoke(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.active || gen != b.gen {
		b.log.Debug("discarding superseded fetch result")
		return ErrSuperseded
	}

	b.loading = false
	if err != nil {
		// The stale cache entry, if any, is left untouched.
		b.err = err
		return err
	}

	b.data, b.hasData, b.err = result, true, nil
	b.svc.Set(ctx, b.key, result, b.opts.TTL, b.opts.Persist)
	return nil
}

// invoke runs the producer, deduplicated through the shared flight group
// when one is configured.
func (b *Binding[T]) invoke(ctx context.Context) (T, error) {
	if b.opts.Flight == nil {
		return b.producer(ctx)
	}

	v, err, _ := b.opts.Flight.Do(b.key, func() (any, error) {
		return b.producer(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, errors.New("requestcache: flight result has unexpected type")
	}
	return out, nil
}
