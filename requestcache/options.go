package requestcache

import (
	"time"

	"golang.org/x/sync/singleflight"
)

// Options control a single binding. The zero value is not useful; start
// from DefaultOptions.
type Options struct {
	// TTL for entries written by this binding. Zero uses the facade
	// default.
	TTL time.Duration

	// Enabled gates the binding entirely. A disabled binding never reads
	// the cache and never invokes its producer.
	Enabled bool

	// RefetchOnMount forces a producer call on Activate even when a fresh
	// cached entry exists.
	RefetchOnMount bool

	// Persist mirrors results written by this binding to the durable tier.
	Persist bool

	// Flight, when set, deduplicates concurrent producer invocations
	// across all bindings sharing both this group and a cache key.
	// Bindings without a group fetch independently.
	Flight *singleflight.Group
}

// DefaultOptions returns the standard binding options: enabled, facade TTL,
// no refetch on mount, memory-only, independent fetches.
func DefaultOptions() Options {
	return Options{Enabled: true}
}
