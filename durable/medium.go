// Package durable defines the process-surviving key-value tier used to warm
// the in-memory cache across restarts, and provides the default SQLite-backed
// implementation.
//
// A Medium is externally mutable storage: another process may clear or alter
// it at any time. Callers must treat every read as potentially absent or
// corrupt and never assume a record is permanent.
package durable

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports that no record exists for the requested key.
	ErrNotFound = errors.New("durable: record not found")

	// ErrQuotaExceeded reports that a write was rejected because it would
	// exceed the medium's byte budget.
	ErrQuotaExceeded = errors.New("durable: quota exceeded")
)

// RawPayload is the encoded form of a cached value as it lives in a Medium.
// Values hydrated from the durable tier surface as RawPayload and are decoded
// into the caller's type at the typed access boundary.
type RawPayload []byte

// Record is the envelope persisted for a single cache entry. The payload is
// stored pre-encoded so the medium stays byte-transparent.
type Record struct {
	Payload   RawPayload `msgpack:"payload"`
	Timestamp time.Time  `msgpack:"ts"`
	Expiry    time.Time  `msgpack:"exp"`
}

// Expired reports whether the record is past its expiry at now, strictly.
func (r Record) Expired(now time.Time) bool {
	return now.After(r.Expiry)
}

// Medium is a synchronous key-value store for namespaced cache records.
//
// Implementations must be safe for concurrent use and byte-transparent: Get
// returns exactly the bytes previously passed to Set for the same key.
type Medium interface {
	// Get returns the stored bytes for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, overwriting any prior record. Returns
	// ErrQuotaExceeded when the write would exceed the storage budget.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Keys enumerates all stored keys that start with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Clear removes every key that starts with prefix. An empty prefix
	// removes everything.
	Clear(ctx context.Context, prefix string) error

	// Close releases resources held by the medium.
	Close() error
}
