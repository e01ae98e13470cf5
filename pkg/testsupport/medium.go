// Package testsupport provides shared test doubles for the cache packages:
// a fault-injecting in-memory durable medium and a manual clock.
package testsupport

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-request-cache/durable"
)

// ErrMediumDown is returned by a FakeMedium whose reads or writes have been
// forced to fail.
var ErrMediumDown = errors.New("testsupport: medium unavailable")

// FakeMedium is an in-memory durable.Medium with failure injection. It
// doubles as a spy: call counters let tests assert which tier an operation
// touched.
type FakeMedium struct {
	mu      sync.Mutex
	records map[string][]byte

	// MaxBytes bounds the total stored payload; zero means unlimited.
	// Writes beyond the budget fail with durable.ErrQuotaExceeded.
	MaxBytes int

	// FailReads and FailWrites force the corresponding operations to
	// return ErrMediumDown.
	FailReads  bool
	FailWrites bool

	GetCalls    int
	SetCalls    int
	DeleteCalls int
}

// NewFakeMedium returns an empty fake medium.
func NewFakeMedium() *FakeMedium {
	return &FakeMedium{records: make(map[string][]byte)}
}

func (m *FakeMedium) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.FailReads {
		return nil, ErrMediumDown
	}
	v, ok := m.records[key]
	if !ok {
		return nil, durable.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *FakeMedium) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.FailWrites {
		return ErrMediumDown
	}
	if m.MaxBytes > 0 {
		used := 0
		for k, v := range m.records {
			if k != key {
				used += len(v)
			}
		}
		if used+len(value) > m.MaxBytes {
			return durable.ErrQuotaExceeded
		}
	}
	m.records[key] = append([]byte(nil), value...)
	return nil
}

func (m *FakeMedium) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.FailWrites {
		return ErrMediumDown
	}
	delete(m.records, key)
	return nil
}

func (m *FakeMedium) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailReads {
		return nil, ErrMediumDown
	}
	var keys []string
	for k := range m.records {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *FakeMedium) Clear(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return ErrMediumDown
	}
	for k := range m.records {
		if strings.HasPrefix(k, prefix) {
			delete(m.records, k)
		}
	}
	return nil
}

func (m *FakeMedium) Close() error { return nil }

// Corrupt overwrites the stored bytes for key with garbage, simulating
// external mutation of the storage medium.
func (m *FakeMedium) Corrupt(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; ok {
		m.records[key] = []byte{0xff, 0x00, 0xde, 0xad}
	}
}

// Drop silently removes key, simulating the host clearing storage behind
// the cache's back.
func (m *FakeMedium) Drop(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
}

// Len returns the number of stored records.
func (m *FakeMedium) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

var _ durable.Medium = (*FakeMedium)(nil)
