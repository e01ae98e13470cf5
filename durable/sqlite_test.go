package durable

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestMedium(t *testing.T, maxBytes int64) *SQLiteMedium {
	t.Helper()
	m, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"), maxBytes)
	if err != nil {
		t.Fatalf("open sqlite medium: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestSQLite_SetGetRoundTrip(t *testing.T) {
	m := newTestMedium(t, 0)
	ctx := context.Background()

	if err := m.Set(ctx, "poscache:products:all", []byte("payload")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := m.Get(ctx, "poscache:products:all")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q, want %q", got, "payload")
	}
}

func TestSQLite_GetMissingIsErrNotFound(t *testing.T) {
	m := newTestMedium(t, 0)

	_, err := m.Get(context.Background(), "poscache:nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLite_SetOverwrites(t *testing.T) {
	m := newTestMedium(t, 0)
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("first")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Set(ctx, "k", []byte("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("got %q, want %q", got, "second")
	}
}

func TestSQLite_DeleteIsIdempotent(t *testing.T) {
	m := newTestMedium(t, 0)
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLite_KeysByPrefix(t *testing.T) {
	m := newTestMedium(t, 0)
	ctx := context.Background()

	for _, k := range []string{"poscache:products:all", "poscache:units:all", "other:products:all"} {
		if err := m.Set(ctx, k, []byte("v")); err != nil {
			t.Fatalf("set %q: %v", k, err)
		}
	}

	keys, err := m.Keys(ctx, "poscache:")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	want := []string{"poscache:products:all", "poscache:units:all"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range keys {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}

func TestSQLite_ClearByPrefix(t *testing.T) {
	m := newTestMedium(t, 0)
	ctx := context.Background()

	for _, k := range []string{"poscache:a", "poscache:b", "other:c"} {
		if err := m.Set(ctx, k, []byte("v")); err != nil {
			t.Fatalf("set %q: %v", k, err)
		}
	}

	if err := m.Clear(ctx, "poscache:"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if keys, _ := m.Keys(ctx, "poscache:"); len(keys) != 0 {
		t.Fatalf("expected prefix cleared, got %v", keys)
	}
	if _, err := m.Get(ctx, "other:c"); err != nil {
		t.Fatalf("unrelated prefix must survive: %v", err)
	}
}

func TestSQLite_PrefixMetacharactersMatchLiterally(t *testing.T) {
	m := newTestMedium(t, 0)
	ctx := context.Background()

	if err := m.Set(ctx, "pos_cache:a", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Set(ctx, "posXcache:b", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}

	// "_" is a LIKE wildcard; an unescaped prefix would match both keys.
	keys, err := m.Keys(ctx, "pos_cache:")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "pos_cache:a" {
		t.Fatalf("expected literal prefix match only, got %v", keys)
	}
}

func TestSQLite_QuotaExceeded(t *testing.T) {
	m := newTestMedium(t, 10)
	ctx := context.Background()

	if err := m.Set(ctx, "a", []byte("12345678")); err != nil {
		t.Fatalf("set within budget: %v", err)
	}
	err := m.Set(ctx, "b", []byte("12345678"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if _, err := m.Get(ctx, "a"); err != nil {
		t.Fatalf("existing record must survive rejected write: %v", err)
	}
}

func TestSQLite_QuotaExcludesOverwrittenKey(t *testing.T) {
	m := newTestMedium(t, 10)
	ctx := context.Background()

	if err := m.Set(ctx, "a", []byte("12345678")); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Replacing a key counts only the new value against the budget.
	if err := m.Set(ctx, "a", []byte("123456789")); err != nil {
		t.Fatalf("overwrite within budget: %v", err)
	}
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	m, err := NewSQLite(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := m.Set(ctx, "k", []byte("persisted")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	m, err = NewSQLite(path, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer m.Close()

	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != "persisted" {
		t.Fatalf("got %q, want %q", got, "persisted")
	}
}

func TestRecordExpiredIsStrict(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := Record{Timestamp: at.Add(-time.Minute), Expiry: at}

	if r.Expired(at) {
		t.Fatal("record at exact expiry instant must still be valid")
	}
	if !r.Expired(at.Add(time.Nanosecond)) {
		t.Fatal("record past expiry must be expired")
	}
}
