package cacheinfra

import "time"

// Entry is a single cached value with its expiry metadata. The cache never
// mutates Data; ownership stays with the entry until it is overwritten or
// evicted.
type Entry struct {
	Data      any
	Timestamp time.Time
	Expiry    time.Time
	Persist   bool
}

// Expired reports whether the entry is past its expiry at now. Expiry itself
// is still valid; the entry is absent strictly after that instant.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.Expiry)
}
