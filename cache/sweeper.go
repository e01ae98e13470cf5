package cache

import (
	"context"
	"sync"
	"time"
)

// Sweeper periodically evicts expired in-memory entries. One sweeper is
// started during application bootstrap and runs for the process lifetime;
// Stop exists for controlled teardown.
type Sweeper struct {
	svc      CacheService
	interval time.Duration
	done     chan struct{}
	start    sync.Once
	stop     sync.Once
}

// NewSweeper creates a sweeper that calls CleanExpired on svc every
// interval. A non-positive interval falls back to one minute.
func NewSweeper(svc CacheService, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{svc: svc, interval: interval, done: make(chan struct{})}
}

// Start launches the sweep loop. Subsequent calls are no-ops.
func (s *Sweeper) Start(ctx context.Context) {
	s.start.Do(func() {
		go s.loop(ctx)
	})
}

// Stop ends the sweep loop. Idempotent and safe before Start.
func (s *Sweeper) Stop() {
	s.stop.Do(func() {
		close(s.done)
	})
}

func (s *Sweeper) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.svc.CleanExpired(ctx)
		}
	}
}
