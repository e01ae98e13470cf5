package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// countingService stubs CacheService so the sweeper's cadence is observable.
type countingService struct {
	CacheService
	sweeps atomic.Int32
}

func (c *countingService) CleanExpired(context.Context) int {
	c.sweeps.Add(1)
	return 0
}

func TestSweeper_RunsAtInterval(t *testing.T) {
	svc := &countingService{}
	s := NewSweeper(svc, 10*time.Millisecond)

	s.Start(context.Background())
	time.Sleep(55 * time.Millisecond)
	s.Stop()

	if n := svc.sweeps.Load(); n < 2 {
		t.Fatalf("expected at least 2 sweeps, got %d", n)
	}
}

func TestSweeper_StopEndsTheLoop(t *testing.T) {
	svc := &countingService{}
	s := NewSweeper(svc, 5*time.Millisecond)

	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	after := svc.sweeps.Load()
	time.Sleep(25 * time.Millisecond)
	if svc.sweeps.Load() != after {
		t.Fatal("expected no sweeps after Stop")
	}
}

func TestSweeper_StopIsIdempotent(t *testing.T) {
	s := NewSweeper(&countingService{}, time.Minute)
	s.Stop()
	s.Stop() // must not panic
}

func TestSweeper_StartIsOnce(t *testing.T) {
	svc := &countingService{}
	s := NewSweeper(svc, 10*time.Millisecond)
	defer s.Stop()

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx) // second call is a no-op, not a second loop

	time.Sleep(25 * time.Millisecond)
	if n := svc.sweeps.Load(); n > 4 {
		t.Fatalf("suspiciously many sweeps for a single loop: %d", n)
	}
}

func TestSweeper_ContextCancelEndsTheLoop(t *testing.T) {
	svc := &countingService{}
	s := NewSweeper(svc, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()

	time.Sleep(10 * time.Millisecond)
	after := svc.sweeps.Load()
	time.Sleep(25 * time.Millisecond)
	if svc.sweeps.Load() != after {
		t.Fatal("expected no sweeps after context cancellation")
	}
}
