package sync

import (
	"context"
	"sync"
	"time"
)

// Pacer throttles remote write operations. Wait blocks until the next write
// slot is available or the context is canceled.
type Pacer interface {
	Wait(ctx context.Context) error
}

// IntervalPacer enforces a minimum spacing between calls. The first call
// passes immediately. Safe for concurrent use.
type IntervalPacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

var _ Pacer = (*IntervalPacer)(nil)

// NewIntervalPacer creates a pacer with the given minimum spacing.
func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{interval: interval}
}

// Wait blocks until the spacing since the previous call has elapsed.
func (p *IntervalPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	wait := p.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	p.next = now.Add(wait + p.interval)
	p.mu.Unlock()

	if wait == 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NopPacer performs no throttling. Used in tests and manual admin runs where
// pacing is not wanted.
type NopPacer struct{}

var _ Pacer = (*NopPacer)(nil)

// Wait returns immediately.
func (NopPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}
