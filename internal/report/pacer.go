package report

import (
	"context"
	"sync"
	"time"
)

// DefaultPaceInterval is the minimum spacing between provider requests.
// The provider enforces a requests-per-second ceiling; a single shared gate
// keeps the whole pool under it, whereas per-worker sleeps would not.
const DefaultPaceInterval = 200 * time.Millisecond

// Pacer grants dispatch slots no closer together than a fixed interval,
// process-wide. Safe for concurrent use.
type Pacer struct {
	interval time.Duration
	mu       sync.Mutex
	next     time.Time
}

// NewPacer creates a Pacer with the given minimum spacing. A non-positive
// interval disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until a dispatch slot is available or ctx is cancelled.
// The slot reservation happens under the lock; the sleep does not, so one
// waiter cannot stall the others' reservations.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.interval <= 0 {
		return ctx.Err()
	}

	p.mu.Lock()
	now := time.Now()
	slot := p.next
	if slot.Before(now) {
		slot = now
	}
	p.next = slot.Add(p.interval)
	p.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
