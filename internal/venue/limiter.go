package venue

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces outgoing requests by a minimum gap. Adapters own their
// pacing; concurrent callers queue here instead of bursting at the venue.
type Limiter struct {
	mu    sync.Mutex
	next  time.Time
	every time.Duration
}

func NewLimiter(every time.Duration) *Limiter {
	return &Limiter{every: every}
}

// Wait blocks until the caller's slot arrives or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.every <= 0 {
		return nil
	}
	l.mu.Lock()
	now := time.Now()
	at := l.next
	if at.Before(now) {
		at = now
	}
	l.next = at.Add(l.every)
	l.mu.Unlock()

	d := time.Until(at)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
