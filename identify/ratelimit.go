package identify

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces outbound identification calls at least one interval
// apart. The mutex is held through the wait, so concurrent callers
// serialize: each grant lands at least interval after the previous one.
// Fairness among waiters is not guaranteed, only eventual progress.
type RateLimiter struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewRateLimiter creates a limiter with the given minimum spacing. The
// first Acquire is granted immediately.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Acquire blocks until at least interval has elapsed since the previous
// grant, then records the new grant time. Cancelling ctx aborts the wait
// without consuming a grant.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.last.IsZero() {
		if remaining := r.interval - time.Since(r.last); remaining > 0 {
			timer := time.NewTimer(remaining)
			defer timer.Stop()

			select {
			case <-timer.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	r.last = time.Now()
	return nil
}
