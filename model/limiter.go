package model

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter bounds model usage two ways: a hard budget of calls per run and
// a sustained request rate with burst capacity. Both checks happen in
// Acquire, which agents call before every Generate.
type Limiter struct {
	max     int
	count   int
	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewLimiter creates a limiter allowing max calls in total and rps
// requests per second. max == 0 means no call budget; rps <= 0 disables
// rate limiting.
func NewLimiter(max int, rps float64, burst int) *Limiter {
	l := &Limiter{max: max}
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return l
}

// Acquire blocks until the rate limiter admits the call, then counts it
// against the budget. Returns an error when the budget is exhausted or
// the context is cancelled while waiting.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.limiter != nil {
		if err := l.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("model rate limit: %w", err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.count++
	if l.max > 0 && l.count > l.max {
		return fmt.Errorf("exceeded max model calls: %d", l.max)
	}

	return nil
}

// Count returns the current number of calls made.
func (l *Limiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.count
}

// Remaining returns how many calls are left before hitting the budget.
func (l *Limiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max == 0 {
		return -1 // unlimited
	}

	return l.max - l.count
}
