package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Option configures a TokenBucket.
type Option func(*TokenBucket)

// WithClock overrides the bucket's time source. Tests use this to advance
// time deterministically instead of sleeping.
func WithClock(now func() time.Time) Option {
	return func(b *TokenBucket) {
		b.now = now
	}
}

// TokenBucket tracks an available-token balance that refills continuously
// over wall-clock time. The balance is refilled lazily: every read or
// mutation first credits the tokens accrued since the previous access, so
// no background timer is needed.
//
// The balance is held as a float so that sub-second refill increments are
// not lost, while consumption happens in whole-token quantities. The
// invariant 0 <= tokens <= capacity holds after every operation.
//
// A TokenBucket is safe for concurrent use.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second, must be > 0
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucket creates a bucket holding at most capacity tokens that
// refills at refillRatePerSecond tokens per second. The bucket starts full.
func NewTokenBucket(capacity, refillRatePerSecond float64, opts ...Option) *TokenBucket {
	b := &TokenBucket{
		capacity:   capacity,
		refillRate: refillRatePerSecond,
		tokens:     capacity,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.lastRefill = b.now()
	return b
}

// refill credits tokens for the time elapsed since the last refill and
// clamps the balance to capacity. Callers must hold mu.
func (b *TokenBucket) refill() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill)
	if elapsed > 0 {
		b.tokens += elapsed.Seconds() * b.refillRate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
	}
	b.lastRefill = now
}

// TryConsume attempts to take n tokens from the bucket. It either fully
// succeeds, reducing the balance by exactly n, or fully fails and leaves
// the balance unchanged. There is no partial consumption.
func (b *TokenBucket) TryConsume(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if float64(n) <= b.tokens {
		b.tokens -= float64(n)
		return true
	}
	return false
}

// WaitTime reports how long the caller must wait until n tokens are
// available, assuming no other consumption in the meantime. It returns 0
// when n tokens can be consumed immediately. The duration is rounded up
// to the next nanosecond, so waiting exactly WaitTime(n) always accrues
// at least n tokens.
func (b *TokenBucket) WaitTime(n int) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if float64(n) <= b.tokens {
		return 0
	}
	missing := float64(n) - b.tokens
	return time.Duration(math.Ceil(missing / b.refillRate * float64(time.Second)))
}

// Available returns the current token balance after refilling.
func (b *TokenBucket) Available() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return b.tokens
}

// Capacity returns the maximum balance the bucket can hold.
func (b *TokenBucket) Capacity() float64 {
	return b.capacity
}
