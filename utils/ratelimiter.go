package utils

import (
	"math/rand"
	"sync"
	"time"
)

// RateLimiter inserts a randomized pause between outgoing requests. The
// jitter keeps the request cadence from looking machine-generated to
// anti-bot detection.
type RateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	min      time.Duration
	max      time.Duration
}

// NewRateLimiter creates a RateLimiter that waits between minMs and maxMs
// milliseconds after the previous request.
func NewRateLimiter(minMs, maxMs int) *RateLimiter {
	if maxMs < minMs {
		maxMs = minMs
	}
	return &RateLimiter{
		min: time.Duration(minMs) * time.Millisecond,
		max: time.Duration(maxMs) * time.Millisecond,
	}
}

// Wait blocks until a jittered delay has passed since the last request.
func (r *RateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	delay := r.min
	if r.max > r.min {
		delay += time.Duration(rand.Int63n(int64(r.max - r.min)))
	}

	elapsed := time.Since(r.lastCall)
	if elapsed < delay {
		time.Sleep(delay - elapsed)
	}
	r.lastCall = time.Now()
}
