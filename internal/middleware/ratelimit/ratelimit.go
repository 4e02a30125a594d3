// Package ratelimit implements a per-user fixed-window request counter.
// Chat requests hit the model provider, so the limit guards the
// upstream quota as much as this service.
package ratelimit

import (
	"sync"
	"time"
)

type userCounter struct {
	count     int
	lastReset time.Time
}

type RateLimiter struct {
	limit    int
	counters map[string]*userCounter
	mu       sync.Mutex
}

// NewRateLimiter allows limit requests per user per minute. Stale
// counters are swept once a minute.
func NewRateLimiter(limit int) *RateLimiter {
	rl := &RateLimiter{
		limit:    limit,
		counters: make(map[string]*userCounter),
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			rl.cleanup()
		}
	}()

	return rl
}

func (rl *RateLimiter) IsAllowed(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	counter, exists := rl.counters[userID]

	if !exists {
		rl.counters[userID] = &userCounter{
			count:     1,
			lastReset: now,
		}
		return true
	}

	// Reset counter if a minute has passed
	if now.Sub(counter.lastReset) >= time.Minute {
		counter.count = 1
		counter.lastReset = now
		return true
	}

	if counter.count >= rl.limit {
		return false
	}

	counter.count++
	return true
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for userID, counter := range rl.counters {
		if now.Sub(counter.lastReset) >= time.Minute {
			delete(rl.counters, userID)
		}
	}
}
