// Package ratelimit implements a per-key sliding window over request
// timestamps. Windows live in memory; restarting the process resets them.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
}

func NewLimiter() *Limiter {
	return &Limiter{
		windows: map[string][]time.Time{},
	}
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Allow records a hit for key unless the key already made limit requests
// within the trailing window. A limit of zero or less disables limiting.
func (l *Limiter) Allow(key string, limit int, window time.Duration, now time.Time) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 {
		return Result{Allowed: true}
	}

	cutoff := now.Add(-window)
	recent := l.windows[key][:0]
	for _, ts := range l.windows[key] {
		if !ts.Before(cutoff) {
			recent = append(recent, ts)
		}
	}

	result := Result{
		Allowed: len(recent) < limit,
		Limit:   limit,
	}
	if !result.Allowed {
		result.ResetAt = recent[0].Add(window)
		l.windows[key] = recent
		return result
	}

	recent = append(recent, now)
	l.windows[key] = recent
	result.Remaining = limit - len(recent)
	result.ResetAt = recent[0].Add(window)
	return result
}
