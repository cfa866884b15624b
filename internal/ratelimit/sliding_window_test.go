package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	limiter := NewLimiter()
	now := time.Now()

	for i := 0; i < 3; i++ {
		res := limiter.Allow("key", 3, time.Minute, now)
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if res.Remaining != 3-(i+1) {
			t.Fatalf("request %d remaining = %d", i+1, res.Remaining)
		}
	}

	res := limiter.Allow("key", 3, time.Minute, now)
	if res.Allowed {
		t.Fatalf("fourth request should be denied")
	}
	if res.ResetAt != now.Add(time.Minute) {
		t.Fatalf("unexpected reset time %v", res.ResetAt)
	}
}

func TestWindowSlides(t *testing.T) {
	limiter := NewLimiter()
	now := time.Now()

	limiter.Allow("key", 1, time.Minute, now)
	if res := limiter.Allow("key", 1, time.Minute, now.Add(30*time.Second)); res.Allowed {
		t.Fatalf("request inside the window should be denied")
	}
	if res := limiter.Allow("key", 1, time.Minute, now.Add(61*time.Second)); !res.Allowed {
		t.Fatalf("request after the window should be allowed")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	limiter := NewLimiter()
	now := time.Now()

	limiter.Allow("a", 1, time.Minute, now)
	if res := limiter.Allow("b", 1, time.Minute, now); !res.Allowed {
		t.Fatalf("key b should have its own window")
	}
}

func TestZeroLimitDisables(t *testing.T) {
	limiter := NewLimiter()
	now := time.Now()

	for i := 0; i < 100; i++ {
		if res := limiter.Allow("key", 0, time.Minute, now); !res.Allowed {
			t.Fatalf("zero limit should never deny")
		}
	}
}
