// server/internal/auth/throttle.go
package auth

import (
	"sync"
	"time"
)

// Throttle blocks an email after too many failed sign-ins within a window.
type Throttle struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	now       func() time.Time
	failures  map[string][]time.Time
	lastSweep time.Time
}

func NewThrottle(max int, window time.Duration) *Throttle {
	return &Throttle{
		max:      max,
		window:   window,
		now:      time.Now,
		failures: make(map[string][]time.Time),
	}
}

// Blocked reports whether the key reached the failure limit.
func (t *Throttle) Blocked(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.prune(key)) >= t.max
}

// Fail records a failure. Keys whose failures have all expired are swept at
// most once per window.
func (t *Throttle) Fail(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if now.Sub(t.lastSweep) >= t.window {
		for k := range t.failures {
			t.prune(k)
		}
		t.lastSweep = now
	}
	t.failures[key] = append(t.prune(key), now)
}

// Len returns the number of keys with failures still tracked.
func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.failures)
}

// Reset clears the failures after a successful sign-in.
func (t *Throttle) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, key)
}

func (t *Throttle) prune(key string) []time.Time {
	cutoff := t.now().Add(-t.window)
	kept := t.failures[key][:0]
	for _, ts := range t.failures[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(t.failures, key)
		return nil
	}
	t.failures[key] = kept
	return kept
}
