package ratelimit

import (
	"context"
	"sync"
	"time"
)

type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, max int, window time.Duration) (bool, error) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	valid := l.windows[key][:0:0]
	for _, t := range l.windows[key] {
		if now.Sub(t) < window {
			valid = append(valid, t)
		}
	}
	if len(valid) >= max {
		// Rejected attempts are not recorded, so a burst cannot extend its
		// own lockout.
		l.windows[key] = valid
		return false, nil
	}
	l.windows[key] = append(valid, now)
	return true, nil
}

// Sweep drops keys whose every recorded timestamp is older than maxAge. Run
// periodically to bound memory in a long-lived process.
func (l *MemoryLimiter) Sweep(maxAge time.Duration) int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	evicted := 0
	for key, timestamps := range l.windows {
		alive := false
		for _, t := range timestamps {
			if now.Sub(t) < maxAge {
				alive = true
				break
			}
		}
		if !alive {
			delete(l.windows, key)
			evicted++
		}
	}
	return evicted
}
