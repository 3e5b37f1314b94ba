package ratelimit

import (
	"context"
	"sync"
	"time"
)

// memoryWindow tracks how many requests a key made during one second.
type memoryWindow struct {
	sec  int64
	hits int
}

// MemoryLimiter enforces per-key one-second fixed windows in process
// memory. It is the fallback backend when Redis is not configured or
// unreachable.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// NewMemoryLimiter constructs an empty MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*memoryWindow)}
}

// Allow records one request for key and reports whether it fits within
// limit for the second containing now. A non-positive limit or empty key
// disables limiting.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	sec := now.Unix()
	reset := time.Unix(sec+1, 0).UTC()

	l.mu.Lock()
	defer l.mu.Unlock()

	window, ok := l.windows[key]
	if !ok || window.sec != sec {
		window = &memoryWindow{sec: sec}
		l.windows[key] = window
	}
	if window.hits >= limit {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	window.hits++
	return Result{Allowed: true, Remaining: limit - window.hits, Reset: reset}, nil
}
