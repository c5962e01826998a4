package service

import (
	"sync"
	"time"
)

// RecoveryLimiter limita cuantas veces se puede pedir un codigo de recuperacion por email.
type RecoveryLimiter interface {
	Allow(key string) bool
}

type fixedWindow struct {
	start time.Time
	count int
}

type memoryRecoveryLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	now     func() time.Time
	windows map[string]fixedWindow
}

// NewMemoryRecoveryLimiter crea un limitador de ventana fija en memoria.
func NewMemoryRecoveryLimiter(window time.Duration, max int) RecoveryLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryRecoveryLimiter{
		window:  window,
		max:     max,
		now:     func() time.Time { return time.Now().UTC() },
		windows: make(map[string]fixedWindow),
	}
}

func (l *memoryRecoveryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.windows[key] = fixedWindow{start: now, count: 1}
		l.sweepLocked(now)
		return true
	}
	if w.count >= l.max {
		return false
	}
	w.count++
	l.windows[key] = w
	return true
}

func (l *memoryRecoveryLimiter) sweepLocked(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, k)
		}
	}
}
