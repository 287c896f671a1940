package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultQuota and DefaultWindow match the imagery provider quota of 10
	// requests per minute.
	DefaultQuota  = 10
	DefaultWindow = 60 * time.Second

	// buffer added on top of the computed delay so the next window is safely
	// past the provider's own clock.
	delayBuffer = time.Second
)

// Limiter is a fixed-window request governor for outbound calls. Admit blocks
// the caller until the call fits the quota. It never returns an error and a
// blocked call runs to completion.
type Limiter struct {
	quota  int
	window time.Duration

	mu          sync.Mutex
	windowStart time.Time
	count       int

	// injection points for tests
	now   func() time.Time
	sleep func(time.Duration)
}

func New(quota int, window time.Duration) *Limiter {
	if quota <= 0 {
		quota = DefaultQuota
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		quota:  quota,
		window: window,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Admit accounts one outbound request. When the quota is exhausted inside the
// active window it sleeps for the remainder of the window plus a small buffer,
// then opens a new window with this call as its first request.
func (l *Limiter) Admit() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.windowStart.IsZero() {
		l.windowStart = now
		l.count = 1
		return
	}

	l.count++
	if l.count <= l.quota {
		return
	}

	elapsed := now.Sub(l.windowStart)
	if remaining := l.window - elapsed; remaining > 0 {
		l.sleep(remaining + delayBuffer)
		now = l.now()
	}
	l.windowStart = now
	l.count = 1
}
