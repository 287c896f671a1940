package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the limiter deterministically; sleeping advances it.
type fakeClock struct {
	now    time.Time
	slept  []time.Duration
	onWake func()
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	if c.onWake != nil {
		c.onWake()
	}
}

func newTestLimiter(quota int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	l := New(quota, window)
	l.now = clock.Now
	l.sleep = clock.Sleep
	return l, clock
}

func TestAdmitUnderQuotaDoesNotBlock(t *testing.T) {
	l, clock := newTestLimiter(10, 60*time.Second)

	for i := 0; i < 10; i++ {
		l.Admit()
	}
	assert.Empty(t, clock.slept)
}

func TestAdmitBlocksOnEleventhCall(t *testing.T) {
	l, clock := newTestLimiter(10, 60*time.Second)

	start := clock.now
	for i := 0; i < 10; i++ {
		l.Admit()
		clock.now = clock.now.Add(2 * time.Second)
	}

	// 11th call arrives 20s into the window: must wait out the remaining 40s.
	l.Admit()
	require.Len(t, clock.slept, 1)
	assert.Equal(t, 40*time.Second+delayBuffer, clock.slept[0])
	assert.True(t, clock.now.Sub(start) >= 60*time.Second)

	// new window started with count=1, so 9 more calls pass untouched
	for i := 0; i < 9; i++ {
		l.Admit()
	}
	assert.Len(t, clock.slept, 1)
}

func TestAdmitElapsedWindowDoesNotSleep(t *testing.T) {
	l, clock := newTestLimiter(2, 10*time.Second)

	l.Admit()
	l.Admit()
	clock.now = clock.now.Add(11 * time.Second)

	// over quota but the window already elapsed: no sleep, fresh window
	l.Admit()
	l.Admit()
	assert.Empty(t, clock.slept)
}

func TestNewAppliesDefaults(t *testing.T) {
	l := New(0, 0)
	assert.Equal(t, DefaultQuota, l.quota)
	assert.Equal(t, DefaultWindow, l.window)
}
