package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestLimiter(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	l := New(3, time.Minute, WithClock(clock.now))

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("alice"), "attempt %d", i)
	}
	assert.False(t, l.Allow("alice"))
	assert.True(t, l.Allow("bob"))

	clock.t = clock.t.Add(30 * time.Second)
	assert.False(t, l.Allow("alice"))

	// the first three attempts leave the window
	clock.t = clock.t.Add(31 * time.Second)
	assert.True(t, l.Allow("alice"))
	assert.True(t, l.Allow("alice"))
	assert.True(t, l.Allow("alice"))
	assert.False(t, l.Allow("alice"))

	l.Reset()
	assert.True(t, l.Allow("alice"))
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(0, time.Minute)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("alice"))
	}
}

func TestLimiter_ForgetsIdleIdentities(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	l := New(2, time.Minute, WithClock(clock.now))

	for _, id := range []string{"alice", "bob", "carol"} {
		assert.True(t, l.Allow(id))
	}
	assert.Equal(t, 3, l.Len())

	clock.t = clock.t.Add(2 * time.Minute)
	assert.True(t, l.Allow("dave"))
	assert.Equal(t, 1, l.Len())

	// a swept identity starts with a fresh window
	assert.True(t, l.Allow("alice"))
	assert.True(t, l.Allow("alice"))
	assert.False(t, l.Allow("alice"))
}
