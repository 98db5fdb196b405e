// Package ratelimit implements a sliding-window limiter keyed by caller
// identity.
package ratelimit

import (
	"sync"
	"time"
)

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// Limiter allows at most max attempts per identity within any window.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	now    func() time.Time
	log    map[string][]time.Time
	swept  time.Time
}

func New(max int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		max:    max,
		window: window,
		now:    time.Now,
		log:    make(map[string][]time.Time),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Allow records an attempt for identity and reports whether it is within
// the limit. Refused attempts are not recorded.
func (l *Limiter) Allow(identity string) bool {
	if l.max <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) > l.window {
		l.sweep(now)
	}
	kept := l.log[identity][:0]
	for _, t := range l.log[identity] {
		if now.Sub(t) <= l.window {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.log[identity] = kept
		return false
	}
	l.log[identity] = append(kept, now)
	return true
}

// sweep drops identities with no attempt inside the window.
func (l *Limiter) sweep(now time.Time) {
	for id, attempts := range l.log {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > l.window {
			delete(l.log, id)
		}
	}
	l.swept = now
}

func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.log)
}

func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log = make(map[string][]time.Time)
}
