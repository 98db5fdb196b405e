// Package uiloop runs state writes on a single goroutine, the way a user
// interface thread would.
package uiloop

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var ErrClosed = errors.New("ui loop closed")

type command struct {
	fn   func()
	done chan struct{}
}

// Loop executes queued functions one at a time, in order, on the goroutine
// that called Run. Functions must not call Do on the same loop.
type Loop struct {
	mu       sync.RWMutex
	closed   bool
	commands chan command
	quit     chan struct{}
	stopped  chan struct{}

	runOnce   sync.Once
	closeOnce sync.Once
}

func New(queue int) *Loop {
	if queue <= 0 {
		queue = 64
	}
	return &Loop{
		commands: make(chan command, queue),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Run processes commands until Close is called. Only the first call runs.
func (l *Loop) Run() {
	first := false
	l.runOnce.Do(func() { first = true })
	if !first {
		return
	}
	defer close(l.stopped)

	for {
		select {
		case c := <-l.commands:
			l.exec(c)
		case <-l.quit:
			l.drain()
			return
		}
	}
}

func (l *Loop) drain() {
	for {
		select {
		case c := <-l.commands:
			l.exec(c)
		default:
			return
		}
	}
}

func (l *Loop) exec(c command) {
	defer close(c.done)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("recovered from panic in ui loop: %v", r)
		}
	}()
	c.fn()
}

// Do queues fn and waits until it ran. fn is dropped when the loop is
// closed.
func (l *Loop) Do(fn func()) {
	if err := l.Submit(fn); err != nil {
		log.WithError(err).Debug("ui loop command dropped")
	}
}

// Submit is Do with the drop reported as an error.
func (l *Loop) Submit(fn func()) error {
	c := command{fn: fn, done: make(chan struct{})}

	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return ErrClosed
	}
	l.commands <- c
	l.mu.RUnlock()

	<-c.done
	return nil
}

// Close refuses new commands, waits until the queued ones ran and stops the
// loop. When Run was never called the queued commands run on the caller.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		close(l.quit)
	})

	running := true
	l.runOnce.Do(func() {
		running = false
		l.drain()
		close(l.stopped)
	})
	if running {
		<-l.stopped
	}
}
