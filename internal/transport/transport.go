// Package transport carries recording requests to the server and correlates
// their acknowledgements.
package transport

import (
	"context"
	"sync"
	"time"

	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/mediasfu/recordctl/internal/recording"
	"github.com/pkg/errors"
)

const DefaultAckTimeout = 10 * time.Second

var (
	ErrAckTimeout   = errors.New("acknowledgement timed out")
	ErrClosed       = errors.New("connection closed")
	ErrNotConnected = errors.New("not connected")
)

// NoticeHandler receives every server event that is not an acknowledgement.
type NoticeHandler func(e *events.Event)

// Conn is a connection to the recording server.
type Conn interface {
	recording.Channel
	recording.LayoutReporter
	State() ConnectionState
	Close() error
}

// Acks correlates outstanding requests with their acknowledgements.
type Acks struct {
	mu      sync.Mutex
	pending map[string]chan *events.Ack
	closed  bool
}

func NewAcks() *Acks {
	return &Acks{pending: make(map[string]chan *events.Ack)}
}

// Add registers a request id. The returned channel receives at most one
// acknowledgement.
func (a *Acks) Add(id string) (chan *events.Ack, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, ErrClosed
	}
	ch := make(chan *events.Ack, 1)
	a.pending[id] = ch
	return ch, nil
}

func (a *Acks) Remove(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.pending, id)
}

// Deliver hands ack to the request waiting for it. It returns false when
// nobody is waiting, e.g. after a timeout.
func (a *Acks) Deliver(ack *events.Ack) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	ch, ok := a.pending[ack.RequestId]
	if !ok {
		return false
	}
	delete(a.pending, ack.RequestId)
	ch <- ack
	return true
}

// Wait blocks until the acknowledgement arrives, the context ends, the
// timeout elapses or the connection closes.
func (a *Acks) Wait(ctx context.Context, id string, ch chan *events.Ack, timeout time.Duration) (*events.Ack, error) {
	if timeout <= 0 {
		timeout = DefaultAckTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ack, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		return ack, nil
	case <-timer.C:
		a.Remove(id)
		return nil, errors.Wrapf(ErrAckTimeout, "after %s", timeout)
	case <-ctx.Done():
		a.Remove(id)
		return nil, ctx.Err()
	}
}

// Close fails every outstanding request and refuses new ones.
func (a *Acks) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	for id, ch := range a.pending {
		close(ch)
		delete(a.pending, id)
	}
}

func (a *Acks) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}
