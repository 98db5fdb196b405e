package recording

import (
	"sync"
)

// Executor runs state writes on the goroutine that owns the user interface.
// Do blocks until fn has run.
type Executor interface {
	Do(fn func())
}

// Immediate runs fn on the calling goroutine.
type Immediate struct{}

func (Immediate) Do(fn func()) { fn() }

// Sink observes every applied patch together with the resulting state.
type Sink interface {
	OnStateChange(p Patch, s State)
}

type SinkFunc func(p Patch, s State)

func (f SinkFunc) OnStateChange(p Patch, s State) { f(p, s) }

// Store owns the recording state. Reads are safe from any goroutine; writes
// are funnelled through the executor.
type Store struct {
	mu    sync.RWMutex
	state State
	exec  Executor
	sink  Sink
}

func NewStore(initial State, exec Executor, sink Sink) *Store {
	if exec == nil {
		exec = Immediate{}
	}
	return &Store{state: initial, exec: exec, sink: sink}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Update(p Patch) {
	s.exec.Do(func() {
		s.mu.Lock()
		p.Apply(&s.state)
		snap := s.state
		s.mu.Unlock()

		if s.sink != nil {
			s.sink.OnStateChange(p, snap)
		}
	})
}

// Replace swaps the whole state, used when a session is re-created.
func (s *Store) Replace(st State) {
	s.exec.Do(func() {
		s.mu.Lock()
		s.state = st
		s.mu.Unlock()

		if s.sink != nil {
			s.sink.OnStateChange(Patch{}, st)
		}
	})
}
