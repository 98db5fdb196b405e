package server

import (
	"sync"

	"github.com/kr/pretty"
	"github.com/mediasfu/recordctl/internal/recording"
	log "github.com/sirupsen/logrus"
)

var _ recording.Sink = (*StateLogger)(nil)

// StateLogger writes the fields every state change touched to the debug
// log.
type StateLogger struct {
	mu   sync.Mutex
	last *recording.State
}

func NewStateLogger() *StateLogger {
	return &StateLogger{}
}

func (l *StateLogger) OnStateChange(_ recording.Patch, s recording.State) {
	l.mu.Lock()
	prev := l.last
	l.last = &s
	l.mu.Unlock()

	if !log.IsLevelEnabled(log.DebugLevel) {
		return
	}
	if prev == nil {
		log.WithField("room", s.RoomName).Debugf("recording state: %# v", pretty.Formatter(s))
		return
	}
	for _, d := range pretty.Diff(*prev, s) {
		log.WithField("room", s.RoomName).Debugf("recording state: %s", d)
	}
}
