package recording_test

import (
	"context"
	"testing"
	"time"

	"github.com/mediasfu/recordctl/internal/recording"
	"github.com/mediasfu/recordctl/internal/recording/recordingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	clock     *recordingtest.Clock
	sched     *recordingtest.Scheduler
	channel   *recordingtest.Channel
	alerts    *recordingtest.Alerts
	reporter  *recordingtest.Reporter
	canvas    *recordingtest.Canvas
	summaries *recordingtest.Summaries
	store     *recording.Store
	ctrl      *recording.Controller
}

func newFixture(mutate ...func(*recording.State)) *fixture {
	st := recording.NewState("room-1", recording.MediaVideo, recording.Limits{VideoPauses: 2, AudioPauses: 1})
	st.ConfirmedToRecord = true
	st.VideoOn = true
	st.AudioOn = true
	for _, m := range mutate {
		m(&st)
	}

	f := &fixture{
		clock:     recordingtest.NewClock(epoch),
		sched:     recordingtest.NewScheduler(),
		channel:   recordingtest.NewChannel(),
		alerts:    &recordingtest.Alerts{},
		reporter:  &recordingtest.Reporter{},
		canvas:    &recordingtest.Canvas{},
		summaries: &recordingtest.Summaries{},
	}
	f.store = recording.NewStore(st, recording.Immediate{}, nil)
	f.ctrl = recording.NewController(f.store, f.channel, recording.Options{
		Clock:     f.clock,
		Scheduler: f.sched,
		Capabilities: recording.Capabilities{
			AudioSupport: true,
			VideoSupport: true,
		},
		Alerts:   f.alerts,
		Reporter: f.reporter,
		Canvas:   f.canvas,
		Summary:  f.summaries,
	})
	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	outcome, err := f.ctrl.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, recording.OutcomeCommitted, outcome)
}

// advance moves the clock forward and runs one tick.
func (f *fixture) advance(d time.Duration) {
	f.clock.Advance(d)
	f.sched.Tick()
}

func (f *fixture) openGate() {
	f.sched.FireDelayed()
}

func assertInvariants(t *testing.T, f *fixture) {
	t.Helper()
	s := f.store.Snapshot()
	if !f.ctrl.TimerAlive() {
		assert.False(t, s.TimerRunning, "timer flag set without a live timer")
	}
	assert.LessOrEqual(t, f.sched.Periodic(), 1, "more than one timer loop")
	assert.Equal(t, recording.FormatElapsed(s.ElapsedSeconds), s.ProgressTime)
	assert.GreaterOrEqual(t, s.ElapsedSeconds, 0)
	assert.GreaterOrEqual(t, s.PauseCount, 0)
}
