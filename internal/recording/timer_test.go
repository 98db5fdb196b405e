package recording_test

import (
	"sync"
	"testing"
	"time"

	"github.com/mediasfu/recordctl/internal/recording"
	"github.com/mediasfu/recordctl/internal/recording/recordingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(st recording.State) (*recording.TimerEngine, *recording.Store, *recordingtest.Clock, *recordingtest.Scheduler) {
	store := recording.NewStore(st, recording.Immediate{}, nil)
	clock := recordingtest.NewClock(epoch)
	sched := recordingtest.NewScheduler()
	return recording.NewTimerEngine(store, clock, sched, 0, 0), store, clock, sched
}

func TestTimerEngine_StartIsExclusive(t *testing.T) {
	e, _, _, sched := newEngine(recording.NewState("room", recording.MediaVideo, recording.Limits{}))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e.Start() {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, started)
	assert.Equal(t, 1, sched.Periodic())
	assert.True(t, e.Running())
}

func TestTimerEngine_StaleFlagIsRepaired(t *testing.T) {
	st := recording.NewState("room", recording.MediaVideo, recording.Limits{})
	st.TimerRunning = true
	st.ElapsedSeconds = 12
	st.ProgressTime = "00:00:12"
	e, store, clock, sched := newEngine(st)

	require.True(t, e.Resume())
	assert.True(t, store.Snapshot().TimerRunning)
	assert.Equal(t, 1, sched.Periodic())

	clock.Advance(2 * time.Second)
	sched.Tick()
	assert.Equal(t, 14, store.Snapshot().ElapsedSeconds)
}

func TestTimerEngine_ElapsedNeverDecreases(t *testing.T) {
	e, store, clock, sched := newEngine(recording.NewState("room", recording.MediaVideo, recording.Limits{}))
	require.True(t, e.Start())

	clock.Advance(10 * time.Second)
	sched.Tick()
	require.Equal(t, 10, store.Snapshot().ElapsedSeconds)

	// a wall clock step backwards
	clock.Advance(-5 * time.Second)
	sched.Tick()
	assert.Equal(t, 10, store.Snapshot().ElapsedSeconds)
	assert.Equal(t, "00:00:10", store.Snapshot().ProgressTime)
}

func TestTimerEngine_StopsItself(t *testing.T) {
	tests := []struct {
		name  string
		patch recording.Patch
	}{
		{"paused", recording.Patch{Paused: boolPtr(true)}},
		{"stopped", recording.Patch{Stopped: boolPtr(true)}},
		{"room cleared", recording.Patch{RoomName: strPtr("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, store, clock, sched := newEngine(recording.NewState("room", recording.MediaVideo, recording.Limits{}))
			require.True(t, e.Start())
			sched.FireDelayed()
			require.True(t, store.Snapshot().CanPauseResume)

			store.Update(tt.patch)
			clock.Advance(time.Second)
			sched.Tick()

			s := store.Snapshot()
			assert.False(t, s.TimerRunning)
			assert.False(t, s.CanPauseResume)
			assert.False(t, e.Running())
			assert.Equal(t, 0, sched.Periodic())

			// the engine can be started again afterwards
			store.Update(recording.Patch{Paused: boolPtr(false), Stopped: boolPtr(false), RoomName: strPtr("room")})
			assert.True(t, e.Resume())
		})
	}
}

func TestTimerEngine_HaltInvalidatesPendingTick(t *testing.T) {
	e, store, clock, sched := newEngine(recording.NewState("room", recording.MediaVideo, recording.Limits{}))
	require.True(t, e.Start())

	e.Halt()
	clock.Advance(3 * time.Second)
	sched.Tick()

	assert.Equal(t, 0, store.Snapshot().ElapsedSeconds)
	assert.False(t, store.Snapshot().TimerRunning)
	assert.False(t, e.Running())
}

func TestTimerEngine_ArmGateReplacesPending(t *testing.T) {
	e, store, _, sched := newEngine(recording.NewState("room", recording.MediaVideo, recording.Limits{}))

	e.ArmGate()
	e.ArmGate()
	assert.Equal(t, 1, sched.Pending())

	e.CancelGate()
	assert.Equal(t, 0, sched.FireDelayed())
	assert.False(t, store.Snapshot().CanPauseResume)
	assert.Equal(t, recording.DefaultChangeCooldown, e.Cooldown())
}

func strPtr(s string) *string { return &s }

func TestTimerEngine_GateOpenedBeforeStopTick(t *testing.T) {
	e, store, clock, sched := newEngine(recording.NewState("room", recording.MediaVideo, recording.Limits{}))
	require.True(t, e.Start())
	clock.Advance(time.Second)
	sched.Tick()

	// pause commit, then the cool-down ends before the next tick
	store.Update(recording.Patch{Paused: boolPtr(true), CanPauseResume: boolPtr(false)})
	e.ArmGate()
	require.Equal(t, 1, sched.FireDelayed())
	require.True(t, store.Snapshot().CanPauseResume)

	clock.Advance(time.Second)
	sched.Tick()

	s := store.Snapshot()
	assert.False(t, s.TimerRunning)
	assert.False(t, e.Running())
	assert.True(t, s.CanPauseResume)
}
