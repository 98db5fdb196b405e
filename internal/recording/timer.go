package recording

import (
	"sync"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/mediasfu/recordctl/internal/appstats"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTickInterval   = time.Second
	DefaultChangeCooldown = 15 * time.Second
)

// TimerEngine owns the background job that keeps the elapsed recording time
// and its formatted progress up to date, and the delayed job that re-opens
// the pause/resume gate.
//
// The periodic handle is the authoritative running signal; State.TimerRunning
// only mirrors it. Lock order is e.mu before any store write.
type TimerEngine struct {
	store    *Store
	clock    Clock
	sched    Scheduler
	interval time.Duration
	cooldown time.Duration

	mu     sync.Mutex
	handle Handle
	gen    uint64
	gate   Handle

	// gateGen counts ArmGate calls; gateSeen is its value when the running
	// job was spawned or last ticked.
	gateGen  uint64
	gateSeen uint64
}

func NewTimerEngine(store *Store, clock Clock, sched Scheduler, interval, cooldown time.Duration) *TimerEngine {
	if clock == nil {
		clock = SystemClock()
	}
	if sched == nil {
		sched = NewScheduler()
	}
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if cooldown <= 0 {
		cooldown = DefaultChangeCooldown
	}
	return &TimerEngine{
		store:    store,
		clock:    clock,
		sched:    sched,
		interval: interval,
		cooldown: cooldown,
	}
}

// Running reports whether a live periodic job exists.
func (e *TimerEngine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handle != nil && e.handle.Alive()
}

// Start begins counting from zero. It returns false when a job is already
// running.
func (e *TimerEngine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.repairLocked()
	if e.handle != nil {
		return false
	}

	now := e.clock.Now().UnixMilli()
	e.store.Update(Patch{
		StartTimestamp: pointer.ToInt64(now),
		ElapsedSeconds: pointer.ToInt(0),
		ProgressTime:   pointer.ToString(FormatElapsed(0)),
		TimerRunning:   pointer.ToBool(true),
	})
	e.armGateLocked()
	e.spawnLocked(now)

	log.WithField("room", e.store.Snapshot().RoomName).Debug("recording timer started")
	return true
}

// Resume continues counting from the current elapsed time so that the time
// spent paused is not counted. It returns false when a job is already
// running.
func (e *TimerEngine) Resume() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.repairLocked()
	if e.handle != nil {
		return false
	}

	st := e.store.Snapshot()
	start := e.clock.Now().UnixMilli() - int64(st.ElapsedSeconds)*1000
	e.store.Update(Patch{
		StartTimestamp: pointer.ToInt64(start),
		TimerRunning:   pointer.ToBool(true),
		CanPauseResume: pointer.ToBool(false),
	})
	e.spawnLocked(start)

	log.WithField("room", st.RoomName).
		WithField("elapsed", st.ElapsedSeconds).
		Debug("recording timer resumed")
	return true
}

// Halt cancels the periodic job, if any, and clears the running mirror.
func (e *TimerEngine) Halt() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.releaseLocked()
	e.store.Update(Patch{TimerRunning: pointer.ToBool(false)})
}

// ArmGate re-opens the pause/resume gate once the cool-down has elapsed,
// replacing any pending re-open.
func (e *TimerEngine) ArmGate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.armGateLocked()
}

func (e *TimerEngine) CancelGate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gate != nil {
		e.gate.Cancel()
		e.gate = nil
	}
}

func (e *TimerEngine) Cooldown() time.Duration {
	return e.cooldown
}

func (e *TimerEngine) armGateLocked() {
	if e.gate != nil {
		e.gate.Cancel()
	}
	e.gateGen++
	e.gate = e.sched.After(e.cooldown, func() {
		e.store.Update(Patch{CanPauseResume: pointer.ToBool(true)})
	})
}

func (e *TimerEngine) spawnLocked(fallbackStart int64) {
	e.gen++
	gen := e.gen
	e.gateSeen = e.gateGen
	e.handle = e.sched.Every(e.interval, func() bool {
		return e.tick(gen, fallbackStart)
	})
	appstats.TimerStarted()
}

func (e *TimerEngine) releaseLocked() bool {
	e.gen++
	if e.handle == nil {
		return false
	}
	e.handle.Cancel()
	e.handle = nil
	appstats.TimerStopped()
	return true
}

// repairLocked drops a handle whose job already ended and clears a running
// mirror that no live job backs.
func (e *TimerEngine) repairLocked() {
	if e.handle != nil && !e.handle.Alive() {
		e.handle = nil
		appstats.TimerStopped()
	}
	if e.handle == nil && e.store.Snapshot().TimerRunning {
		log.WithField("room", e.store.Snapshot().RoomName).Warn("clearing stale recording timer flag")
		e.store.Update(Patch{TimerRunning: pointer.ToBool(false)})
	}
}

func (e *TimerEngine) tick(gen uint64, fallbackStart int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || e.handle == nil {
		return false
	}

	st := e.store.Snapshot()
	start := fallbackStart
	if st.StartTimestamp != nil {
		start = *st.StartTimestamp
	}

	elapsed := int((e.clock.Now().UnixMilli() - start) / 1000)
	if elapsed < st.ElapsedSeconds {
		elapsed = st.ElapsedSeconds
	}
	e.store.Update(Patch{
		ElapsedSeconds: pointer.ToInt(elapsed),
		ProgressTime:   pointer.ToString(FormatElapsed(elapsed)),
	})
	appstats.OnTick()

	st = e.store.Snapshot()
	if st.Paused || st.Stopped || st.RoomName == "" {
		e.releaseLocked()
		p := Patch{TimerRunning: pointer.ToBool(false)}
		// a gate armed since the last tick owns the flag
		if e.gateSeen == e.gateGen {
			p.CanPauseResume = pointer.ToBool(false)
		}
		e.store.Update(p)
		log.WithField("room", st.RoomName).
			WithField("elapsed", elapsed).
			Debug("recording timer stopped")
		return false
	}
	e.gateSeen = e.gateGen
	return true
}
