package recording

import (
	"time"

	"github.com/AlekSi/pointer"
)

type CleanupOptions struct {
	// ResetPauseState clears the pause counter and the cleared-to-record
	// flags.
	ResetPauseState bool
	Silent          bool
	Message         string
	Severity        Severity
	Duration        time.Duration
}

// Cleanup resets a recording to its terminal stopped values. It is
// idempotent.
type Cleanup struct {
	store  *Store
	timer  *TimerEngine
	alerts AlertSink
}

func NewCleanup(store *Store, timer *TimerEngine, alerts AlertSink) *Cleanup {
	if alerts == nil {
		alerts = nopAlerts{}
	}
	return &Cleanup{store: store, timer: timer, alerts: alerts}
}

func (c *Cleanup) CleanUp(opts CleanupOptions) {
	c.timer.Halt()
	c.timer.CancelGate()

	p := Patch{
		TimerRunning:        pointer.ToBool(false),
		CanPauseResume:      pointer.ToBool(false),
		ElapsedSeconds:      pointer.ToInt(0),
		ProgressTime:        pointer.ToString(FormatElapsed(0)),
		ClearStartTimestamp: true,
		Started:             pointer.ToBool(false),
		Paused:              pointer.ToBool(false),
		Resumed:             pointer.ToBool(false),
		Stopped:             pointer.ToBool(true),
		StartReport:         pointer.ToBool(false),
		EndReport:           pointer.ToBool(true),
		CanRecord:           pointer.ToBool(true),
		ShowRecordButtons:   pointer.ToBool(false),
		RecordState:         pointer.ToString(RecordStateGreen),
	}
	if opts.ResetPauseState {
		p.ClearedToRecord = pointer.ToBool(true)
		p.ClearedToResume = pointer.ToBool(true)
		p.PauseCount = pointer.ToInt(0)
	}
	c.store.Update(p)

	if opts.Silent {
		return
	}
	msg, sev, d := opts.Message, opts.Severity, opts.Duration
	if msg == "" {
		msg = MsgStopped
	}
	if sev == "" {
		sev = SeveritySuccess
	}
	if d <= 0 {
		d = DefaultAlertDuration
	}
	c.alerts.Alert(msg, sev, d)
}
