package recording

import (
	"context"
	"sync"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/mediasfu/recordctl/internal/appstats"
	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	Clock          Clock
	Scheduler      Scheduler
	TickInterval   time.Duration
	ChangeCooldown time.Duration
	Capabilities   Capabilities
	Alerts         AlertSink
	Reporter       LayoutReporter
	Canvas         CanvasCapturer
	Summary        SummaryWriter
}

// Controller drives the recording lifecycle. Every action checks its local
// preconditions, sends exactly one acknowledged request and then either
// commits or rolls back the optimistic state. Actions are serialized.
type Controller struct {
	store   *Store
	timer   *TimerEngine
	gate    *Gate
	limits  *LimitPolicy
	cleanup *Cleanup
	channel Channel
	clock   Clock
	caps    Capabilities

	alerts   AlertSink
	reporter LayoutReporter
	canvas   CanvasCapturer
	summary  SummaryWriter

	mu sync.Mutex
}

func NewController(store *Store, channel Channel, opts Options) *Controller {
	if opts.Alerts == nil {
		opts.Alerts = nopAlerts{}
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	timer := NewTimerEngine(store, opts.Clock, opts.Scheduler, opts.TickInterval, opts.ChangeCooldown)
	return &Controller{
		store:    store,
		timer:    timer,
		gate:     NewGate(store, opts.Alerts, timer.Cooldown()),
		limits:   NewLimitPolicy(opts.Alerts),
		cleanup:  NewCleanup(store, timer, opts.Alerts),
		channel:  channel,
		clock:    opts.Clock,
		caps:     opts.Capabilities,
		alerts:   opts.Alerts,
		reporter: opts.Reporter,
		canvas:   opts.Canvas,
		summary:  opts.Summary,
	}
}

func (c *Controller) Snapshot() State {
	return c.store.Snapshot()
}

// TimerAlive reports whether the periodic timer job exists.
func (c *Controller) TimerAlive() bool {
	return c.timer.Running()
}

// Start starts a new recording, or resumes a paused one that has not been
// resumed yet.
func (c *Controller) Start(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.store.Snapshot()
	switch {
	case st.Stopped:
		return c.reject(ErrAlreadyStopped, MsgAlreadyStopped)
	case !st.ConfirmedToRecord:
		return c.reject(ErrNotConfirmed, MsgNotConfirmed)
	case !st.MediaOn():
		return c.reject(ErrMediaOff, mediaOffMessage(st.MediaOptions))
	}

	c.store.Update(Patch{
		ModalVisible:    pointer.ToBool(false),
		ClearedToRecord: pointer.ToBool(true),
	})

	action := events.StartRecordKey
	if st.Started && st.Paused && !st.Resumed && !st.Stopped {
		action = events.ResumeRecordKey
	}

	ack, err := c.emit(ctx, action, st)
	if err != nil {
		return OutcomeUnknown, err
	}
	if !ack.Success {
		c.store.Update(Patch{
			CanRecord:   pointer.ToBool(true),
			StartReport: pointer.ToBool(false),
			EndReport:   pointer.ToBool(true),
		})
		c.alerts.Alert(startFailedMessage(ack.Reason), SeverityDanger, DefaultAlertDuration)
		return OutcomeRejected, &ServerRejection{Action: action, Reason: ack.Reason, RecordState: ack.RecordState}
	}

	c.store.Update(Patch{
		Started:           pointer.ToBool(true),
		Paused:            pointer.ToBool(false),
		StartReport:       pointer.ToBool(true),
		EndReport:         pointer.ToBool(false),
		ShowRecordButtons: pointer.ToBool(true),
		RecordState:       pointer.ToString(RecordStateRed),
	})

	if action == events.StartRecordKey {
		c.report(ctx, st.RoomName, false)
		c.timer.Start()
	} else {
		c.store.Update(Patch{Resumed: pointer.ToBool(true)})
		c.report(ctx, st.RoomName, true)
		c.timer.Resume()
		c.timer.ArmGate()
	}

	if st.MediaOptions == MediaVideo && st.WhiteboardStarted && !st.WhiteboardEnded {
		c.capture(ctx, true)
	}
	return OutcomeCommitted, nil
}

// Update pauses a running recording or resumes a paused one.
func (c *Controller) Update(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.store.Snapshot()
	switch {
	case st.Stopped:
		return c.reject(ErrAlreadyStopped, MsgAlreadyStopped)
	case !st.MediaOn():
		return c.reject(ErrMediaOff, mediaOffMessage(st.MediaOptions))
	case st.Started && !st.Paused:
		return c.pause(ctx, st)
	case st.Started && st.Paused:
		return c.resume(ctx, st)
	default:
		return c.reject(ErrNotStarted, MsgNotStarted)
	}
}

func (c *Controller) pause(ctx context.Context, st State) (Outcome, error) {
	if !c.limits.CanPause(st.MediaOptions, st.Limits, st.PauseCount) {
		return c.reject(ErrPauseLimit, "")
	}
	if !c.gate.Allow(false) {
		return c.reject(ErrGateClosed, "")
	}

	c.store.Update(Patch{ModalVisible: pointer.ToBool(false)})

	ack, err := c.emit(ctx, events.PauseRecordKey, st)
	if err != nil {
		return OutcomeUnknown, err
	}
	if ack.PauseCount != nil {
		c.store.Update(Patch{PauseCount: pointer.ToInt(*ack.PauseCount)})
	}
	if !ack.Success {
		c.alerts.Alert(pauseFailedMessage(ack.Reason, ack.RecordState), SeverityDanger, DefaultAlertDuration)
		return OutcomeRejected, &ServerRejection{
			Action:      events.PauseRecordKey,
			Reason:      ack.Reason,
			RecordState: ack.RecordState,
		}
	}

	recordState := RecordStateYellow
	if ack.RecordState != "" {
		recordState = ack.RecordState
	}
	if ack.PauseCount == nil {
		c.store.Update(Patch{PauseCount: pointer.ToInt(st.PauseCount + 1)})
	}
	c.store.Update(Patch{
		Paused:         pointer.ToBool(true),
		StartReport:    pointer.ToBool(false),
		EndReport:      pointer.ToBool(true),
		CanPauseResume: pointer.ToBool(false),
		RecordState:    pointer.ToString(recordState),
	})
	c.alerts.Alert(MsgPaused, SeveritySuccess, DefaultAlertDuration)
	c.timer.ArmGate()
	return OutcomeCommitted, nil
}

func (c *Controller) resume(ctx context.Context, st State) (Outcome, error) {
	if !st.ConfirmedToRecord {
		return c.reject(ErrNotConfirmed, MsgNotConfirmed)
	}
	if !c.limits.CanResume(st.MediaOptions, st.Limits, st.PauseCount) {
		return c.reject(ErrResumeLimit, MsgResumeLimit)
	}
	if !c.gate.Allow(false) {
		return c.reject(ErrGateClosed, "")
	}
	if c.timer.Running() {
		return c.reject(ErrTimerRunning, gateMessage(false, c.timer.Cooldown()))
	}

	c.store.Update(Patch{
		ModalVisible:    pointer.ToBool(false),
		ClearedToRecord: pointer.ToBool(true),
		Paused:          pointer.ToBool(false),
	})
	c.timer.Resume()
	defer c.timer.ArmGate()

	ack, err := c.emit(ctx, events.ResumeRecordKey, st)
	if err != nil {
		c.timer.Halt()
		c.store.Update(Patch{Paused: pointer.ToBool(true)})
		return OutcomeUnknown, err
	}
	if !ack.Success {
		c.timer.Halt()
		c.store.Update(Patch{
			Paused:      pointer.ToBool(true),
			CanRecord:   pointer.ToBool(true),
			StartReport: pointer.ToBool(false),
			EndReport:   pointer.ToBool(true),
		})
		c.alerts.Alert(MsgResumeFailed, SeverityDanger, DefaultAlertDuration)
		return OutcomeRejected, &ServerRejection{Action: events.ResumeRecordKey, Reason: ack.Reason}
	}

	c.store.Update(Patch{
		Resumed:     pointer.ToBool(true),
		StartReport: pointer.ToBool(true),
		EndReport:   pointer.ToBool(false),
		RecordState: pointer.ToString(RecordStateRed),
	})
	c.report(ctx, st.RoomName, true)
	return OutcomeCommitted, nil
}

// Stop ends the recording and resets the session to its stopped values.
func (c *Controller) Stop(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.store.Snapshot()
	switch {
	case st.Stopped:
		return c.reject(ErrAlreadyStopped, MsgNotStartedOrDone)
	case !st.Started:
		return c.reject(ErrNotStarted, MsgNotStartedOrDone)
	}
	if !c.gate.Allow(true) {
		return c.reject(ErrGateClosed, "")
	}

	c.store.Update(Patch{ModalVisible: pointer.ToBool(false)})

	ack, err := c.emit(ctx, events.StopRecordKey, st)
	if err != nil {
		return OutcomeUnknown, err
	}
	if !ack.Success {
		c.alerts.Alert(stopFailedMessage(ack.Reason, ack.RecordState), SeverityDanger, DefaultAlertDuration)
		return OutcomeRejected, &ServerRejection{
			Action:      events.StopRecordKey,
			Reason:      ack.Reason,
			RecordState: ack.RecordState,
		}
	}

	final := c.store.Snapshot()
	c.cleanup.CleanUp(CleanupOptions{ResetPauseState: true})
	c.writeSummary(final)

	if st.MediaOptions == MediaVideo && st.WhiteboardStarted && !st.WhiteboardEnded {
		c.capture(ctx, false)
	}
	return OutcomeCommitted, nil
}

// Teardown resets the session when the participant leaves the room.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanup.CleanUp(CleanupOptions{ResetPauseState: true, Silent: true})
	c.store.Update(Patch{RoomName: pointer.ToString("")})
}

// Reset re-creates the zero-state, keeping the host inputs that describe the
// room and the participant's media.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timer.Halt()
	c.timer.CancelGate()

	st := c.store.Snapshot()
	fresh := NewState(st.RoomName, st.MediaOptions, st.Limits)
	fresh.VideoOn = st.VideoOn
	fresh.AudioOn = st.AudioOn
	fresh.WhiteboardStarted = st.WhiteboardStarted
	fresh.WhiteboardEnded = st.WhiteboardEnded
	c.store.Replace(fresh)
}

func (c *Controller) SetMedia(videoOn, audioOn bool) {
	c.store.Update(Patch{VideoOn: pointer.ToBool(videoOn), AudioOn: pointer.ToBool(audioOn)})
}

func (c *Controller) SetWhiteboard(started, ended bool) {
	c.store.Update(Patch{WhiteboardStarted: pointer.ToBool(started), WhiteboardEnded: pointer.ToBool(ended)})
}

func (c *Controller) reject(err error, message string) (Outcome, error) {
	if message != "" {
		c.alerts.Alert(message, SeverityDanger, DefaultAlertDuration)
	}
	appstats.OnRejected(err.Error())
	log.WithField("room", c.store.Snapshot().RoomName).Debugf("recording action rejected: %s", err)
	return OutcomeRejected, err
}

func (c *Controller) emit(ctx context.Context, action string, st State) (*events.Ack, error) {
	req := events.NewRecordRequest(action, st.RoomName, st.Params)
	l := log.WithField("room", st.RoomName).WithField("action", action)

	appstats.OnRequest(action)
	begin := time.Now()
	ack, err := c.channel.EmitWithAck(ctx, req)
	if err == nil && ack == nil {
		err = errors.New("empty acknowledgement")
	}
	if err != nil {
		appstats.OnAck(action, OutcomeUnknown.String(), time.Since(begin))
		l.WithError(err).Error("recording request failed")
		return nil, errors.Wrapf(ErrTransport, "%s: %v", action, err)
	}

	outcome := OutcomeCommitted
	if !ack.Success {
		outcome = OutcomeRejected
		l.WithField("reason", ack.Reason).Warn("recording request rejected")
	} else {
		l.Info("recording request acknowledged")
	}
	appstats.OnAck(action, outcome.String(), time.Since(begin))
	return ack, nil
}

func (c *Controller) report(ctx context.Context, room string, restart bool) {
	if c.reporter == nil {
		return
	}
	if err := c.reporter.Report(ctx, room, restart); err != nil {
		log.WithField("room", room).WithError(err).Warn("failed to report recording layout")
	}
}

func (c *Controller) capture(ctx context.Context, start bool) {
	if c.canvas == nil {
		return
	}
	var err error
	if start {
		err = c.canvas.StartCapture(ctx)
	} else {
		err = c.canvas.StopCapture(ctx)
	}
	if err != nil {
		log.WithError(err).Warnf("whiteboard capture failed (start=%t)", start)
	}
}

func (c *Controller) writeSummary(st State) {
	if c.summary == nil {
		return
	}
	err := c.summary.WriteSummary(&events.RecordingSummary{
		RoomName:       st.RoomName,
		MediaOptions:   string(st.MediaOptions),
		ElapsedSeconds: st.ElapsedSeconds,
		ProgressTime:   st.ProgressTime,
		PauseCount:     st.PauseCount,
		StoppedAt:      c.clock.Now().UTC(),
	})
	if err != nil {
		log.WithField("room", st.RoomName).WithError(err).Warn("failed to write recording summary")
	}
}
