package server

import (
	"context"
	"testing"
	"time"

	"github.com/mediasfu/recordctl/internal/config"
	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/mediasfu/recordctl/internal/recording"
	"github.com/mediasfu/recordctl/internal/recording/recordingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	cfg     *config.Config
	clock   *recordingtest.Clock
	sched   *recordingtest.Scheduler
	channel *recordingtest.Channel
	alerts  *AlertLog
	store   *recording.Store
	ctrl    *recording.Controller
}

func newHarness() *harness {
	cfg := (&config.Config{App: config.App{Name: "recordctl", Version: "test"}}).GetDefaults()

	st := recording.NewState("room-1", recording.MediaVideo, recording.Limits{VideoPauses: 2, AudioPauses: 2})
	st.VideoOn = true
	st.AudioOn = true

	h := &harness{
		cfg:     cfg,
		clock:   recordingtest.NewClock(time.Unix(1700000000, 0)),
		sched:   recordingtest.NewScheduler(),
		channel: recordingtest.NewChannel(),
		alerts:  NewAlertLog(0),
	}
	h.store = recording.NewStore(st, recording.Immediate{}, NewStateLogger())
	h.ctrl = recording.NewController(h.store, h.channel, recording.Options{
		Clock:     h.clock,
		Scheduler: h.sched,
		Alerts:    h.alerts,
		Capabilities: recording.Capabilities{
			AudioSupport:             true,
			VideoSupport:             true,
			VideoParticipantsSupport: true,
		},
	})
	return h
}

func TestServer_HandleNotice(t *testing.T) {
	h := newHarness()
	s := NewServer(h.cfg, h.ctrl)
	require.NoError(t, s.OnStart())

	s.HandleNotice(events.Decode([]byte(`{id: 'recordingNotice', roomName: 'room-1', state: 'pause', pauseCount: 1, timeDone: 5000}`)))

	st := h.store.Snapshot()
	assert.True(t, st.Started)
	assert.True(t, st.Paused)
	assert.Equal(t, 1, st.PauseCount)
	assert.Equal(t, "00:00:05", st.ProgressTime)

	s.HandleNotice(events.NewEvent(events.TimeLeftRecordingKey, []byte(`{"roomName":"room-1","timeLeft":60}`)))
	s.HandleNotice(events.NewEvent(events.StoppedRecordingKey, []byte(`{"roomName":"room-1","state":"stop","reason":"host ended"}`)))

	alerts := h.alerts.Recent()
	require.Len(t, alerts, 2)
	assert.Equal(t, "The recording will stop in less than 60 seconds.", alerts[0].Message)
	assert.Equal(t, "The recording has stopped - host ended.", alerts[1].Message)
}

func TestServer_HandleNotice_Ignored(t *testing.T) {
	h := newHarness()
	s := NewServer(h.cfg, h.ctrl)
	before := h.store.Snapshot()

	s.HandleNotice(events.NewEvent("somethingElse", nil))
	s.HandleNotice(&events.Event{Id: events.RecordingNoticeKey, Message: []byte(`{`)})
	s.HandleNotice(events.Decode([]byte(`{id: 'recordingNotice', roomName: 'room-2', state: 'stop'}`)))

	assert.Equal(t, before, h.store.Snapshot())
	assert.Empty(t, h.alerts.Recent())
}

func TestServer_Close(t *testing.T) {
	h := newHarness()
	h.store.Update(recording.Patch{ConfirmedToRecord: boolPtr(true)})
	_, err := h.ctrl.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, NewServer(h.cfg, h.ctrl).Close())

	assert.False(t, h.ctrl.TimerAlive())
	assert.Empty(t, h.store.Snapshot().RoomName)
}

func TestAlertLog(t *testing.T) {
	a := NewAlertLog(5 * time.Second)

	a.Alert("first", recording.SeverityDanger, recording.DefaultAlertDuration)
	a.Alert("second", recording.SeveritySuccess, time.Second)
	for i := 0; i < maxAlerts; i++ {
		a.Alert("filler", recording.SeverityInfo, time.Second)
	}

	recent := a.Recent()
	assert.Len(t, recent, maxAlerts)
	assert.Equal(t, "filler", recent[0].Message)

	b := NewAlertLog(5 * time.Second)
	b.Alert("first", recording.SeverityDanger, recording.DefaultAlertDuration)
	b.Alert("second", recording.SeveritySuccess, time.Second)
	assert.Equal(t, 5*time.Second, b.Recent()[0].Duration)
	assert.Equal(t, time.Second, b.Recent()[1].Duration)
}

func boolPtr(b bool) *bool { return &b }
