package recording

import (
	"github.com/mediasfu/recordctl/internal/pubsub/events"
)

type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

const (
	RecordStateGreen  = "green"
	RecordStateYellow = "yellow"
	RecordStateRed    = "red"
)

// Limits holds the maximum number of pauses per recording media type.
type Limits struct {
	VideoPauses int `json:"videoPauses"`
	AudioPauses int `json:"audioPauses"`
}

func (l Limits) For(m MediaType) int {
	if m == MediaVideo {
		return l.VideoPauses
	}
	return l.AudioPauses
}

// State is the observable recording session together with the host inputs
// the lifecycle decisions depend on.
type State struct {
	RoomName          string                      `json:"roomName"`
	MediaOptions      MediaType                   `json:"mediaOptions"`
	Limits            Limits                      `json:"limits"`
	Params            *events.UserRecordingParams `json:"userRecordingParams,omitempty"`
	ConfirmedToRecord bool                        `json:"confirmedToRecord"`
	VideoOn           bool                        `json:"videoOn"`
	AudioOn           bool                        `json:"audioOn"`
	WhiteboardStarted bool                        `json:"whiteboardStarted"`
	WhiteboardEnded   bool                        `json:"whiteboardEnded"`

	Started           bool   `json:"started"`
	Paused            bool   `json:"paused"`
	Resumed           bool   `json:"resumed"`
	Stopped           bool   `json:"stopped"`
	ElapsedSeconds    int    `json:"elapsedSeconds"`
	ProgressTime      string `json:"progressTime"`
	StartTimestamp    *int64 `json:"startTimestamp,omitempty"`
	PauseCount        int    `json:"pauseCount"`
	TimerRunning      bool   `json:"timerRunning"`
	CanPauseResume    bool   `json:"canPauseResume"`
	StartReport       bool   `json:"startReport"`
	EndReport         bool   `json:"endReport"`
	CanRecord         bool   `json:"canRecord"`
	ClearedToRecord   bool   `json:"clearedToRecord"`
	ClearedToResume   bool   `json:"clearedToResume"`
	ShowRecordButtons bool   `json:"showRecordButtons"`
	RecordState       string `json:"recordState"`
	ModalVisible      bool   `json:"modalVisible"`
}

// NewState returns the zero-state of a recording session for the given
// host inputs.
func NewState(roomName string, media MediaType, limits Limits) State {
	return State{
		RoomName:        roomName,
		MediaOptions:    media,
		Limits:          limits,
		ProgressTime:    FormatElapsed(0),
		CanRecord:       true,
		ClearedToRecord: true,
		ClearedToResume: true,
		EndReport:       true,
		RecordState:     RecordStateGreen,
	}
}

// Recording reports whether a recording is in progress and not paused.
func (s State) Recording() bool {
	return s.Started && !s.Paused && !s.Stopped
}

// MediaOn reports whether the media required by MediaOptions is on.
func (s State) MediaOn() bool {
	if s.MediaOptions == MediaVideo {
		return s.VideoOn
	}
	return s.AudioOn
}

// Patch is a partial state update. Nil fields are left untouched.
type Patch struct {
	RoomName          *string
	MediaOptions      *MediaType
	Limits            *Limits
	Params            *events.UserRecordingParams
	ConfirmedToRecord *bool
	VideoOn           *bool
	AudioOn           *bool
	WhiteboardStarted *bool
	WhiteboardEnded   *bool

	Started             *bool
	Paused              *bool
	Resumed             *bool
	Stopped             *bool
	ElapsedSeconds      *int
	ProgressTime        *string
	StartTimestamp      *int64
	ClearStartTimestamp bool
	PauseCount          *int
	TimerRunning        *bool
	CanPauseResume      *bool
	StartReport         *bool
	EndReport           *bool
	CanRecord           *bool
	ClearedToRecord     *bool
	ClearedToResume     *bool
	ShowRecordButtons   *bool
	RecordState         *string
	ModalVisible        *bool
}

func (p Patch) Apply(s *State) {
	if p.RoomName != nil {
		s.RoomName = *p.RoomName
	}
	if p.MediaOptions != nil {
		s.MediaOptions = *p.MediaOptions
	}
	if p.Limits != nil {
		s.Limits = *p.Limits
	}
	if p.Params != nil {
		s.Params = p.Params
	}
	if p.ConfirmedToRecord != nil {
		s.ConfirmedToRecord = *p.ConfirmedToRecord
	}
	if p.VideoOn != nil {
		s.VideoOn = *p.VideoOn
	}
	if p.AudioOn != nil {
		s.AudioOn = *p.AudioOn
	}
	if p.WhiteboardStarted != nil {
		s.WhiteboardStarted = *p.WhiteboardStarted
	}
	if p.WhiteboardEnded != nil {
		s.WhiteboardEnded = *p.WhiteboardEnded
	}
	if p.Started != nil {
		s.Started = *p.Started
	}
	if p.Paused != nil {
		s.Paused = *p.Paused
	}
	if p.Resumed != nil {
		s.Resumed = *p.Resumed
	}
	if p.Stopped != nil {
		s.Stopped = *p.Stopped
	}
	if p.ElapsedSeconds != nil {
		s.ElapsedSeconds = *p.ElapsedSeconds
	}
	if p.ProgressTime != nil {
		s.ProgressTime = *p.ProgressTime
	}
	if p.ClearStartTimestamp {
		s.StartTimestamp = nil
	} else if p.StartTimestamp != nil {
		ts := *p.StartTimestamp
		s.StartTimestamp = &ts
	}
	if p.PauseCount != nil {
		s.PauseCount = *p.PauseCount
	}
	if p.TimerRunning != nil {
		s.TimerRunning = *p.TimerRunning
	}
	if p.CanPauseResume != nil {
		s.CanPauseResume = *p.CanPauseResume
	}
	if p.StartReport != nil {
		s.StartReport = *p.StartReport
	}
	if p.EndReport != nil {
		s.EndReport = *p.EndReport
	}
	if p.CanRecord != nil {
		s.CanRecord = *p.CanRecord
	}
	if p.ClearedToRecord != nil {
		s.ClearedToRecord = *p.ClearedToRecord
	}
	if p.ClearedToResume != nil {
		s.ClearedToResume = *p.ClearedToResume
	}
	if p.ShowRecordButtons != nil {
		s.ShowRecordButtons = *p.ShowRecordButtons
	}
	if p.RecordState != nil {
		s.RecordState = *p.RecordState
	}
	if p.ModalVisible != nil {
		s.ModalVisible = *p.ModalVisible
	}
}
