package events

import (
	"fmt"
	"time"
)

const (
	StartRecordKey  = "startRecord"
	ResumeRecordKey = "resumeRecord"
	PauseRecordKey  = "pauseRecord"
	StopRecordKey   = "stopRecord"

	RecordAckKey         = "recordAck"
	ReportLayoutKey      = "reportLayout"
	RecordingNoticeKey   = "recordingNotice"
	StoppedRecordingKey  = "stoppedRecording"
	TimeLeftRecordingKey = "timeLeftRecording"
)

// Actions lists the acknowledged recording actions.
var Actions = []string{StartRecordKey, ResumeRecordKey, PauseRecordKey, StopRecordKey}

func IsAction(id string) bool {
	for _, a := range Actions {
		if a == id {
			return true
		}
	}
	return false
}

type MainSpecs struct {
	MediaOptions         string `json:"mediaOptions"`
	AudioOptions         string `json:"audioOptions"`
	VideoOptions         string `json:"videoOptions"`
	VideoType            string `json:"videoType"`
	VideoOptimized       bool   `json:"videoOptimized"`
	RecordingDisplayType string `json:"recordingDisplayType"`
	AddHLS               bool   `json:"addHls"`
}

type DispSpecs struct {
	NameTags         bool   `json:"nameTags"`
	BackgroundColor  string `json:"backgroundColor"`
	NameTagsColor    string `json:"nameTagsColor"`
	OrientationVideo string `json:"orientationVideo"`
}

type TextSpecs struct {
	AddText            bool    `json:"addText"`
	CustomText         *string `json:"customText,omitempty"`
	CustomTextPosition *string `json:"customTextPosition,omitempty"`
	CustomTextColor    *string `json:"customTextColor,omitempty"`
}

// UserRecordingParams is the recording configuration snapshot sent along
// with start and resume requests.
type UserRecordingParams struct {
	MainSpecs MainSpecs  `json:"mainSpecs"`
	DispSpecs DispSpecs  `json:"dispSpecs"`
	TextSpecs *TextSpecs `json:"textSpecs,omitempty"`
}

/*
startRecord | resumeRecord | pauseRecord | stopRecord (client -> server)
```JSON5

	{
		id: 'startRecord',
		requestId: <String>, // correlates the recordAck
		roomName: <String>,
		userRecordingParams: <Object | undefined>, // start and resume only
	}

```
*/
type RecordRequest struct {
	Id                  string               `json:"id"`
	RequestId           string               `json:"requestId,omitempty"`
	RoomName            string               `json:"roomName"`
	UserRecordingParams *UserRecordingParams `json:"userRecordingParams,omitempty"`
}

func NewRecordRequest(action, roomName string, params *UserRecordingParams) *RecordRequest {
	r := &RecordRequest{Id: action, RoomName: roomName}
	if action == StartRecordKey || action == ResumeRecordKey {
		r.UserRecordingParams = params
	}
	return r
}

func (r *RecordRequest) Validate() error {
	if !IsAction(r.Id) {
		return fmt.Errorf("unknown recording action '%s'", r.Id)
	}
	if r.RoomName == "" {
		return fmt.Errorf("missing required field: roomName")
	}
	return nil
}

func (r *RecordRequest) Success(recordState string, pauseCount *int) *Ack {
	return &Ack{
		Id:          RecordAckKey,
		RequestId:   r.RequestId,
		Action:      r.Id,
		Success:     true,
		RecordState: recordState,
		PauseCount:  pauseCount,
	}
}

func (r *RecordRequest) Fail(err error) *Ack {
	return &Ack{
		Id:        RecordAckKey,
		RequestId: r.RequestId,
		Action:    r.Id,
		Success:   false,
		Reason:    err.Error(),
	}
}

/*
recordAck (server -> client)
```JSON5

	{
		id: 'recordAck',
		requestId: <String>,
		action: <String>,
		success: <Boolean>,
		reason: <String | undefined>,
		recordState: <String | undefined>, // pause and stop only
		pauseCount: <Number | undefined>, // pause only
	}

```
*/
type Ack struct {
	Id          string `json:"id,omitempty"`
	RequestId   string `json:"requestId,omitempty"`
	Action      string `json:"action,omitempty"`
	Success     bool   `json:"success"`
	Reason      string `json:"reason,omitempty"`
	RecordState string `json:"recordState,omitempty"`
	PauseCount  *int   `json:"pauseCount,omitempty"`
}

/*
reportLayout (client -> server), not acknowledged
```JSON5

	{
		id: 'reportLayout',
		roomName: <String>,
		restart: <Boolean>,
	}

```
*/
type ReportLayout struct {
	Id       string `json:"id"`
	RoomName string `json:"roomName"`
	Restart  bool   `json:"restart"`
}

func NewReportLayout(roomName string, restart bool) *ReportLayout {
	return &ReportLayout{Id: ReportLayoutKey, RoomName: roomName, Restart: restart}
}

/*
recordingNotice (server -> client)
```JSON5

	{
		id: 'recordingNotice',
		roomName: <String>,
		state: 'pause' | 'stop' | <String>,
		pauseCount: <Number | undefined>,
		timeDone: <Number | undefined>, // milliseconds recorded so far
		userRecordingParams: <Object | undefined>,
	}

```
*/
type RecordingNotice struct {
	Id                  string               `json:"id"`
	RoomName            string               `json:"roomName,omitempty"`
	State               string               `json:"state"`
	PauseCount          *int                 `json:"pauseCount,omitempty"`
	TimeDone            int64                `json:"timeDone,omitempty"`
	UserRecordingParams *UserRecordingParams `json:"userRecordingParams,omitempty"`
}

/*
stoppedRecording (server -> client)
```JSON5

	{
		id: 'stoppedRecording',
		roomName: <String>,
		state: 'stop' | <String>,
		reason: <String>,
	}

```
*/
type StoppedRecording struct {
	Id       string `json:"id"`
	RoomName string `json:"roomName,omitempty"`
	State    string `json:"state"`
	Reason   string `json:"reason,omitempty"`
}

/*
timeLeftRecording (server -> client)
```JSON5

	{
		id: 'timeLeftRecording',
		roomName: <String>,
		timeLeft: <Number>, // seconds
	}

```
*/
type TimeLeftRecording struct {
	Id       string `json:"id"`
	RoomName string `json:"roomName,omitempty"`
	TimeLeft int    `json:"timeLeft"`
}

// RecordingSummary is written to disk when a recording stops.
type RecordingSummary struct {
	RoomName       string    `json:"roomName"`
	MediaOptions   string    `json:"mediaOptions"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	ProgressTime   string    `json:"progressTime"`
	PauseCount     int       `json:"pauseCount"`
	StoppedAt      time.Time `json:"stoppedAt"`
}
