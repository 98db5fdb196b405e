package events

import (
	"encoding/json"

	"github.com/titanous/json5"
)

type Event struct {
	Id      string
	Message []byte
}

// Decode reads the event id of a JSON5 message. Invalid messages yield an
// event with an empty id.
func Decode(message []byte) *Event {
	m := make(map[string]interface{})
	if err := json5.Unmarshal(message, &m); err != nil {
		return &Event{}
	}

	id, _ := m["id"].(string)
	return &Event{Id: id, Message: message}
}

// NewEvent wraps a payload received outside of the pubsub envelope, such as
// a socket frame, so it decodes like any other event.
func NewEvent(id string, data []byte) *Event {
	m := make(map[string]interface{})
	if len(data) > 0 {
		if err := json5.Unmarshal(data, &m); err != nil {
			return &Event{}
		}
	}
	m["id"] = id
	b, err := json.Marshal(m)
	if err != nil {
		return &Event{}
	}
	return &Event{Id: id, Message: b}
}

func (e *Event) IsValid() bool {
	return e.Id != ""
}

func (e *Event) RecordRequest() *RecordRequest {
	if !IsAction(e.Id) {
		return nil
	}
	s := &RecordRequest{}
	if err := json5.Unmarshal(e.Message, s); err != nil {
		return nil
	}
	return s
}

func (e *Event) Ack() *Ack {
	if e.Id != RecordAckKey {
		return nil
	}
	s := &Ack{}
	if err := json5.Unmarshal(e.Message, s); err != nil {
		return nil
	}
	return s
}

func (e *Event) RecordingNotice() *RecordingNotice {
	if e.Id != RecordingNoticeKey {
		return nil
	}
	s := &RecordingNotice{}
	if err := json5.Unmarshal(e.Message, s); err != nil {
		return nil
	}
	return s
}

func (e *Event) StoppedRecording() *StoppedRecording {
	if e.Id != StoppedRecordingKey {
		return nil
	}
	s := &StoppedRecording{}
	if err := json5.Unmarshal(e.Message, s); err != nil {
		return nil
	}
	return s
}

func (e *Event) TimeLeftRecording() *TimeLeftRecording {
	if e.Id != TimeLeftRecordingKey {
		return nil
	}
	s := &TimeLeftRecording{}
	if err := json5.Unmarshal(e.Message, s); err != nil {
		return nil
	}
	return s
}
