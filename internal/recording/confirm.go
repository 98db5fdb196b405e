package recording

import (
	"github.com/AlekSi/pointer"
	"github.com/mediasfu/recordctl/internal/pubsub/events"
)

// Capabilities are the recording features granted to the room.
type Capabilities struct {
	AudioSupport                     bool   `yaml:"audioSupport" json:"audioSupport"`
	VideoSupport                     bool   `yaml:"videoSupport" json:"videoSupport"`
	AllParticipantsSupport           bool   `yaml:"allParticipantsSupport" json:"allParticipantsSupport"`
	VideoParticipantsSupport         bool   `yaml:"videoParticipantsSupport" json:"videoParticipantsSupport"`
	VideoParticipantsFullRoomSupport bool   `yaml:"videoParticipantsFullRoomSupport" json:"videoParticipantsFullRoomSupport"`
	AllParticipantsFullRoomSupport   bool   `yaml:"allParticipantsFullRoomSupport" json:"allParticipantsFullRoomSupport"`
	SupportForOtherOrientation       bool   `yaml:"supportForOtherOrientation" json:"supportForOtherOrientation"`
	MultiFormatsSupport              bool   `yaml:"multiFormatsSupport" json:"multiFormatsSupport"`
	PreferredOrientation             string `yaml:"preferredOrientation" json:"preferredOrientation"`
}

// Choices are the recording options picked in the recording modal.
type Choices struct {
	MediaOptions       string `json:"mediaOptions"`
	AudioOptions       string `json:"audioOptions"`
	VideoOptions       string `json:"videoOptions"`
	VideoType          string `json:"videoType"`
	VideoOptimized     bool   `json:"videoOptimized"`
	DisplayType        string `json:"recordingDisplayType"`
	AddHLS             bool   `json:"addHls"`
	NameTags           bool   `json:"nameTags"`
	BackgroundColor    string `json:"backgroundColor"`
	NameTagsColor      string `json:"nameTagsColor"`
	OrientationVideo   string `json:"orientationVideo"`
	AddText            bool   `json:"addText"`
	CustomText         string `json:"customText,omitempty"`
	CustomTextPosition string `json:"customTextPosition,omitempty"`
	CustomTextColor    string `json:"customTextColor,omitempty"`
}

// Meeting describes the room settings the choices are validated against.
type Meeting struct {
	EventType           string `json:"eventType"`
	DisplayType         string `json:"displayType"`
	VideoOptimized      bool   `json:"videoOptimized"`
	BreakoutRoomStarted bool   `json:"breakoutRoomStarted"`
	BreakoutRoomEnded   bool   `json:"breakoutRoomEnded"`
}

const EventTypeBroadcast = "broadcast"

const (
	MsgNoFullRoomVideo      = "You are not allowed to record videos of all participants; change the meeting display type to video or video optimized."
	MsgOnlySelf             = "You are only allowed to record yourself."
	MsgNoOtherVideo         = "You are not allowed to record other video participants."
	MsgNoAllOrientations    = "You are not allowed to record all orientations."
	MsgNoOrientation        = "You are not allowed to record this orientation."
	MsgNoAllFormats         = "You are not allowed to record all formats."
	MsgMediaDisplayMismatch = "Recording display type can be either video, video optimized, or media when meeting display type is media."
	MsgVideoDisplayMismatch = "Recording display type can be either video or video optimized when meeting display type is video."
	MsgOptimizedMismatch    = "Recording display type can only be video optimized when meeting display type is video optimized."
	MsgAllNeedsMedia        = "You can only record all participants with media."
)

// ValidateChoices checks the choices against the capabilities and meeting
// settings. It returns the normalised choices, or a non-empty alert message
// when they are refused.
func ValidateChoices(ch Choices, caps Capabilities, m Meeting) (Choices, string) {
	breakoutActive := m.BreakoutRoomStarted && !m.BreakoutRoomEnded

	if !caps.VideoParticipantsFullRoomSupport && ch.VideoOptions == "all" && ch.MediaOptions == "video" &&
		m.DisplayType == "all" && !breakoutActive {
		return ch, MsgNoFullRoomVideo
	}
	if !caps.AllParticipantsSupport && ch.VideoOptions == "all" {
		return ch, MsgOnlySelf
	}
	if !caps.VideoParticipantsSupport && ch.DisplayType == "video" {
		return ch, MsgNoOtherVideo
	}
	if !caps.SupportForOtherOrientation {
		if ch.OrientationVideo == "all" {
			return ch, MsgNoAllOrientations
		}
		if (caps.PreferredOrientation == "landscape" && ch.OrientationVideo == "portrait") ||
			(caps.PreferredOrientation == "portrait" && ch.OrientationVideo == "landscape") {
			return ch, MsgNoOrientation
		}
	}
	if !caps.MultiFormatsSupport && ch.VideoType == "all" {
		return ch, MsgNoAllFormats
	}

	if m.EventType != EventTypeBroadcast {
		if ch.MediaOptions == "video" {
			if m.DisplayType == "media" && ch.DisplayType == "all" {
				return ch, MsgMediaDisplayMismatch
			}
			if m.DisplayType == "video" && (ch.DisplayType == "all" || ch.DisplayType == "media") {
				return ch, MsgVideoDisplayMismatch
			}
			if m.VideoOptimized && !ch.VideoOptimized {
				return ch, MsgOptimizedMismatch
			}
		} else {
			ch.DisplayType = "media"
			ch.VideoOptimized = false
		}
	}

	if ch.DisplayType == "all" && !caps.AllParticipantsFullRoomSupport {
		return ch, MsgAllNeedsMedia
	}
	return ch, ""
}

// Params builds the request parameters sent with start and resume.
func (ch Choices) Params() *events.UserRecordingParams {
	p := &events.UserRecordingParams{
		MainSpecs: events.MainSpecs{
			MediaOptions:         ch.MediaOptions,
			AudioOptions:         ch.AudioOptions,
			VideoOptions:         ch.VideoOptions,
			VideoType:            ch.VideoType,
			VideoOptimized:       ch.VideoOptimized,
			RecordingDisplayType: ch.DisplayType,
			AddHLS:               ch.AddHLS,
		},
		DispSpecs: events.DispSpecs{
			NameTags:         ch.NameTags,
			BackgroundColor:  ch.BackgroundColor,
			NameTagsColor:    ch.NameTagsColor,
			OrientationVideo: ch.OrientationVideo,
		},
		TextSpecs: &events.TextSpecs{AddText: ch.AddText},
	}
	if ch.CustomText != "" {
		p.TextSpecs.CustomText = pointer.ToString(ch.CustomText)
	}
	if ch.CustomTextPosition != "" {
		p.TextSpecs.CustomTextPosition = pointer.ToString(ch.CustomTextPosition)
	}
	if ch.CustomTextColor != "" {
		p.TextSpecs.CustomTextColor = pointer.ToString(ch.CustomTextColor)
	}
	return p
}

// Confirm validates the recording choices and, when accepted, stores the
// resulting parameters and marks the session as confirmed.
func (c *Controller) Confirm(ch Choices, m Meeting) (*events.UserRecordingParams, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, msg := ValidateChoices(ch, c.caps, m)
	if msg != "" {
		_, err := c.reject(ErrInvalidConfig, msg)
		return nil, err
	}

	params := ch.Params()
	c.store.Update(Patch{
		Params:            params,
		ConfirmedToRecord: pointer.ToBool(true),
	})
	c.alerts.Alert(MsgConfirmed, SeveritySuccess, DefaultAlertDuration)
	return params, nil
}
