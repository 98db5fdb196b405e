package recording

import (
	"fmt"
	"time"
)

type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

const DefaultAlertDuration = 3 * time.Second

// AlertSink shows a transient message to the participant.
type AlertSink interface {
	Alert(message string, severity Severity, duration time.Duration)
}

type AlertFunc func(message string, severity Severity, duration time.Duration)

func (f AlertFunc) Alert(message string, severity Severity, duration time.Duration) {
	f(message, severity, duration)
}

type nopAlerts struct{}

func (nopAlerts) Alert(string, Severity, time.Duration) {}

const (
	MsgNotConfirmed      = "You must click confirm before you can start recording"
	MsgAlreadyStopped    = "Recording has already stopped"
	MsgNotStarted        = "Recording is not started yet"
	MsgNotStartedOrDone  = "Recording is not started yet or already stopped"
	MsgPauseLimitReached = "You have reached the limit of pauses - you can choose to stop recording."
	MsgResumeLimit       = "You have reached the limit of pauses and cannot resume the recording."
	MsgPaused            = "Recording paused successfully"
	MsgResumeFailed      = "Cannot start recording. Ensure media is on and you are cleared to record"
	MsgStopped           = "Recording Stopped"
	MsgConfirmed         = "Recording settings confirmed. You can now start recording."
)

func mediaOffMessage(m MediaType) string {
	return fmt.Sprintf("You must turn on your %s before you can start recording", m)
}

func startFailedMessage(reason string) string {
	return fmt.Sprintf("Recording could not start - %s", reason)
}

func pauseFailedMessage(reason, recordState string) string {
	return fmt.Sprintf("Recording Pause Failed: %s; the current state is: %s", reason, recordState)
}

func stopFailedMessage(reason, recordState string) string {
	return fmt.Sprintf("Recording Stop Failed: %s; the recording is currently %s", reason, recordState)
}

func gateMessage(stop bool, cooldown time.Duration) string {
	if stop {
		return fmt.Sprintf("Can only stop after %d seconds of starting or pausing or resuming recording",
			int(cooldown/time.Second))
	}
	return fmt.Sprintf("Can only pause or resume after %d seconds of starting or pausing or resuming recording",
		int(cooldown/time.Second))
}
