package recording

import (
	"fmt"

	"github.com/AlekSi/pointer"
	"github.com/mediasfu/recordctl/internal/pubsub/events"
	log "github.com/sirupsen/logrus"
)

// Notice handlers reconcile the local state with what the server reports.
// They run on the transport's receive goroutine, so they never take the
// controller lock: an action waiting for its acknowledgement on the same
// goroutine would otherwise never see it.

func (c *Controller) forRoom(room string) bool {
	return room == "" || room == c.store.Snapshot().RoomName
}

// HandleRecordingNotice applies a recordingNotice. It returns false when the
// notice is for another room.
func (c *Controller) HandleRecordingNotice(n *events.RecordingNotice) bool {
	if !c.forRoom(n.RoomName) {
		return false
	}

	p := Patch{Started: pointer.ToBool(true)}
	switch n.State {
	case "pause":
		p.Paused = pointer.ToBool(true)
		p.RecordState = pointer.ToString(RecordStateYellow)
	case "stop":
		p.Stopped = pointer.ToBool(true)
		p.RecordState = pointer.ToString(RecordStateGreen)
	default:
		p.Paused = pointer.ToBool(false)
		p.RecordState = pointer.ToString(RecordStateRed)
	}
	if n.PauseCount != nil {
		p.PauseCount = pointer.ToInt(*n.PauseCount)
	}
	if n.UserRecordingParams != nil {
		p.Params = n.UserRecordingParams
	}
	if n.TimeDone > 0 {
		elapsed := int(n.TimeDone / 1000)
		p.ElapsedSeconds = pointer.ToInt(elapsed)
		p.ProgressTime = pointer.ToString(FormatElapsed(elapsed))
		p.StartTimestamp = pointer.ToInt64(c.clock.Now().UnixMilli() - n.TimeDone)
	}
	c.store.Update(p)
	if n.State == "stop" {
		c.timer.Halt()
	}

	log.WithField("room", n.RoomName).
		WithField("state", n.State).
		Debug("recording notice applied")
	return true
}

func (c *Controller) HandleStoppedRecording(n *events.StoppedRecording) bool {
	if !c.forRoom(n.RoomName) {
		return false
	}
	if n.State == "stop" {
		c.alerts.Alert(fmt.Sprintf("The recording has stopped - %s.", n.Reason), SeverityDanger, DefaultAlertDuration)
	}
	return true
}

func (c *Controller) HandleTimeLeft(n *events.TimeLeftRecording) bool {
	if !c.forRoom(n.RoomName) {
		return false
	}
	c.alerts.Alert(fmt.Sprintf("The recording will stop in less than %d seconds.", n.TimeLeft),
		SeverityDanger, DefaultAlertDuration)
	return true
}
