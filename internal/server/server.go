package server

import (
	"github.com/mediasfu/recordctl/internal/appstats"
	"github.com/mediasfu/recordctl/internal/config"
	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/mediasfu/recordctl/internal/recording"
	log "github.com/sirupsen/logrus"
)

// Server routes server notices to the recording controller.
type Server struct {
	cfg  *config.Config
	ctrl *recording.Controller
}

func NewServer(cfg *config.Config, ctrl *recording.Controller) *Server {
	return &Server{cfg: cfg, ctrl: ctrl}
}

// HandleNotice is the transport notice handler. It runs on the transport's
// receive goroutine.
func (s *Server) HandleNotice(event *events.Event) {
	appstats.OnNotice(event.Id)

	switch event.Id {
	case events.RecordingNoticeKey:
		e := event.RecordingNotice()
		if e == nil {
			log.Errorf("invalid %s event: %s", event.Id, event.Message)
			return
		}
		s.ctrl.HandleRecordingNotice(e)

	case events.StoppedRecordingKey:
		e := event.StoppedRecording()
		if e == nil {
			log.Errorf("invalid %s event: %s", event.Id, event.Message)
			return
		}
		s.ctrl.HandleStoppedRecording(e)

	case events.TimeLeftRecordingKey:
		e := event.TimeLeftRecording()
		if e == nil {
			log.Errorf("invalid %s event: %s", event.Id, event.Message)
			return
		}
		s.ctrl.HandleTimeLeft(e)

	default:
		log.WithField("event", event.Id).Trace("ignoring event")
	}
}

func (s *Server) OnStart() error {
	log.Info("Application started. Version=", s.cfg.App.Version, " InstanceId=", s.cfg.App.InstanceId)
	return nil
}

// Close tears the session down when the application exits.
func (s *Server) Close() error {
	s.ctrl.Teardown()
	return nil
}
