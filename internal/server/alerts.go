package server

import (
	"sync"
	"time"

	"github.com/mediasfu/recordctl/internal/recording"
	log "github.com/sirupsen/logrus"
)

const maxAlerts = 50

type Alert struct {
	Message  string             `json:"message"`
	Severity recording.Severity `json:"type"`
	Duration time.Duration      `json:"duration"`
	Time     time.Time          `json:"time"`
}

var _ recording.AlertSink = (*AlertLog)(nil)

// AlertLog logs participant alerts and keeps the most recent ones for the
// control API.
type AlertLog struct {
	duration time.Duration

	mu     sync.Mutex
	alerts []Alert
}

// NewAlertLog returns an alert log. A positive duration replaces the
// default alert duration.
func NewAlertLog(duration time.Duration) *AlertLog {
	return &AlertLog{duration: duration}
}

func (a *AlertLog) Alert(message string, severity recording.Severity, duration time.Duration) {
	if a.duration > 0 && duration == recording.DefaultAlertDuration {
		duration = a.duration
	}

	l := log.WithField("severity", severity)
	if severity == recording.SeverityDanger {
		l.Warn(message)
	} else {
		l.Info(message)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, Alert{Message: message, Severity: severity, Duration: duration, Time: time.Now()})
	if len(a.alerts) > maxAlerts {
		a.alerts = a.alerts[len(a.alerts)-maxAlerts:]
	}
}

// Recent returns the kept alerts, oldest first.
func (a *AlertLog) Recent() []Alert {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Alert(nil), a.alerts...)
}
