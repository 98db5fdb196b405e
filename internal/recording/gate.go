package recording

import "time"

// Gate enforces the cool-down between consecutive pause, resume and stop
// requests. The flag it reads is only ever opened by the timer engine once
// the cool-down has elapsed.
type Gate struct {
	store    *Store
	alerts   AlertSink
	cooldown time.Duration
}

func NewGate(store *Store, alerts AlertSink, cooldown time.Duration) *Gate {
	if alerts == nil {
		alerts = nopAlerts{}
	}
	return &Gate{store: store, alerts: alerts, cooldown: cooldown}
}

// Allow checks the flag without resetting it and alerts when closed.
func (g *Gate) Allow(stop bool) bool {
	if g.store.Snapshot().CanPauseResume {
		return true
	}
	g.alerts.Alert(gateMessage(stop, g.cooldown), SeverityDanger, DefaultAlertDuration)
	return false
}
