package recording

// LimitPolicy decides whether another pause or resume is allowed for the
// current media type. Pausing needs count < limit while resuming accepts
// count <= limit, so the resume that follows the last allowed pause is
// still accepted.
type LimitPolicy struct {
	alerts AlertSink
}

func NewLimitPolicy(alerts AlertSink) *LimitPolicy {
	if alerts == nil {
		alerts = nopAlerts{}
	}
	return &LimitPolicy{alerts: alerts}
}

func (p *LimitPolicy) CanPause(media MediaType, limits Limits, pauseCount int) bool {
	if pauseCount < limits.For(media) {
		return true
	}
	p.alerts.Alert(MsgPauseLimitReached, SeverityDanger, DefaultAlertDuration)
	return false
}

func (p *LimitPolicy) CanResume(media MediaType, limits Limits, pauseCount int) bool {
	return pauseCount <= limits.For(media)
}
