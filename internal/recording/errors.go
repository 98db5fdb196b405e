package recording

import (
	"fmt"

	"github.com/pkg/errors"
)

// Outcome is the tri-state result of a lifecycle action.
type Outcome int

const (
	// OutcomeRejected means the action was refused locally or by the
	// server and the state was left or rolled back to its prior values.
	OutcomeRejected Outcome = iota
	// OutcomeCommitted means the server acknowledged the action.
	OutcomeCommitted
	// OutcomeUnknown means no acknowledgement arrived; the server state
	// is not known.
	OutcomeUnknown
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeCommitted:
		return "committed"
	case OutcomeUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

var (
	ErrNotConfirmed   = errors.New("recording not confirmed")
	ErrMediaOff       = errors.New("required media is off")
	ErrAlreadyStopped = errors.New("recording already stopped")
	ErrNotStarted     = errors.New("recording not started")
	ErrPauseLimit     = errors.New("pause limit reached")
	ErrResumeLimit    = errors.New("resume limit exceeded")
	ErrGateClosed     = errors.New("pause/resume cool-down in progress")
	ErrTimerRunning   = errors.New("recording timer already running")
	ErrLaunchRefused  = errors.New("recording launch refused")
	ErrInvalidConfig  = errors.New("invalid recording configuration")

	// ErrTransport wraps every failure to obtain an acknowledgement.
	ErrTransport = errors.New("recording transport failure")
)

var preconditions = []error{
	ErrNotConfirmed, ErrMediaOff, ErrAlreadyStopped, ErrNotStarted, ErrPauseLimit,
	ErrResumeLimit, ErrGateClosed, ErrTimerRunning, ErrLaunchRefused, ErrInvalidConfig,
}

// IsPrecondition reports whether err was a local rejection that never
// reached the server.
func IsPrecondition(err error) bool {
	for _, p := range preconditions {
		if errors.Is(err, p) {
			return true
		}
	}
	return false
}

// ServerRejection is returned when the server acknowledged an action with
// success=false.
type ServerRejection struct {
	Action      string
	Reason      string
	RecordState string
}

func (e *ServerRejection) Error() string {
	if e.RecordState != "" {
		return fmt.Sprintf("%s rejected by server: %s (state %s)", e.Action, e.Reason, e.RecordState)
	}
	return fmt.Sprintf("%s rejected by server: %s", e.Action, e.Reason)
}

func IsServerRejection(err error) bool {
	var r *ServerRejection
	return errors.As(err, &r)
}
