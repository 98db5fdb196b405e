package transport

// ConnectionState represents a normalized connection state across the
// transport adapters.
type ConnectionState int

const (
	ConnectionStateNew ConnectionState = iota
	ConnectionStateConnecting
	ConnectionStateConnected
	ConnectionStateDisconnected
	ConnectionStateFailed
	ConnectionStateClosed
)

// IsTerminalState returns true if the connection state is terminal (failed or closed)
func (s ConnectionState) IsTerminalState() bool {
	return s == ConnectionStateFailed || s == ConnectionStateClosed
}

func (s ConnectionState) IsConnected() bool {
	return s == ConnectionStateConnected
}

func (s ConnectionState) String() string {
	switch s {
	case ConnectionStateNew:
		return "new"
	case ConnectionStateConnecting:
		return "connecting"
	case ConnectionStateConnected:
		return "connected"
	case ConnectionStateDisconnected:
		return "disconnected"
	case ConnectionStateFailed:
		return "failed"
	case ConnectionStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
