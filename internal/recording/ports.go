package recording

import (
	"context"

	"github.com/mediasfu/recordctl/internal/pubsub/events"
)

// Channel sends one request and waits for its acknowledgement. A returned
// error means the outcome is unknown.
type Channel interface {
	EmitWithAck(ctx context.Context, req *events.RecordRequest) (*events.Ack, error)
}

// LayoutReporter re-announces the recording layout to the media server.
type LayoutReporter interface {
	Report(ctx context.Context, roomName string, restart bool) error
}

// CanvasCapturer captures the whiteboard into the recording.
type CanvasCapturer interface {
	StartCapture(ctx context.Context) error
	StopCapture(ctx context.Context) error
}

type SummaryWriter interface {
	WriteSummary(summary *events.RecordingSummary) error
}
