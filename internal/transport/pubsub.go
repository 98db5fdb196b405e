package transport

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mediasfu/recordctl/internal/appstats"
	"github.com/mediasfu/recordctl/internal/pubsub"
	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var _ Conn = (*PubSubChannel)(nil)

// PubSubChannel publishes recording requests on one pubsub channel and reads
// acknowledgements and notices from another.
type PubSubChannel struct {
	ps       pubsub.PubSub
	publish  string
	timeout  time.Duration
	onNotice NoticeHandler
	acks     *Acks

	mu    sync.Mutex
	state ConnectionState
}

func NewPubSubChannel(ps pubsub.PubSub, publish string, timeout time.Duration, onNotice NoticeHandler) *PubSubChannel {
	return &PubSubChannel{
		ps:       ps,
		publish:  publish,
		timeout:  timeout,
		onNotice: onNotice,
		acks:     NewAcks(),
		state:    ConnectionStateConnecting,
	}
}

// OnStart is called by the pubsub adapter once the subscription is active.
func (c *PubSubChannel) OnStart() error {
	c.setState(ConnectionStateConnected)
	log.WithField("channel", c.publish).Info("recording pubsub channel ready")
	return nil
}

// HandlePubSub is the subscription handler.
func (c *PubSubChannel) HandlePubSub(ctx context.Context, msg []byte) {
	if c.State() == ConnectionStateClosed {
		return
	}
	e := events.Decode(msg)
	if !e.IsValid() {
		log.Errorf("invalid event: %s", msg)
		appstats.OnNotice("")
		return
	}

	if ack := e.Ack(); ack != nil {
		if !c.acks.Deliver(ack) {
			log.WithField("requestId", ack.RequestId).
				WithField("action", ack.Action).
				Warn("unexpected acknowledgement")
		}
		return
	}
	if c.onNotice != nil {
		c.onNotice(e)
	}
}

func (c *PubSubChannel) EmitWithAck(ctx context.Context, req *events.RecordRequest) (*events.Ack, error) {
	if c.State().IsTerminalState() {
		return nil, ErrClosed
	}
	req.RequestId = uuid.New().String()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	ch, err := c.acks.Add(req.RequestId)
	if err != nil {
		return nil, err
	}
	if err := c.ps.Publish(c.publish, b); err != nil {
		c.acks.Remove(req.RequestId)
		return nil, errors.Wrap(err, "failed to publish request")
	}
	return c.acks.Wait(ctx, req.RequestId, ch, c.timeout)
}

func (c *PubSubChannel) Report(_ context.Context, roomName string, restart bool) error {
	b, err := json.Marshal(events.NewReportLayout(roomName, restart))
	if err != nil {
		return err
	}
	return c.ps.Publish(c.publish, b)
}

func (c *PubSubChannel) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *PubSubChannel) setState(s ConnectionState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Close fails outstanding requests. The pubsub client itself is owned by the
// caller.
func (c *PubSubChannel) Close() error {
	c.setState(ConnectionStateClosed)
	c.acks.Close()
	return nil
}
