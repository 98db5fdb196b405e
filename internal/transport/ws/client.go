// Package ws is the websocket transport. Requests are sent as event
// envelopes carrying an ack id; the server answers with an envelope that
// repeats the ack id.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mediasfu/recordctl/internal/appstats"
	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/mediasfu/recordctl/internal/transport"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = pongWait * 9 / 10
	maxMessageSize = 65536
)

var _ transport.Conn = (*Client)(nil)

// Envelope is the websocket message frame.
type Envelope struct {
	Event string          `json:"event"`
	AckId string          `json:"ackId,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Client struct {
	url      string
	conn     *websocket.Conn
	timeout  time.Duration
	onNotice transport.NoticeHandler
	acks     *transport.Acks

	writeMu sync.Mutex
	mu      sync.Mutex
	state   transport.ConnectionState

	closeOnce sync.Once
	done      chan struct{}
}

// URL maps an http(s) link to its websocket address.
func URL(link string) string {
	switch {
	case strings.HasPrefix(link, "https://"):
		return "wss://" + strings.TrimPrefix(link, "https://")
	case strings.HasPrefix(link, "http://"):
		return "ws://" + strings.TrimPrefix(link, "http://")
	}
	return link
}

// Dial opens the connection and starts reading from it.
func Dial(ctx context.Context, url string, header http.Header, timeout time.Duration, onNotice transport.NoticeHandler) (*Client, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 30 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, errors.Wrapf(err, "websocket dial %s", url)
	}

	c := &Client{
		url:      url,
		conn:     conn,
		timeout:  timeout,
		onNotice: onNotice,
		acks:     transport.NewAcks(),
		state:    transport.ConnectionStateConnected,
		done:     make(chan struct{}),
	}
	go c.readPump()
	go c.pingPump()

	log.WithField("url", url).Info("recording websocket connected")
	return c, nil
}

func (c *Client) readPump() {
	defer c.shutdown(transport.ConnectionStateDisconnected)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			select {
			case <-c.done:
			default:
				log.WithField("url", c.url).WithError(err).Warn("recording websocket read failed")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if env.AckId != "" {
			c.handleAck(env)
			continue
		}

		e := events.NewEvent(env.Event, env.Data)
		if !e.IsValid() {
			log.Errorf("invalid websocket event %q: %s", env.Event, env.Data)
			appstats.OnNotice("")
			continue
		}
		if c.onNotice != nil {
			c.onNotice(e)
		}
	}
}

// handleAck decodes a loosely typed acknowledgement payload.
func (c *Client) handleAck(env Envelope) {
	raw := map[string]interface{}{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &raw); err != nil {
			log.WithField("ackId", env.AckId).WithError(err).Error("invalid acknowledgement")
			return
		}
	}

	ack := &events.Ack{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           ack,
	})
	if err != nil {
		log.WithError(err).Error("failed to create acknowledgement decoder")
		return
	}
	if err := decoder.Decode(raw); err != nil {
		log.WithField("ackId", env.AckId).WithError(err).Error("invalid acknowledgement")
		return
	}

	ack.Id = events.RecordAckKey
	ack.RequestId = env.AckId
	if ack.Action == "" {
		ack.Action = env.Event
	}
	if !c.acks.Deliver(ack) {
		log.WithField("ackId", env.AckId).Warn("unexpected acknowledgement")
	}
}

func (c *Client) pingPump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) write(env Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(env)
}

func (c *Client) EmitWithAck(ctx context.Context, req *events.RecordRequest) (*events.Ack, error) {
	if !c.State().IsConnected() {
		return nil, transport.ErrNotConnected
	}
	req.RequestId = uuid.New().String()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	ch, err := c.acks.Add(req.RequestId)
	if err != nil {
		return nil, err
	}
	if err := c.write(Envelope{Event: req.Id, AckId: req.RequestId, Data: data}); err != nil {
		c.acks.Remove(req.RequestId)
		return nil, errors.Wrap(err, "failed to send request")
	}
	return c.acks.Wait(ctx, req.RequestId, ch, c.timeout)
}

func (c *Client) Report(_ context.Context, roomName string, restart bool) error {
	if !c.State().IsConnected() {
		return transport.ErrNotConnected
	}
	data, err := json.Marshal(events.NewReportLayout(roomName, restart))
	if err != nil {
		return err
	}
	return c.write(Envelope{Event: events.ReportLayoutKey, Data: data})
}

func (c *Client) State() transport.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) shutdown(state transport.ConnectionState) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		if c.state != transport.ConnectionStateClosed {
			c.state = state
		}
		c.mu.Unlock()

		close(c.done)
		c.acks.Close()
		_ = c.conn.Close()
	})
}

func (c *Client) Close() error {
	c.mu.Lock()
	c.state = transport.ConnectionStateClosed
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.writeMu.Unlock()

	c.shutdown(transport.ConnectionStateClosed)
	return nil
}
