package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"

	"github.com/mediasfu/recordctl/internal/appstats"
	"github.com/mediasfu/recordctl/internal/config"
	"github.com/mediasfu/recordctl/internal/connect"
	"github.com/mediasfu/recordctl/internal/pubsub"
	"github.com/mediasfu/recordctl/internal/transport"
	"github.com/mediasfu/recordctl/internal/transport/ws"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// transportDialer opens connections with the configured transport adapter.
// The pubsub adapter shares one subscription between the primary and the
// local connection.
type transportDialer struct {
	cfg      *config.Config
	onNotice transport.NoticeHandler

	mu      sync.Mutex
	ps      pubsub.PubSub
	channel *transport.PubSubChannel
}

func newTransportDialer(cfg *config.Config, onNotice transport.NoticeHandler) *transportDialer {
	return &transportDialer{cfg: cfg, onNotice: onNotice}
}

func (d *transportDialer) Dial(ctx context.Context, link string, creds connect.Credentials) (transport.Conn, error) {
	switch d.cfg.Transport.Adapter {
	case "websocket":
		return ws.Dial(ctx, ws.URL(link), authHeader(creds), d.cfg.Transport.AckTimeout, d.onNotice)
	case "pubsub", "":
		return d.dialPubSub()
	default:
		return nil, fmt.Errorf("unknown transport adapter '%s'", d.cfg.Transport.Adapter)
	}
}

func (d *transportDialer) dialPubSub() (transport.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.channel != nil && !d.channel.State().IsTerminalState() {
		return d.channel, nil
	}

	if d.ps == nil {
		ps, err := pubsub.NewPubSub(d.cfg.PubSub)
		if err != nil {
			return nil, err
		}
		if err := ps.Check(); err != nil {
			appstats.SetComponentHealth("pubsub", false)
			return nil, errors.Wrap(err, "failed to connect to pubsub")
		}
		appstats.SetComponentHealth("pubsub", true)
		d.ps = ps
	}

	channels := d.cfg.PubSub.Channels
	ch := transport.NewPubSubChannel(d.ps, channels.Publish, d.cfg.Transport.AckTimeout, d.onNotice)
	go func() {
		if err := d.ps.Subscribe(channels.Subscribe, ch.HandlePubSub, ch.OnStart); err != nil {
			log.Errorf("failed to subscribe to pubsub %s: %s", channels.Subscribe, err)
			appstats.SetComponentHealth("pubsub", false)
			_ = ch.Close()
		}
	}()
	d.channel = ch
	return ch, nil
}

func (d *transportDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ps == nil {
		return nil
	}
	return d.ps.Close()
}

func authHeader(creds connect.Credentials) http.Header {
	h := http.Header{}
	token := base64.StdEncoding.EncodeToString([]byte(creds.APIUserName + ":" + creds.APIToken))
	h.Set("Authorization", "Basic "+token)
	h.Set("X-User-Name", creds.UserName)
	return h
}

func credentials(cfg *config.Config) connect.Credentials {
	link := cfg.Transport.Link
	if link == "" && cfg.Transport.Adapter != "websocket" {
		link = "pubsub://" + cfg.PubSub.Channels.Publish
	}
	return connect.Credentials{
		APIUserName: cfg.Transport.APIUserName,
		APIToken:    cfg.Transport.APIToken,
		Link:        link,
		UserName:    cfg.Transport.UserName,
	}
}
