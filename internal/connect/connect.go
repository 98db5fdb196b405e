// Package connect opens the connections recording requests travel over.
package connect

import (
	"context"
	"strings"
	"sync"

	"github.com/mediasfu/recordctl/internal/appstats"
	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/mediasfu/recordctl/internal/ratelimit"
	"github.com/mediasfu/recordctl/internal/recording"
	"github.com/mediasfu/recordctl/internal/transport"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DefaultCloudDomain = "mediasfu.com"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("too many connection attempts")
)

var (
	_ recording.Channel        = (*Connector)(nil)
	_ recording.LayoutReporter = (*Connector)(nil)
)

type Credentials struct {
	APIUserName string
	APIToken    string
	Link        string
	UserName    string
}

func (c Credentials) Validate() error {
	switch {
	case strings.TrimSpace(c.APIUserName) == "":
		return errors.Wrap(ErrInvalidCredentials, "missing api user name")
	case strings.TrimSpace(c.APIToken) == "":
		return errors.Wrap(ErrInvalidCredentials, "missing api token")
	case strings.TrimSpace(c.Link) == "":
		return errors.Wrap(ErrInvalidCredentials, "missing link")
	case strings.TrimSpace(c.UserName) == "":
		return errors.Wrap(ErrInvalidCredentials, "missing user name")
	}
	return nil
}

// Dialer opens one connection to link.
type Dialer func(ctx context.Context, link string, creds Credentials) (transport.Conn, error)

// Connector keeps the primary connection and, for self-hosted servers, a
// local one. Requests prefer a connected local connection.
type Connector struct {
	dial        Dialer
	limiter     *ratelimit.Limiter
	cloudDomain string
	localLink   string

	mu      sync.Mutex
	primary transport.Conn
	local   transport.Conn
}

func New(dial Dialer, limiter *ratelimit.Limiter, cloudDomain, localLink string) *Connector {
	if cloudDomain == "" {
		cloudDomain = DefaultCloudDomain
	}
	return &Connector{
		dial:        dial,
		limiter:     limiter,
		cloudDomain: cloudDomain,
		localLink:   localLink,
	}
}

// Connect opens the connections for creds. With validate set an already
// connected primary is kept.
func (c *Connector) Connect(ctx context.Context, creds Credentials, validate bool) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	if c.limiter != nil && !c.limiter.Allow(creds.APIUserName) {
		appstats.OnRateLimited()
		log.WithField("user", creds.APIUserName).Warn("connection attempt rate limited")
		return ErrRateLimited
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if validate && c.primary != nil && c.primary.State().IsConnected() {
		log.WithField("link", creds.Link).Debug("already connected, skipping")
		return nil
	}

	primary, err := c.dial(ctx, creds.Link, creds)
	if err != nil {
		appstats.SetComponentHealth("primary", false)
		return errors.Wrapf(err, "failed to connect to %s", creds.Link)
	}
	c.replace(&c.primary, primary)
	appstats.SetComponentHealth("primary", true)

	if strings.Contains(creds.Link, c.cloudDomain) {
		return nil
	}

	localLink := c.localLink
	if localLink == "" {
		localLink = creds.Link
	}
	local, err := c.dial(ctx, localLink, creds)
	if err != nil {
		// the primary connection still serves requests
		appstats.SetComponentHealth("local", false)
		log.WithField("link", localLink).WithError(err).Warn("failed to open local connection")
		return nil
	}
	c.replace(&c.local, local)
	appstats.SetComponentHealth("local", true)
	return nil
}

func (c *Connector) replace(slot *transport.Conn, conn transport.Conn) {
	if *slot != nil && *slot != conn {
		if err := (*slot).Close(); err != nil {
			log.WithError(err).Warn("failed to close previous connection")
		}
	}
	*slot = conn
}

// Active returns the connection requests are sent over, or nil.
func (c *Connector) Active() transport.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.local != nil && c.local.State().IsConnected() {
		return c.local
	}
	if c.primary != nil {
		return c.primary
	}
	return c.local
}

func (c *Connector) IsConnected() bool {
	conn := c.Active()
	return conn != nil && conn.State().IsConnected()
}

func (c *Connector) EmitWithAck(ctx context.Context, req *events.RecordRequest) (*events.Ack, error) {
	conn := c.Active()
	if conn == nil {
		return nil, transport.ErrNotConnected
	}
	return conn.EmitWithAck(ctx, req)
}

func (c *Connector) Report(ctx context.Context, roomName string, restart bool) error {
	conn := c.Active()
	if conn == nil {
		return transport.ErrNotConnected
	}
	return conn.Report(ctx, roomName, restart)
}

func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []string
	conns := []transport.Conn{c.local}
	if c.primary != c.local {
		conns = append(conns, c.primary)
	}
	for _, conn := range conns {
		if conn == nil {
			continue
		}
		if err := conn.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	c.local, c.primary = nil, nil
	if len(errs) > 0 {
		return errors.Errorf("failed to close connections: %s", strings.Join(errs, "; "))
	}
	return nil
}
