package connect

import (
	"context"
	"testing"
	"time"

	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/mediasfu/recordctl/internal/ratelimit"
	"github.com/mediasfu/recordctl/internal/transport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	link   string
	state  transport.ConnectionState
	emits  int
	closed bool
	closes int
}

var _ transport.Conn = (*mockConn)(nil)

func (m *mockConn) EmitWithAck(_ context.Context, req *events.RecordRequest) (*events.Ack, error) {
	m.emits++
	return req.Success("", nil), nil
}

func (m *mockConn) Report(context.Context, string, bool) error { return nil }
func (m *mockConn) State() transport.ConnectionState           { return m.state }

func (m *mockConn) Close() error {
	m.closed = true
	m.closes++
	m.state = transport.ConnectionStateClosed
	return nil
}

type mockDialer struct {
	dialed []*mockConn
	fail   map[string]error
}

func (d *mockDialer) dial(_ context.Context, link string, _ Credentials) (transport.Conn, error) {
	if err := d.fail[link]; err != nil {
		return nil, err
	}
	c := &mockConn{link: link, state: transport.ConnectionStateConnected}
	d.dialed = append(d.dialed, c)
	return c, nil
}

func creds(link string) Credentials {
	return Credentials{APIUserName: "acme", APIToken: "secret", Link: link, UserName: "host"}
}

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Credentials)
	}{
		{"user name", func(c *Credentials) { c.APIUserName = " " }},
		{"token", func(c *Credentials) { c.APIToken = "" }},
		{"link", func(c *Credentials) { c.Link = "" }},
		{"participant", func(c *Credentials) { c.UserName = "\t" }},
	}

	assert.NoError(t, creds("https://mediasfu.com/meet/room").Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := creds("https://mediasfu.com/meet/room")
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidCredentials)
		})
	}
}

func TestConnect_Cloud(t *testing.T) {
	d := &mockDialer{}
	c := New(d.dial, nil, "", "")

	require.NoError(t, c.Connect(context.Background(), creds("https://mediasfu.com/meet/room"), false))

	require.Len(t, d.dialed, 1)
	assert.True(t, c.IsConnected())
	assert.Same(t, d.dialed[0], c.Active())
}

func TestConnect_SelfHostedPrefersLocal(t *testing.T) {
	d := &mockDialer{}
	c := New(d.dial, nil, "", "ws://127.0.0.1:3000")

	require.NoError(t, c.Connect(context.Background(), creds("https://media.example.org/room"), false))
	require.Len(t, d.dialed, 2)
	primary, local := d.dialed[0], d.dialed[1]
	assert.Equal(t, "ws://127.0.0.1:3000", local.link)

	_, err := c.EmitWithAck(context.Background(), events.NewRecordRequest(events.StartRecordKey, "room", nil))
	require.NoError(t, err)
	assert.Equal(t, 1, local.emits)
	assert.Equal(t, 0, primary.emits)

	local.state = transport.ConnectionStateDisconnected
	_, err = c.EmitWithAck(context.Background(), events.NewRecordRequest(events.StopRecordKey, "room", nil))
	require.NoError(t, err)
	assert.Equal(t, 1, primary.emits)

	require.NoError(t, c.Close())
	assert.True(t, primary.closed)
	assert.True(t, local.closed)
	assert.False(t, c.IsConnected())
}

func TestConnect_LocalFailureKeepsPrimary(t *testing.T) {
	d := &mockDialer{fail: map[string]error{"ws://local": errors.New("refused")}}
	c := New(d.dial, nil, "", "ws://local")

	require.NoError(t, c.Connect(context.Background(), creds("https://media.example.org/room"), false))
	assert.True(t, c.IsConnected())
}

func TestConnect_PrimaryFailure(t *testing.T) {
	d := &mockDialer{fail: map[string]error{"https://mediasfu.com/x": errors.New("refused")}}
	c := New(d.dial, nil, "", "")

	err := c.Connect(context.Background(), creds("https://mediasfu.com/x"), false)

	assert.ErrorContains(t, err, "refused")
	assert.False(t, c.IsConnected())
	_, err = c.EmitWithAck(context.Background(), events.NewRecordRequest(events.StartRecordKey, "room", nil))
	assert.ErrorIs(t, err, transport.ErrNotConnected)
}

func TestConnect_ValidateSkipsWhenConnected(t *testing.T) {
	d := &mockDialer{}
	c := New(d.dial, nil, "", "")
	link := "https://mediasfu.com/meet/room"

	require.NoError(t, c.Connect(context.Background(), creds(link), true))
	require.NoError(t, c.Connect(context.Background(), creds(link), true))
	assert.Len(t, d.dialed, 1)

	// reconnecting replaces and closes the previous connection
	require.NoError(t, c.Connect(context.Background(), creds(link), false))
	require.Len(t, d.dialed, 2)
	assert.True(t, d.dialed[0].closed)
	assert.Same(t, d.dialed[1], c.Active())
}

func TestConnect_RateLimited(t *testing.T) {
	d := &mockDialer{}
	c := New(d.dial, ratelimit.New(2, time.Minute), "", "")
	link := "https://mediasfu.com/meet/room"

	require.NoError(t, c.Connect(context.Background(), creds(link), false))
	require.NoError(t, c.Connect(context.Background(), creds(link), false))
	err := c.Connect(context.Background(), creds(link), false)

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Len(t, d.dialed, 2)
}

func TestConnect_InvalidCredentialsNotCounted(t *testing.T) {
	d := &mockDialer{}
	c := New(d.dial, ratelimit.New(1, time.Minute), "", "")

	bad := creds("https://mediasfu.com/meet/room")
	bad.APIToken = ""
	assert.ErrorIs(t, c.Connect(context.Background(), bad, false), ErrInvalidCredentials)

	assert.NoError(t, c.Connect(context.Background(), creds("https://mediasfu.com/meet/room"), false))
}

func TestConnect_SharedConnection(t *testing.T) {
	shared := &mockConn{state: transport.ConnectionStateConnected}
	dial := func(context.Context, string, Credentials) (transport.Conn, error) {
		return shared, nil
	}
	c := New(dial, nil, "", "")

	require.NoError(t, c.Connect(context.Background(), creds("pubsub://to-recordctl"), false))
	assert.False(t, shared.closed)
	assert.Same(t, shared, c.Active())

	require.NoError(t, c.Connect(context.Background(), creds("pubsub://to-recordctl"), false))
	assert.False(t, shared.closed)

	require.NoError(t, c.Close())
	assert.Equal(t, 1, shared.closes)
	assert.Nil(t, c.Active())
}
