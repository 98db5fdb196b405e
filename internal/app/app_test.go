package app

import (
	"os"
	"testing"

	"github.com/mediasfu/recordctl/internal/config"
	"github.com/mediasfu/recordctl/internal/recording"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileMode(t *testing.T) {
	tests := []struct {
		in   string
		want os.FileMode
	}{
		{"0600", 0600},
		{"0644", 0644},
		{"420", 0644},
		{"rw-r--r--", 0600},
		{"", 0600},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, fileMode(tt.in))
		})
	}
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, log.InfoLevel, logLevel(""))
	assert.Equal(t, log.WarnLevel, logLevel("warn"))
	assert.Equal(t, log.DebugLevel, logLevel("debug"))
	assert.Equal(t, log.InfoLevel, logLevel("loud"))
}

func TestInitialState(t *testing.T) {
	rc := (&config.Config{App: config.App{Name: "recordctl"}}).GetDefaults().Recording
	rc.RoomName = "room-9"
	rc.MediaOptions = "audio"
	rc.AudioPausesLimit = 1

	s := initialState(rc)
	assert.Equal(t, "room-9", s.RoomName)
	assert.Equal(t, recording.MediaAudio, s.MediaOptions)
	assert.Equal(t, 1, s.Limits.For(recording.MediaAudio))
	assert.Equal(t, 3, s.Limits.For(recording.MediaVideo))
	assert.Equal(t, recording.FormatElapsed(0), s.ProgressTime)
}

func TestCapabilities(t *testing.T) {
	c := config.Capabilities{
		AudioSupport:         true,
		MultiFormatsSupport:  true,
		PreferredOrientation: "portrait",
	}
	got := capabilities(c)
	assert.True(t, got.AudioSupport)
	assert.False(t, got.VideoSupport)
	assert.True(t, got.MultiFormatsSupport)
	assert.Equal(t, "portrait", got.PreferredOrientation)
}

func TestCredentials(t *testing.T) {
	c := (&config.Config{App: config.App{Name: "recordctl"}}).GetDefaults()
	c.Transport.APIUserName = "user"
	c.Transport.APIToken = "token"
	c.Transport.UserName = "host"

	creds := credentials(c)
	assert.Equal(t, "pubsub://to-recordctl", creds.Link)
	require.NoError(t, creds.Validate())

	c.Transport.Adapter = "websocket"
	c.Transport.Link = "https://mediasfu.com/room"
	assert.Equal(t, "https://mediasfu.com/room", credentials(c).Link)
}

func TestAuthHeader(t *testing.T) {
	h := authHeader(credentials(&config.Config{Transport: config.Transport{
		APIUserName: "user",
		APIToken:    "token",
		UserName:    "host",
	}}))
	assert.Equal(t, "Basic dXNlcjp0b2tlbg==", h.Get("Authorization"))
	assert.Equal(t, "host", h.Get("X-User-Name"))
}

func TestLookup(t *testing.T) {
	doc := map[string]interface{}{
		"recording": map[string]interface{}{"roomName": "room-1"},
		"list":      []interface{}{"a", "b"},
	}
	assert.Equal(t, "room-1", lookup(doc, []string{"recording", "roomName"}))
	assert.Equal(t, "b", lookup(doc, []string{"list", "1"}))
	assert.Nil(t, lookup(doc, []string{"list", "7"}))
	assert.Nil(t, lookup(doc, []string{"missing"}))
}
