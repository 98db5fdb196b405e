package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mediasfu/recordctl/internal/pubsub/events"
	"github.com/mediasfu/recordctl/internal/recording"
	"github.com/mediasfu/recordctl/internal/recording/recordingtest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newAPI(h *harness) http.Handler {
	gin.SetMode(gin.TestMode)
	h.cfg.Debug = true
	return NewHTTPServer(h.cfg, h.ctrl, h.alerts, func() bool { return true }).Handler()
}

func do(t *testing.T, api http.Handler, method, path string, body interface{}) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestHTTP_Lifecycle(t *testing.T) {
	h := newHarness()
	api := newAPI(h)

	code, resp := do(t, api, http.MethodPost, "/record/start", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, recording.ErrNotConfirmed.Error())

	code, resp = do(t, api, http.MethodPost, "/record/confirm", ConfirmRequest{
		Choices: recording.Choices{MediaOptions: "video", VideoOptions: "mine", DisplayType: "video", OrientationVideo: "landscape"},
		Meeting: recording.Meeting{EventType: "conference", DisplayType: "video"},
	})
	require.Equal(t, http.StatusOK, code, resp.Error)

	code, resp = do(t, api, http.MethodPost, "/record/start", nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	var result ActionResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "committed", result.Outcome)
	assert.True(t, result.State.Started)
	assert.Equal(t, []string{events.StartRecordKey}, h.channel.Actions())

	code, _ = do(t, api, http.MethodPost, "/record/update", nil)
	assert.Equal(t, http.StatusConflict, code, "cool-down still running")

	h.sched.FireDelayed()
	h.channel.On(events.StopRecordKey, recordingtest.Fail("busy", "red"))
	code, resp = do(t, api, http.MethodPost, "/record/stop", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "rejected", result.Outcome)

	h.channel.On(events.StopRecordKey, recordingtest.Unreachable(errors.New("timeout")))
	code, resp = do(t, api, http.MethodPost, "/record/stop", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, "unknown", result.Outcome)

	code, _ = do(t, api, http.MethodPost, "/record/stop", nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = do(t, api, http.MethodGet, "/record/status", nil)
	require.Equal(t, http.StatusOK, code)
	var status Status
	require.NoError(t, json.Unmarshal(resp.Data, &status))
	assert.True(t, status.State.Stopped)
	assert.False(t, status.TimerAlive)
	assert.True(t, status.Connected)

	code, resp = do(t, api, http.MethodGet, "/record/alerts", nil)
	require.Equal(t, http.StatusOK, code)
	var alerts []Alert
	require.NoError(t, json.Unmarshal(resp.Data, &alerts))
	require.NotEmpty(t, alerts)
	assert.Equal(t, recording.MsgStopped, alerts[len(alerts)-1].Message)

	code, resp = do(t, api, http.MethodPost, "/record/reset", nil)
	require.Equal(t, http.StatusOK, code)
	var st recording.State
	require.NoError(t, json.Unmarshal(resp.Data, &st))
	assert.False(t, st.Stopped)
	assert.False(t, st.ConfirmedToRecord)
}

func TestHTTP_MediaAndWhiteboard(t *testing.T) {
	h := newHarness()
	api := newAPI(h)

	code, _ := do(t, api, http.MethodPut, "/record/media", MediaRequest{VideoOn: false, AudioOn: true})
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, api, http.MethodPut, "/record/whiteboard", WhiteboardRequest{Started: true})
	require.Equal(t, http.StatusOK, code)

	st := h.store.Snapshot()
	assert.False(t, st.VideoOn)
	assert.True(t, st.AudioOn)
	assert.True(t, st.WhiteboardStarted)
	assert.False(t, st.WhiteboardEnded)

	h.store.Update(recording.Patch{ConfirmedToRecord: boolPtr(true)})
	code, resp := do(t, api, http.MethodPost, "/record/start", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, resp.Error, recording.ErrMediaOff.Error())
}

func TestHTTP_Launch(t *testing.T) {
	h := newHarness()
	api := newAPI(h)

	code, resp := do(t, api, http.MethodPost, "/record/launch", nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.True(t, h.store.Snapshot().ModalVisible)

	code, _ = do(t, api, http.MethodPost, "/record/launch", recording.LaunchOptions{})
	require.Equal(t, http.StatusOK, code)
	assert.False(t, h.store.Snapshot().ModalVisible)

	h.store.Update(recording.Patch{Stopped: boolPtr(true)})
	code, resp = do(t, api, http.MethodPost, "/record/launch", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, resp.Error, recording.ErrLaunchRefused.Error())
}

func TestHTTP_BadRequest(t *testing.T) {
	api := newAPI(newHarness())

	req := httptest.NewRequest(http.MethodPut, "/record/media", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTP_Health(t *testing.T) {
	code, resp := do(t, newAPI(newHarness()), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","connected":true}`, string(resp.Data))
}
