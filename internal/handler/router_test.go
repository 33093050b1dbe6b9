package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/femoon/tts-azure-web/backend/internal/config"
	"github.com/femoon/tts-azure-web/backend/internal/metrics"
	speechmodel "github.com/femoon/tts-azure-web/backend/internal/model/speech"
)

type stubSpeech struct{}

func (stubSpeech) Synthesize(context.Context, *speechmodel.SynthesisRequest) (*speechmodel.AudioResponse, error) {
	return &speechmodel.AudioResponse{Base64Audio: "SUQz"}, nil
}

func (stubSpeech) IssueToken(context.Context) (string, error) { return "abc", nil }

func (stubSpeech) ListVoices(context.Context) ([]speechmodel.Voice, error) { return nil, nil }

const audioBody = `{"input":"Hello","config":{"lang":"en-US","gender":"Female","voiceName":"en-US-JennyNeural"}}`

func postAudio(h http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/audio", strings.NewReader(audioBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterServesAudio(t *testing.T) {
	h := NewRouter(stubSpeech{}, nil, config.ServerConfig{AllowedOrigins: []string{"*"}})

	rr := postAudio(h)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"base64Audio":"SUQz"}`, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestRouterWithoutSpeechService(t *testing.T) {
	h := NewRouter(nil, nil, config.ServerConfig{})

	rr := postAudio(h)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRouterRateLimitsAudio(t *testing.T) {
	h := NewRouter(stubSpeech{}, nil, config.ServerConfig{RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, postAudio(h).Code)
	assert.Equal(t, http.StatusTooManyRequests, postAudio(h).Code)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouterExposesMetrics(t *testing.T) {
	h := NewRouter(stubSpeech{}, metrics.NewRegistry(), config.ServerConfig{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestRouterUnknownRoute(t *testing.T) {
	h := NewRouter(stubSpeech{}, nil, config.ServerConfig{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/audio", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouterRateLimitsWebSocketFrames(t *testing.T) {
	srv := httptest.NewServer(NewRouter(stubSpeech{}, nil, config.ServerConfig{RateLimit: 0.001, RateBurst: 2}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/audio/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	types := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(audioBody)))
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var reply struct {
			Type string `json:"type"`
		}
		require.NoError(t, conn.ReadJSON(&reply))
		types = append(types, reply.Type)
	}
	assert.Equal(t, []string{"audio", "audio", "error", "error"}, types)

	httpResp, err := http.Post(srv.URL+"/api/audio", "application/json", strings.NewReader(audioBody))
	require.NoError(t, err)
	defer httpResp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, httpResp.StatusCode)
}
