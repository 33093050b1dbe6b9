package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesRelayMetrics(t *testing.T) {
	reg := NewRegistry()

	RelayRequests.WithLabelValues("synthesize", OutcomeOK).Inc()
	UpstreamDuration.WithLabelValues("token", "200").Observe(0.01)

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "tts_relay_requests_total")
	assert.Contains(t, body, "tts_upstream_request_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestRelayCounterByOutcome(t *testing.T) {
	before := testutil.ToFloat64(RelayRequests.WithLabelValues("synthesize", "synthesis_http"))
	RelayRequests.WithLabelValues("synthesize", "synthesis_http").Inc()
	after := testutil.ToFloat64(RelayRequests.WithLabelValues("synthesize", "synthesis_http"))
	assert.Equal(t, before+1, after)
}
