package speech

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/femoon/tts-azure-web/backend/internal/metrics"
)

const (
	upstreamToken     = "token"
	upstreamSynthesis = "synthesis"
	upstreamVoices    = "voices"
)

type upstreamKey struct{}

type requestIDKey struct{}

func withUpstream(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, upstreamKey{}, name)
}

func upstreamFrom(ctx context.Context) string {
	if name, ok := ctx.Value(upstreamKey{}).(string); ok {
		return name
	}
	return "other"
}

// WithRequestID 绑定请求 ID，用于日志关联，并作为 X-ClientTraceId 转发给服务商
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext 取出 WithRequestID 绑定的 ID，没有时返回空串
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// instrumentedTransport 记录上游调用的耗时与状态码。
// 只记录方法、主机、状态码和耗时，不记录请求头与请求体。
type instrumentedTransport struct {
	base http.RoundTripper
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	upstream := upstreamFrom(req.Context())

	rt := t.base
	if rt == nil {
		rt = http.DefaultTransport
	}
	resp, err := rt.RoundTrip(req)
	elapsed := time.Since(start)

	code := "error"
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	metrics.UpstreamDuration.WithLabelValues(upstream, code).Observe(elapsed.Seconds())

	event := log.Debug()
	if err != nil {
		event = log.Warn().Err(err)
	}
	event.Str("component", "upstream").
		Str("upstream", upstream).
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("code", code).
		Str("request_id", RequestIDFromContext(req.Context())).
		Dur("elapsed", elapsed).
		Msg("provider call")

	return resp, err
}

// NewHTTPClient 创建访问服务商的客户端，外层包一层 OpenTelemetry transport
func NewHTTPClient(timeout time.Duration, base http.RoundTripper) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(&instrumentedTransport{base: base}),
	}
}
