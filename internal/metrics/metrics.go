// Package metrics 语音中继的 Prometheus 指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tts"

// OutcomeOK 成功调用的 outcome 标签，失败时使用错误类型
const OutcomeOK = "ok"

var (
	// RelayRequests 按操作与结果统计中继调用次数
	RelayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Relay operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// UpstreamDuration 上游调用耗时，按上游与状态码区分
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of calls to the speech provider.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"upstream", "code"},
	)

	// AudioBytes 合成音频在 base64 编码前的字节数
	AudioBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "audio_bytes",
			Help:      "Size of synthesized audio returned by the provider.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	// RateLimited 被限流拒绝的请求数
	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		},
	)
)

var allMetrics = []prometheus.Collector{
	RelayRequests,
	UpstreamDuration,
	AudioBytes,
	RateLimited,
}

// NewRegistry 创建独立的 registry，注册中继指标以及 Go 运行时与进程指标
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	for _, collector := range allMetrics {
		reg.MustRegister(collector)
	}
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler 以 Prometheus 格式输出 registry
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
