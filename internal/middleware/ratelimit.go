package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/femoon/tts-azure-web/backend/internal/metrics"
	"github.com/femoon/tts-azure-web/backend/pkg/utils"
)

// Limiter 是整个进程共享的令牌桶，HTTP 合成请求与 WebSocket 帧共用同一额度。
// limit <= 0 时不限流。
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter 创建共享限流器
func NewLimiter(limit float64, burst int) *Limiter {
	if limit <= 0 {
		return &Limiter{}
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(limit), burst)}
}

// Allow 消耗一个令牌；被拒绝时计入 RateLimited。
func (l *Limiter) Allow() bool {
	if l == nil || l.limiter == nil {
		return true
	}
	if l.limiter.Allow() {
		return true
	}
	metrics.RateLimited.Inc()
	return false
}

// Middleware 超出额度时返回 429
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	if l == nil || l.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow() {
			w.Header().Set("Retry-After", "1")
			utils.RespondError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit 返回独立令牌桶的限流中间件，只挂在中继路由上。
func RateLimit(limit float64, burst int) func(http.Handler) http.Handler {
	return NewLimiter(limit, burst).Middleware
}
