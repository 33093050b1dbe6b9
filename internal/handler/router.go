package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/femoon/tts-azure-web/backend/internal/config"
	"github.com/femoon/tts-azure-web/backend/internal/handler/speech"
	"github.com/femoon/tts-azure-web/backend/internal/metrics"
	middlewarePkg "github.com/femoon/tts-azure-web/backend/internal/middleware"
	"github.com/femoon/tts-azure-web/backend/pkg/utils"
)

// NewRouter 组装路由。未配置订阅密钥时 speechSvc 为 nil，语音路由返回 503。
func NewRouter(speechSvc speech.SpeechService, reg *prometheus.Registry, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.AccessLog)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.AllowedOrigins))

	if reg != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(reg))
	}

	r.Route("/api", func(api chi.Router) {
		if speechSvc == nil {
			unavailable := func(w http.ResponseWriter, r *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "speech service unavailable")
			}
			api.Post("/audio", unavailable)
			api.Get("/audio/ws", unavailable)
			api.Post("/token", unavailable)
			api.Get("/list", unavailable)
			api.Get("/health", unavailable)
			return
		}

		limiter := middlewarePkg.NewLimiter(cfg.RateLimit, cfg.RateBurst)
		speechHandler := speech.New(speechSvc,
			speech.WithAllowedOrigins(cfg.AllowedOrigins...),
			speech.WithFrameLimiter(limiter.Allow),
		)
		speechHandler.RegisterRoutes(api, limiter.Middleware)
	})

	return otelhttp.NewHandler(r, "tts-api")
}
