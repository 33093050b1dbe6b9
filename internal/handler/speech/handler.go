package speech

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/femoon/tts-azure-web/backend/internal/model/speech"
	speechsvc "github.com/femoon/tts-azure-web/backend/internal/service/speech"
	"github.com/femoon/tts-azure-web/backend/pkg/utils"
)

// maxRequestBytes 单个合成请求体上限
const maxRequestBytes = 1 << 20

// SpeechService 抽象语音业务，便于测试与替换实现
type SpeechService interface {
	Synthesize(ctx context.Context, req *speech.SynthesisRequest) (*speech.AudioResponse, error)
	IssueToken(ctx context.Context) (string, error)
	ListVoices(ctx context.Context) ([]speech.Voice, error)
}

// Handler 语音服务的HTTP处理器
type Handler struct {
	speechSvc  SpeechService
	upgrader   websocket.Upgrader
	allowFrame func() bool
	pongWait   time.Duration
}

// Option 调整 Handler 的可选行为
type Option func(*Handler)

// WithAllowedOrigins 约束 WebSocket 握手的 Origin，包含 "*" 时不限制
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = originChecker(origins)
	}
}

// WithFrameLimiter 为每个 WebSocket 合成帧消耗一次限流额度，返回 false 时回复 error 帧
func WithFrameLimiter(allow func() bool) Option {
	return func(h *Handler) {
		if allow != nil {
			h.allowFrame = allow
		}
	}
}

// WithPongWait 设置 WebSocket 读超时，ping 间隔随之调整
func WithPongWait(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.pongWait = d
		}
	}
}

// New 创建语音处理器
func New(speechSvc SpeechService, opts ...Option) *Handler {
	h := &Handler{
		speechSvc: speechSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(nil),
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		allowFrame: func() bool { return true },
		pongWait:   wsPongWait,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes 注册语音相关的路由。relay 中间件只作用于 POST /audio，
// WebSocket 连接按帧经 WithFrameLimiter 限流。
func (h *Handler) RegisterRoutes(r chi.Router, relay ...func(http.Handler) http.Handler) {
	r.With(relay...).Post("/audio", h.handleAudio)
	r.Get("/audio/ws", h.handleAudioWebSocket)
	r.Post("/token", h.handleToken)
	r.Get("/list", h.handleList)
	r.Get("/health", h.handleHealth)
}

// handleAudio 处理文本转语音请求，成功时返回 base64 编码的 MP3
func (h *Handler) handleAudio(w http.ResponseWriter, r *http.Request) {
	ctx := speechsvc.WithRequestID(r.Context(), requestID(r))

	var req speech.SynthesisRequest
	if err := utils.DecodeJSON(w, r, &req, maxRequestBytes); err != nil {
		h.fail(ctx, w, "audio", speechsvc.NewInvalidArgument("DecodeRequest", "malformed synthesis request", err))
		return
	}

	resp, err := h.speechSvc.Synthesize(ctx, &req)
	if err != nil {
		h.fail(ctx, w, "audio", err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleToken 直接把令牌交给浏览器，供其自行调用服务商
func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := speechsvc.WithRequestID(r.Context(), requestID(r))

	token, err := h.speechSvc.IssueToken(ctx)
	if err != nil {
		h.fail(ctx, w, "token", err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, speech.TokenResponse{Token: token})
}

// handleList 返回服务商的声音列表
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := speechsvc.WithRequestID(r.Context(), requestID(r))

	voices, err := h.speechSvc.ListVoices(ctx)
	if err != nil {
		h.fail(ctx, w, "list", err)
		return
	}
	if voices == nil {
		voices = []speech.Voice{}
	}

	utils.RespondJSON(w, http.StatusOK, voices)
}

// handleHealth 健康检查端点
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "speech",
	})
}

// fail 记录完整错误，对外只返回通用 500
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, route string, err error) {
	logFailure(ctx, route, err)
	utils.RespondInternalError(w)
}

func logFailure(ctx context.Context, route string, err error) {
	event := log.Error().Err(err).
		Str("component", "speech").
		Str("route", route).
		Str("kind", string(speechsvc.KindOf(err))).
		Str("request_id", speechsvc.RequestIDFromContext(ctx))

	var typed *speechsvc.Error
	if errors.As(err, &typed) && typed.Status != 0 {
		event = event.Int("upstream_status", typed.Status)
	}
	event.Msg("request failed")
}

// requestID 复用 chi 生成的请求 ID，没有时生成一个新的
func requestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
