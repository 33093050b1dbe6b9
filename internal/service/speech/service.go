package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/femoon/tts-azure-web/backend/internal/metrics"
	"github.com/femoon/tts-azure-web/backend/internal/model/speech"
)

const (
	opSynthesize = "synthesize"
	opToken      = "token"
	opVoices     = "voices"
)

var validate = validator.New()

// Service 语音服务核心业务逻辑：换取令牌、合成、拉取声音列表
type Service struct {
	config *speech.SpeechConfig
	tokens *TokenClient
	relay  *Relay
	voices *VoiceLister
}

// NewService 创建语音服务实例
func NewService(config *speech.SpeechConfig) (*Service, error) {
	key, err := resolveCredentials(config)
	if err != nil {
		return nil, err
	}

	eps := resolveEndpoints(config)
	client := NewHTTPClient(config.Timeout, nil)

	return &Service{
		config: config,
		tokens: NewTokenClient(eps.token, key, client),
		relay:  NewRelay(eps.synthesis, config.UserAgent, client),
		voices: NewVoiceLister(eps.voices, key, config.Timeout, client),
	}, nil
}

// IssueToken 换取一个短期令牌，受 TokenTimeout 约束
func (s *Service) IssueToken(ctx context.Context) (string, error) {
	token, err := s.issueToken(ctx)
	record(opToken, err)
	return token, err
}

func (s *Service) issueToken(ctx context.Context) (string, error) {
	tokenCtx, cancel := withBudget(ctx, s.config.TokenTimeout)
	defer cancel()
	return s.tokens.IssueToken(tokenCtx)
}

// Synthesize 完成一次完整的中继：校验请求 → 换取令牌 → 合成音频。
// 任一步失败立即返回，不重试。
func (s *Service) Synthesize(ctx context.Context, req *speech.SynthesisRequest) (*speech.AudioResponse, error) {
	if RequestIDFromContext(ctx) == "" {
		ctx = WithRequestID(ctx, uuid.NewString())
	}

	resp, err := s.synthesize(ctx, req)
	record(opSynthesize, err)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("component", "speech").
		Str("request_id", RequestIDFromContext(ctx)).
		Str("voice", req.Config.VoiceName).
		Int("audio_b64_len", len(resp.Base64Audio)).
		Msg("synthesis completed")
	return resp, nil
}

func (s *Service) synthesize(ctx context.Context, req *speech.SynthesisRequest) (*speech.AudioResponse, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx)
	if err != nil {
		return nil, err
	}

	synthCtx, cancel := withBudget(ctx, s.config.SynthesisTimeout)
	defer cancel()

	audio, err := s.relay.FetchAudio(synthCtx, token, req)
	if err != nil {
		return nil, err
	}
	metrics.AudioBytes.Observe(float64(base64.StdEncoding.DecodedLen(len(audio))))

	return &speech.AudioResponse{Base64Audio: audio}, nil
}

// ListVoices 返回可用声音列表
func (s *Service) ListVoices(ctx context.Context) ([]speech.Voice, error) {
	voices, err := s.voices.ListVoices(ctx)
	record(opVoices, err)
	return voices, err
}

// ValidateRequest 检查必填字段，失败时返回 KindInvalidArgument。
func ValidateRequest(req *speech.SynthesisRequest) error {
	const op = "ValidateRequest"

	if req == nil {
		return newError(KindInvalidArgument, op, "data is required")
	}
	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return wrapError(KindInvalidArgument, op, "missing field "+fieldErrs[0].Namespace(), err)
		}
		return wrapError(KindInvalidArgument, op, "invalid synthesis request", err)
	}
	return nil
}

func withBudget(ctx context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	if budget <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, budget)
}

func record(operation string, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = string(KindOf(err))
	}
	metrics.RelayRequests.WithLabelValues(operation, outcome).Inc()
}
