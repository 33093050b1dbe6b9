package speech

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/femoon/tts-azure-web/backend/internal/model/speech"
)

const (
	outputFormatHeader = "X-Microsoft-OutputFormat"
	clientTraceHeader  = "X-ClientTraceId"

	// OutputFormat 固定为 16kHz / 32kbit / 单声道 MP3
	OutputFormat = "audio-16khz-32kbitrate-mono-mp3"

	defaultUserAgent = "tts-azure-web"
)

// Relay 持有令牌后向 Azure 合成端点请求音频。
type Relay struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

// NewRelay 创建合成中继；client 为 nil 时使用 http.DefaultClient。
func NewRelay(endpoint, userAgent string, client *http.Client) *Relay {
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	return &Relay{endpoint: endpoint, userAgent: userAgent, client: client}
}

// FetchAudio 合成一段音频并以 base64 字符串返回。
// token 或 req 缺失时立即返回 KindInvalidArgument，不发起任何网络请求。
func (r *Relay) FetchAudio(ctx context.Context, token string, req *speech.SynthesisRequest) (string, error) {
	const op = "FetchAudio"

	if strings.TrimSpace(token) == "" {
		return "", newError(KindInvalidArgument, op, "token is required")
	}
	if req == nil {
		return "", newError(KindInvalidArgument, op, "data is required")
	}

	audio, err := r.fetch(ctx, token, req)
	if err != nil {
		log.Debug().Err(err).Str("component", "relay").Str("kind", string(KindOf(err))).Msg("error fetching audio")
		return "", err
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}

func (r *Relay) fetch(ctx context.Context, token string, req *speech.SynthesisRequest) ([]byte, error) {
	const op = "FetchAudio"

	httpReq, err := http.NewRequestWithContext(withUpstream(ctx, upstreamSynthesis), http.MethodPost, r.endpoint, strings.NewReader(BuildSSML(*req)))
	if err != nil {
		return nil, wrapError(KindUpstream, op, "failed to create synthesis request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", ssmlContentType)
	httpReq.Header.Set(outputFormatHeader, OutputFormat)
	httpReq.Header.Set("User-Agent", r.userAgent)
	if traceID := RequestIDFromContext(ctx); traceID != "" {
		httpReq.Header.Set(clientTraceHeader, traceID)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, wrapError(KindUpstream, op, "synthesis endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		drain(resp.Body)
		return nil, statusError(KindSynthesisHTTP, op, resp.StatusCode, statusText(resp))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(KindUpstream, op, "failed to read audio", err)
	}
	return audio, nil
}
