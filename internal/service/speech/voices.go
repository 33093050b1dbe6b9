package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/femoon/tts-azure-web/backend/internal/model/speech"
)

// VoiceLister 拉取 Azure 声音列表。并发请求共享同一次上游调用，结果不缓存。
type VoiceLister struct {
	endpoint string
	key      string
	timeout  time.Duration
	client   *http.Client
	group    singleflight.Group
}

// NewVoiceLister 创建声音列表客户端。
func NewVoiceLister(endpoint, key string, timeout time.Duration, client *http.Client) *VoiceLister {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VoiceLister{endpoint: endpoint, key: key, timeout: timeout, client: client}
}

// ListVoices 返回服务商当前可用的声音。
func (l *VoiceLister) ListVoices(ctx context.Context) ([]speech.Voice, error) {
	const op = "ListVoices"

	// 共享调用不随单个调用方取消，只受 l.timeout 约束
	ch := l.group.DoChan("voices", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return l.fetch(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return nil, wrapError(KindVoiceList, op, "voice list request cancelled", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared := res.Val.([]speech.Voice)
		voices := make([]speech.Voice, len(shared))
		copy(voices, shared)
		return voices, nil
	}
}

func (l *VoiceLister) fetch(ctx context.Context) ([]speech.Voice, error) {
	const op = "ListVoices"

	req, err := http.NewRequestWithContext(withUpstream(ctx, upstreamVoices), http.MethodGet, l.endpoint, http.NoBody)
	if err != nil {
		return nil, wrapError(KindVoiceList, op, "failed to create voice list request", err)
	}
	req.Header.Set(subscriptionKeyHeader, l.key)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, wrapError(KindVoiceList, op, "voice list endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		drain(resp.Body)
		return nil, statusError(KindVoiceList, op, resp.StatusCode, statusText(resp))
	}

	var voices []speech.Voice
	if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
		return nil, wrapError(KindVoiceList, op, "failed to decode voice list", err)
	}
	return voices, nil
}
