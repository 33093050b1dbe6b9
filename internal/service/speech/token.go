package speech

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const (
	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

	// Azure 令牌是一段 JWT，几 KB 以内
	maxTokenBytes = 16 << 10
)

// TokenClient 使用订阅密钥向 Azure 换取短期 Bearer 令牌。
// 令牌不缓存，每次调用都会发起一次新的请求。
type TokenClient struct {
	endpoint string
	key      string
	client   *http.Client
}

// NewTokenClient 创建令牌客户端；client 为 nil 时使用 http.DefaultClient。
func NewTokenClient(endpoint, key string, client *http.Client) *TokenClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenClient{endpoint: endpoint, key: key, client: client}
}

// IssueToken 请求一个新令牌。失败时返回 KindTokenAcquisition，不重试。
func (c *TokenClient) IssueToken(ctx context.Context) (string, error) {
	const op = "IssueToken"

	req, err := http.NewRequestWithContext(withUpstream(ctx, upstreamToken), http.MethodPost, c.endpoint, http.NoBody)
	if err != nil {
		return "", wrapError(KindTokenAcquisition, op, "failed to create token request", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.key)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", wrapError(KindTokenAcquisition, op, "token endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		drain(resp.Body)
		return "", statusError(KindTokenAcquisition, op, resp.StatusCode, statusText(resp))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenBytes))
	if err != nil {
		return "", wrapError(KindTokenAcquisition, op, "failed to read token", err)
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		return "", newError(KindTokenAcquisition, op, "token endpoint returned an empty token")
	}
	return token, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// statusText 取 "401 Unauthorized" 中的文字部分。
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
}
