package speech

import (
	"fmt"
	"strings"

	speechmodel "github.com/femoon/tts-azure-web/backend/internal/model/speech"
)

const (
	tokenEndpointFormat     = "https://%s.api.cognitive.microsoft.com/sts/v1.0/issuetoken"
	synthesisEndpointFormat = "https://%s.tts.speech.microsoft.com/cognitiveservices/v1"
	voicesEndpointFormat    = "https://%s.tts.speech.microsoft.com/cognitiveservices/voices/list"
)

// endpoints 是一次解析后固定下来的三个上游地址。
type endpoints struct {
	token     string
	synthesis string
	voices    string
}

// resolveCredentials 返回规范化后的订阅密钥，缺失时给出明确错误。
func resolveCredentials(cfg *speechmodel.SpeechConfig) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("Azure 语音配置未初始化")
	}

	key := strings.TrimSpace(cfg.SubscriptionKey)
	if key == "" {
		return "", fmt.Errorf("Azure 语音配置缺少订阅密钥 SPEECH_KEY")
	}
	return key, nil
}

// resolveEndpoints 优先使用显式配置的地址，否则按区域拼接默认地址。
func resolveEndpoints(cfg *speechmodel.SpeechConfig) endpoints {
	region := strings.TrimSpace(cfg.Region)
	pick := func(override, format string) string {
		if override = strings.TrimSpace(override); override != "" {
			return override
		}
		return fmt.Sprintf(format, region)
	}

	return endpoints{
		token:     pick(cfg.TokenEndpoint, tokenEndpointFormat),
		synthesis: pick(cfg.SynthesisEndpoint, synthesisEndpointFormat),
		voices:    pick(cfg.VoicesEndpoint, voicesEndpointFormat),
	}
}
