package speech

import "time"

// SpeechConfig Azure 语音服务配置
type SpeechConfig struct {
	Region          string `json:"region"` // 服务区域，如 eastus
	SubscriptionKey string `json:"-"`      // 订阅密钥，只用于换取令牌和拉取声音列表
	UserAgent       string `json:"userAgent"`

	// 端点覆盖，留空时根据 Region 推导
	TokenEndpoint     string `json:"tokenEndpoint,omitempty"`
	SynthesisEndpoint string `json:"synthesisEndpoint,omitempty"`
	VoicesEndpoint    string `json:"voicesEndpoint,omitempty"`

	// 超时
	Timeout          time.Duration `json:"timeout"`          // HTTP 客户端整体超时
	TokenTimeout     time.Duration `json:"tokenTimeout"`     // 单次换取令牌预算
	SynthesisTimeout time.Duration `json:"synthesisTimeout"` // 单次合成预算
}
