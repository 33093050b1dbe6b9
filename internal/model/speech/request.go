package speech

// SynthesisRequest 浏览器提交的语音合成请求
type SynthesisRequest struct {
	Input  string      `json:"input" validate:"required"`
	Config VoiceConfig `json:"config"`
}

// VoiceConfig 声音选择；Style 与 Role 为可选修饰
type VoiceConfig struct {
	Lang      string `json:"lang" validate:"required"`
	Gender    string `json:"gender" validate:"required"`
	VoiceName string `json:"voiceName" validate:"required"`
	Style     string `json:"style,omitempty"`
	Role      string `json:"role,omitempty"`
}
