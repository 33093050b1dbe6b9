package speech

// AudioResponse 合成成功时返回给浏览器的数据
type AudioResponse struct {
	Base64Audio string `json:"base64Audio"`
}

// TokenResponse /api/token 的响应
type TokenResponse struct {
	Token string `json:"token"`
}

// ErrorResponse 统一的错误响应体
type ErrorResponse struct {
	Error string `json:"error"`
}

// Voice 服务商声音列表中的一项
type Voice struct {
	Name            string   `json:"Name"`
	DisplayName     string   `json:"DisplayName"`
	LocalName       string   `json:"LocalName"`
	ShortName       string   `json:"ShortName"`
	Gender          string   `json:"Gender"`
	Locale          string   `json:"Locale"`
	LocaleName      string   `json:"LocaleName"`
	StyleList       []string `json:"StyleList,omitempty"`
	RolePlayList    []string `json:"RolePlayList,omitempty"`
	SampleRateHertz string   `json:"SampleRateHertz"`
	VoiceType       string   `json:"VoiceType"`
	Status          string   `json:"Status"`
	WordsPerMinute  string   `json:"WordsPerMinute,omitempty"`
}
