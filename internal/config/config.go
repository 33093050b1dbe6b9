package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	speechmodel "github.com/femoon/tts-azure-web/backend/internal/model/speech"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Log    LogConfig
	Speech SpeechConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Log: loadLogConfig(), Speech: speech}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

// loadServerConfig 解析服务器监听地址、跨域与限流设置。
func loadServerConfig() (ServerConfig, error) {
	addr, err := parseListenAddr(os.Getenv("PORT"))
	if err != nil {
		return ServerConfig{}, err
	}

	rateLimit, err := parseOptionalFloatEnv("AUDIO_RATE_LIMIT")
	if err != nil {
		return ServerConfig{}, err
	}
	limit := 0.0
	if rateLimit != nil && *rateLimit > 0 {
		limit = *rateLimit
	}

	burst := 5
	if burstOverride, err := parseOptionalIntEnv("AUDIO_RATE_BURST"); err != nil {
		return ServerConfig{}, err
	} else if burstOverride != nil {
		if *burstOverride < 1 {
			burst = 1
		} else {
			burst = *burstOverride
		}
	}

	return ServerConfig{
		Addr:           addr,
		AllowedOrigins: splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		RateLimit:      limit,
		RateBurst:      burst,
	}, nil
}

func parseListenAddr(raw string) (string, error) {
	port := strings.TrimSpace(raw)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// LogConfig 描述日志输出配置
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
	}
}

// SpeechConfig 描述 Azure 语音服务相关配置
type SpeechConfig struct {
	Region            string
	SubscriptionKey   string
	TokenEndpoint     string
	SynthesisEndpoint string
	VoicesEndpoint    string
	Timeout           int
	TokenTimeout      int
	SynthesisTimeout  int
	Enabled           bool
}

// ServiceConfig 把秒数换算为时长，生成语音服务使用的配置。
func (c SpeechConfig) ServiceConfig() *speechmodel.SpeechConfig {
	return &speechmodel.SpeechConfig{
		Region:            c.Region,
		SubscriptionKey:   c.SubscriptionKey,
		TokenEndpoint:     c.TokenEndpoint,
		SynthesisEndpoint: c.SynthesisEndpoint,
		VoicesEndpoint:    c.VoicesEndpoint,
		Timeout:           time.Duration(c.Timeout) * time.Second,
		TokenTimeout:      time.Duration(c.TokenTimeout) * time.Second,
		SynthesisTimeout:  time.Duration(c.SynthesisTimeout) * time.Second,
	}
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseSecondsEnv("SPEECH_TIMEOUT", 30)
	if err != nil {
		return SpeechConfig{}, err
	}

	tokenTimeout, err := parseSecondsEnv("SPEECH_TOKEN_TIMEOUT", 10)
	if err != nil {
		return SpeechConfig{}, err
	}

	synthesisTimeout, err := parseSecondsEnv("SPEECH_SYNTHESIS_TIMEOUT", 30)
	if err != nil {
		return SpeechConfig{}, err
	}

	region := getEnvOrDefault("SPEECH_REGION", "eastus")
	if strings.ContainsAny(region, "/: ") {
		return SpeechConfig{}, fmt.Errorf("invalid SPEECH_REGION value: %q", region)
	}

	key := strings.TrimSpace(os.Getenv("SPEECH_KEY"))

	return SpeechConfig{
		Region:            region,
		SubscriptionKey:   key,
		TokenEndpoint:     getEnvOrDefault("SPEECH_TOKEN_ENDPOINT", ""),
		SynthesisEndpoint: getEnvOrDefault("SPEECH_SYNTHESIS_ENDPOINT", ""),
		VoicesEndpoint:    getEnvOrDefault("SPEECH_VOICES_ENDPOINT", ""),
		Timeout:           timeout,
		TokenTimeout:      tokenTimeout,
		SynthesisTimeout:  synthesisTimeout,
		Enabled:           key != "",
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseSecondsEnv 读取以秒为单位的正整数，缺省或非正值时回退到默认值。
func parseSecondsEnv(key string, defaultValue int) (int, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil || *val <= 0 {
		return defaultValue, nil
	}
	return *val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
