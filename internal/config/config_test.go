package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "SPEECH_KEY", "SPEECH_REGION", "SPEECH_TIMEOUT", "SPEECH_TOKEN_TIMEOUT",
		"SPEECH_SYNTHESIS_TIMEOUT", "CORS_ALLOWED_ORIGINS", "AUDIO_RATE_LIMIT", "AUDIO_RATE_BURST",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Zero(t, cfg.Server.RateLimit)
	assert.Equal(t, 5, cfg.Server.RateBurst)

	assert.Equal(t, "eastus", cfg.Speech.Region)
	assert.False(t, cfg.Speech.Enabled)
	assert.Equal(t, 30, cfg.Speech.Timeout)
	assert.Equal(t, 10, cfg.Speech.TokenTimeout)
	assert.Equal(t, 30, cfg.Speech.SynthesisTimeout)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadSpeechOverrides(t *testing.T) {
	t.Setenv("SPEECH_KEY", " secret ")
	t.Setenv("SPEECH_REGION", "westeurope")
	t.Setenv("SPEECH_TOKEN_TIMEOUT", "3")
	t.Setenv("SPEECH_SYNTHESIS_TIMEOUT", "-1")
	t.Setenv("SPEECH_SYNTHESIS_ENDPOINT", "http://localhost:9999/v1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Speech.Enabled)
	assert.Equal(t, "secret", cfg.Speech.SubscriptionKey)
	assert.Equal(t, "westeurope", cfg.Speech.Region)
	assert.Equal(t, 3, cfg.Speech.TokenTimeout)
	assert.Equal(t, 30, cfg.Speech.SynthesisTimeout)
	assert.Equal(t, "http://localhost:9999/v1", cfg.Speech.SynthesisEndpoint)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port with space", key: "PORT", value: "80 80"},
		{name: "timeout not a number", key: "SPEECH_TIMEOUT", value: "soon"},
		{name: "region with scheme", key: "SPEECH_REGION", value: "https://eastus"},
		{name: "rate not a number", key: "AUDIO_RATE_LIMIT", value: "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestServerConfigParsing(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:3000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://tts.example.com ,")
	t.Setenv("AUDIO_RATE_LIMIT", "2.5")
	t.Setenv("AUDIO_RATE_BURST", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:3000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "https://tts.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, 1, cfg.Server.RateBurst)
}

func TestSpeechServiceConfig(t *testing.T) {
	cfg := SpeechConfig{
		Region:           "westeurope",
		SubscriptionKey:  "secret",
		Timeout:          30,
		TokenTimeout:     10,
		SynthesisTimeout: 20,
	}

	svcCfg := cfg.ServiceConfig()

	assert.Equal(t, "westeurope", svcCfg.Region)
	assert.Equal(t, "secret", svcCfg.SubscriptionKey)
	assert.Equal(t, 30*time.Second, svcCfg.Timeout)
	assert.Equal(t, 10*time.Second, svcCfg.TokenTimeout)
	assert.Equal(t, 20*time.Second, svcCfg.SynthesisTimeout)
}
