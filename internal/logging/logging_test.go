package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(Config{Level: "debug", Format: "json"}, &buf)

	logger.Debug().Str("component", "relay").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "relay", entry["component"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestSetupUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(Config{Level: "verbose"}, &buf)

	logger.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
