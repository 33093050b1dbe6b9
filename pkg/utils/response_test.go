package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondInternalError(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondInternalError(rr)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"error": "Internal Server Error"}, body)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Input string `json:"input"`
	}

	tests := []struct {
		name    string
		body    string
		max     int64
		want    string
		wantErr bool
	}{
		{name: "valid", body: `{"input":"hi"}`, max: 1024, want: "hi"},
		{name: "empty", body: ``, max: 1024, wantErr: true},
		{name: "malformed", body: `{"input":`, max: 1024, wantErr: true},
		{name: "trailing value", body: `{"input":"a"}{"input":"b"}`, max: 1024, wantErr: true},
		{name: "too large", body: `{"input":"` + strings.Repeat("x", 64) + `"}`, max: 16, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got payload
			err := DecodeJSON(httptest.NewRecorder(), req, &got, tt.max)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Input)
		})
	}
}
