package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_FileWritesJSONWithFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")

	l, err := New(Config{Output: path, Level: "info", Fields: map[string]string{"instance": "i-1"}})
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	l.Info().Msg("view mounted")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry), "exactly one JSON line is written")
	assert.Equal(t, "view mounted", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "i-1", entry["instance"])
	assert.NotContains(t, entry, "caller")
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{Output: "stdout", Format: "xml"})
	assert.Error(t, err)

	_, err = New(Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	assert.Error(t, err)
}

func TestShortCaller(t *testing.T) {
	assert.Equal(t, filepath.Join("session", "mount.go")+":42", shortCaller(0, filepath.Join("/src", "app", "session", "mount.go"), 42))
	assert.Equal(t, "main.go:7", shortCaller(0, "main.go", 7))
}
