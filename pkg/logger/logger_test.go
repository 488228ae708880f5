package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fscore/pkg/config"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestNew_SetsGlobalLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := New(&config.Config{Env: "development", LogLevel: tt.level, LogFormat: "json"})
			require.NotNil(t, l)
			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}

func TestNewTo_WritesEnvField(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	l := NewTo(&config.Config{Env: "staging", LogLevel: "info", LogFormat: "json"}, &buf)
	l.Info("hello")

	entry := decode(t, &buf)
	assert.Equal(t, "staging", entry["env"])
	assert.Equal(t, "hello", entry["message"])
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug")

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { l.Debug("debug message") }, "debug message", "debug"},
		{"info", func() { l.Info("info message") }, "info message", "info"},
		{"warnf", func() { l.Warnf("retry attempt: %d", 3) }, "retry attempt: 3", "warn"},
		{"errorf", func() { l.Errorf("failed: %s", "timeout") }, "failed: timeout", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			entry := decode(t, &buf)
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantMsg, entry["message"])
		})
	}
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithFieldsAndComponent(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug").
		WithComponent("universe").
		WithFields(map[string]interface{}{
			"symbol": "AAPL",
			"fscore": 8,
		})
	l.Info("selected")

	entry := decode(t, &buf)
	assert.Equal(t, "universe", entry["component"])
	assert.Equal(t, "AAPL", entry["symbol"])
	assert.Equal(t, float64(8), entry["fscore"])
}

func TestWithError(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	NewWithWriter(&buf, "debug").
		WithError(errors.New("database connection failed")).
		Error("operation failed")

	entry := decode(t, &buf)
	assert.Equal(t, "database connection failed", entry["error"])
	assert.Equal(t, "operation failed", entry["message"])
}

func TestNop(t *testing.T) {
	// must not panic
	Nop().WithField("k", "v").Info("discarded")
}
