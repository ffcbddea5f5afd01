package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundscore/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	return &Logger{zlog: zerolog.New(buf).With().Timestamp().Logger()}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output: %s", buf.String())
	return entry
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
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

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Env: "development", LogLevel: "info", LogFormat: "json"}

	log := NewWithWriter(cfg, &buf)
	log.Debug("hidden")
	assert.Zero(t, buf.Len(), "debug should be filtered at info level")

	log.Info("visible")
	entry := decode(t, &buf)
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "development", entry["env"])
	assert.Equal(t, "fundscore", entry["service"])
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { log.Debug("debug message") }, "debug message", "debug"},
		{"info", func() { log.Info("info message") }, "info message", "info"},
		{"warn", func() { log.Warn("warn message") }, "warn message", "warn"},
		{"error", func() { log.Error("error message") }, "error message", "error"},
		{"infof", func() { log.Infof("count: %d", 42) }, "count: 42", "info"},
		{"warnf", func() { log.Warnf("retry attempt: %d", 3) }, "retry attempt: 3", "warn"},
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

func TestEnrichment(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	log.WithComponent("s3_growth").
		WithSymbol("INFY").
		WithFields(map[string]interface{}{"quarters": 12}).
		WithError(errors.New("boom")).
		Warn("stage degraded")

	entry := decode(t, &buf)
	assert.Equal(t, "s3_growth", entry["component"])
	assert.Equal(t, "INFY", entry["symbol"])
	assert.Equal(t, float64(12), entry["quarters"])
	assert.Equal(t, "boom", entry["error"])
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Env: "development", LogLevel: "info", LogFormat: "console"}

	log := NewWithWriter(cfg, outputFor(cfg.LogFormat, &buf))
	log.Info("console message")

	assert.True(t, strings.Contains(buf.String(), "console message"))
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithSymbol("TCS").Error("discarded")
	})
}
