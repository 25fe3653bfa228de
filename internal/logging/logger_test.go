package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(level LogLevel, format string) (*VigilLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{
		Level:  level,
		Format: format,
		Output: &buf,
	})
	return logger, &buf
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel("info"))
	assert.Equal(t, LevelWarn, ParseLevel("warn"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestInfoIncludesFields(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo, "text")

	logger.Info(context.Background(), "build started", "command", "make build")

	output := buf.String()
	assert.Contains(t, output, "build started")
	assert.Contains(t, output, "command")
	assert.Contains(t, output, "make build")
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(LevelWarn, "text")

	logger.Debug(context.Background(), "debug message")
	logger.Info(context.Background(), "info message")
	assert.Empty(t, buf.String())

	logger.Warn(context.Background(), nil, "warn message")
	assert.Contains(t, buf.String(), "warn message")
}

func TestErrorIncludesError(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo, "text")

	logger.Error(context.Background(), errors.New("boom"), "build failed")

	output := buf.String()
	assert.Contains(t, output, "build failed")
	assert.Contains(t, output, "boom")
}

func TestWithComponent(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo, "text")

	logger.WithComponent("watcher").Info(context.Background(), "tick")

	assert.Contains(t, buf.String(), "component=watcher")
}

func TestWithFields(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo, "text")

	scoped := logger.With("root", "public")
	scoped.Info(context.Background(), "first")
	scoped.Info(context.Background(), "second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, "root=public")
	}
}

func TestJSONFormat(t *testing.T) {
	logger, buf := newTestLogger(LevelInfo, "json")

	logger.WithComponent("server").Info(context.Background(), "serving", "port", 8080)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "serving", record["msg"])
	assert.Equal(t, "server", record["component"])
	assert.Equal(t, float64(8080), record["port"])
}

func TestNilConfigUsesDefaults(t *testing.T) {
	logger := NewLogger(nil)
	assert.NotNil(t, logger)
	assert.Equal(t, LevelInfo, logger.level)
}
