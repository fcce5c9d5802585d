package infrastructure

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macpulse/internal/config"
)

func TestCreateLoggerFileOutput(t *testing.T) {
	t.Cleanup(ResetLoggerForTesting)

	logPath := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := createLogger(config.LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("started")
	require.NoError(t, CloseLogFile())
	assert.FileExists(t, logPath)
}

func TestTraceHandlerInjectsTraceID(t *testing.T) {
	var buf bytes.Buffer
	handler := &traceHandler{Handler: slog.NewJSONHandler(&buf, nil)}
	logger := slog.New(handler)

	ctx := WithTraceID(context.Background(), "abc-123")
	logger.InfoContext(ctx, "calculation completed")

	assert.Contains(t, buf.String(), `"trace_id":"abc-123"`)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("bogus"))
}

func TestGetTraceIDMissing(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestEnsureTraceIDGenerates(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	assert.NotEmpty(t, GetTraceID(ctx))

	again := EnsureTraceID(ctx)
	assert.Equal(t, GetTraceID(ctx), GetTraceID(again))
}
