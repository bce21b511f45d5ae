package logger

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"faithnews/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadableHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewReadableHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.With(slog.String("component", "worker")).Info("cycle completed",
		slog.String("op", "worker.run"),
		slog.Int("articles", 42),
		slog.Duration("duration", 1500*time.Millisecond),
	)

	line := buf.String()
	assert.Contains(t, line, "INFO [worker] (worker.run): cycle completed")
	assert.Contains(t, line, "articles=42")
	assert.Contains(t, line, "took=1.5s")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestReadableHandler_KeepsWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewReadableHandler(&buf, nil)).With(slog.String("feed", "CCM Magazine"))

	log.Warn("feed skipped", slog.Any("error", assert.AnError))

	line := buf.String()
	assert.Contains(t, line, "WARN")
	assert.Contains(t, line, "feed=CCM Magazine")
	assert.Contains(t, line, `error="assert.AnError general error for testing"`)
}

func TestReadableHandler_Group(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewReadableHandler(&buf, nil)).WithGroup("http")

	log.Info("request", slog.Int("status", 200))

	assert.Contains(t, buf.String(), "http.status=200")
}

func TestReadableHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewReadableHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	log.Info("hidden")
	log.Debug("hidden too")
	assert.Empty(t, buf.String())
}

func TestLevelDispatcherHandler_RoutesErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	log := slog.New(NewLevelDispatcherHandler(&out, &errOut, nil))

	log.Info("normal message")
	log.Error("broken message")

	assert.Contains(t, out.String(), "normal message")
	assert.NotContains(t, out.String(), "broken message")
	assert.Contains(t, errOut.String(), "broken message")
}

func TestShortenURL(t *testing.T) {
	assert.Equal(t, "https://example.com/feed", shortenURL("https://example.com/feed"))
	long := "https://www.christianitytoday.com/leaders/feed/with/a/very/long/path"
	assert.Equal(t, "https://www.christianitytoday.com/...", shortenURL(long))
}

func TestNew_WritesToFiles(t *testing.T) {
	dir := t.TempDir()
	log, err := New(config.LoggerConfig{
		Level:      "debug",
		File:       filepath.Join(dir, "logs", "app.log"),
		ErrorFile:  filepath.Join(dir, "logs", "app_error.log"),
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	})
	require.NoError(t, err)
	require.NotNil(t, log)
	log.Debug("debug works")
	assert.FileExists(t, filepath.Join(dir, "logs", "app.log"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("whatever"))
}
