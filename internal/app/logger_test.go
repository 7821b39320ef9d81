package app

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/originci/internal/testutil"
)

func TestNewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		buf := &testutil.SafeBuffer{}
		logger := newLogger("warn", "json", false, buf)

		logger.Info("hidden")
		logger.Warn("shown", "queue", 2)

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(buf.String()), &entry))
		assert.Equal(t, "shown", entry["msg"])
		assert.Equal(t, "WARN", entry["level"])
		assert.EqualValues(t, 2, entry["queue"])
	})

	t.Run("text", func(t *testing.T) {
		buf := &testutil.SafeBuffer{}
		logger := newLogger("debug", "text", true, buf)

		logger.Debug("Starting test run.", "units", 3)
		out := buf.String()
		assert.Contains(t, out, "DBG")
		assert.Contains(t, out, "Starting test run.")
		assert.Contains(t, out, "units=3")
	})

	t.Run("unknown level defaults to info", func(t *testing.T) {
		buf := &testutil.SafeBuffer{}
		logger := newLogger("verbose", "json", false, buf)
		logger.Debug("hidden")
		assert.Empty(t, buf.String())
	})
}

func TestRewriteLogLevel(t *testing.T) {
	attr := rewriteLogLevel(nil, slog.Any(slog.LevelKey, slog.LevelDebug))
	assert.Equal(t, "DEBUG", attr.Value.String())

	other := slog.String("msg", "hello")
	assert.Equal(t, other, rewriteLogLevel(nil, other))

	grouped := slog.Any(slog.LevelKey, slog.LevelInfo)
	assert.Equal(t, grouped, rewriteLogLevel([]string{"g"}, grouped))
}
