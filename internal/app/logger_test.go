package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("json format emits JSON records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("info", "json", &buf)
		logger.Info("hello", "k", "v")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "hello", record["msg"])
		assert.Equal(t, "v", record["k"])
	})

	t.Run("text format emits key=value lines", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("info", "text", &buf)
		logger.Info("hello")

		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("level filters lower-severity records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("warn", "text", &buf)
		logger.Info("dropped")
		logger.Warn("kept")

		out := buf.String()
		assert.NotContains(t, out, "dropped")
		assert.Contains(t, out, "kept")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("chatty", "text", &buf)
		logger.Debug("dropped")
		logger.Info("kept")

		out := buf.String()
		assert.NotContains(t, out, "dropped")
		assert.Contains(t, out, "kept")
	})
}
