package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polizaexpress/internal/platform/config"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("json handler honours the level", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "json"})

		log.Info("dropped")
		log.Warn("kept", "case_id", "c-1")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "kept", entry["msg"])
		assert.Equal(t, "c-1", entry["case_id"])
	})

	t.Run("text handler", func(t *testing.T) {
		var buf bytes.Buffer
		log := NewWithWriter(&buf, config.LogConfig{Level: "debug", Format: "text"})
		log.Debug("hello")
		assert.Contains(t, buf.String(), "msg=hello")
	})
}
