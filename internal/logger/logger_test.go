package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("should emit structured JSON by default", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "info", Out: &buf})

		log.Info().Str("component", "test").Msg("hello")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["message"])
		assert.Equal(t, "test", entry["component"])
		assert.NotEmpty(t, entry["time"])
	})

	t.Run("should honor the configured level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "warn", Out: &buf})

		log.Info().Msg("dropped")
		log.Warn().Msg("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("should default a bad level to info", func(t *testing.T) {
		log := New(Config{Level: "shouting"})

		assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
	})

	t.Run("should render human-readable output in pretty mode", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(Config{Level: "info", Pretty: true, Out: &buf})

		log.Info().Msg("readable")

		assert.Contains(t, buf.String(), "readable")
		assert.NotContains(t, buf.String(), `"message"`)
	})
}
