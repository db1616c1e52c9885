package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Run("should produce a valid configuration", func(t *testing.T) {
		cfg := DefaultConfig()

		require.NoError(t, cfg.Validate())
		assert.Equal(t, 4, cfg.Orchestrator.AgentCount)
		assert.Equal(t, 10, cfg.Agent.MaxIterations)
		assert.True(t, cfg.Search.Enabled)
	})
}

func TestValidate(t *testing.T) {
	t.Run("should reject an unknown provider", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider.Name = "imaginary"

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})

	t.Run("should reject a missing provider name", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider.Name = ""

		assert.Error(t, cfg.Validate())
	})

	t.Run("should reject a missing model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider.Model = ""

		assert.Error(t, cfg.Validate())
	})

	t.Run("should reject an unsupported aggregation strategy", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Orchestrator.AggregationStrategy = "majority"

		err := cfg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "aggregation strategy")
	})

	t.Run("should reject negative counters", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Agent.MaxIterations = -1
		assert.Error(t, cfg.Validate())

		cfg = DefaultConfig()
		cfg.Orchestrator.AgentCount = -2
		assert.Error(t, cfg.Validate())
	})
}
