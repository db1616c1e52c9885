package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("should load values from a yaml file", func(t *testing.T) {
		path := writeConfigFile(t, `
provider:
  name: groq
  model: llama-3.3-70b-versatile
  temperature: 0.2
agent:
  max_iterations: 5
orchestrator:
  agent_count: 6
  task_timeout: 2m
logging:
  level: debug
`)

		cfg, err := NewLoader(path).Load()

		require.NoError(t, err)
		assert.Equal(t, "groq", cfg.Provider.Name)
		assert.Equal(t, "llama-3.3-70b-versatile", cfg.Provider.Model)
		assert.Equal(t, 0.2, cfg.Provider.Temperature)
		assert.Equal(t, 5, cfg.Agent.MaxIterations)
		assert.Equal(t, 6, cfg.Orchestrator.AgentCount)
		assert.Equal(t, 2*time.Minute, cfg.Orchestrator.TaskTimeout)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("should keep defaults for fields the file omits", func(t *testing.T) {
		path := writeConfigFile(t, `
provider:
  name: openai
  model: gpt-4o-mini
`)

		cfg, err := NewLoader(path).Load()

		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Orchestrator.AgentCount)
		assert.Equal(t, DefaultSystemPrompt, cfg.Agent.SystemPrompt)
		assert.True(t, cfg.Search.Enabled)
	})

	t.Run("should fail for a missing explicit path", func(t *testing.T) {
		_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("should fall back to defaults when no default file exists", func(t *testing.T) {
		cwd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		defer os.Chdir(cwd)

		cfg, err := NewLoader("").Load()

		require.NoError(t, err)
		assert.Equal(t, DefaultConfig().Provider.Name, cfg.Provider.Name)
	})

	t.Run("should let environment variables override the file", func(t *testing.T) {
		path := writeConfigFile(t, `
provider:
  name: openai
  model: gpt-4o-mini
`)
		t.Setenv("HEAVY_PROVIDER_API_KEY", "sk-from-env")
		t.Setenv("HEAVY_PROVIDER_MODEL", "gpt-4o")

		cfg, err := NewLoader(path).Load()

		require.NoError(t, err)
		assert.Equal(t, "sk-from-env", cfg.Provider.APIKey)
		assert.Equal(t, "gpt-4o", cfg.Provider.Model)
	})

	t.Run("should apply env-only keys absent from the file", func(t *testing.T) {
		path := writeConfigFile(t, `
provider:
  name: openai
  model: gpt-4o-mini
`)
		t.Setenv("HEAVY_AGENT_MAX_ITERATIONS", "7")
		t.Setenv("HEAVY_ORCHESTRATOR_AGENT_COUNT", "8")
		t.Setenv("HEAVY_LOGGING_LEVEL", "debug")

		cfg, err := NewLoader(path).Load()

		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Agent.MaxIterations)
		assert.Equal(t, 8, cfg.Orchestrator.AgentCount)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("should reject a file that fails validation", func(t *testing.T) {
		path := writeConfigFile(t, `
provider:
  name: not-a-provider
  model: something
`)

		_, err := NewLoader(path).Load()

		assert.Error(t, err)
	})

	t.Run("should reject malformed yaml", func(t *testing.T) {
		path := writeConfigFile(t, "provider: [unclosed")

		_, err := NewLoader(path).Load()

		assert.Error(t, err)
	})
}
