package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultConfigFile is the config file looked up in the working directory
// when no explicit path is given.
const DefaultConfigFile = "config.yaml"

// envBoundKeys are the config keys overridable through HEAVY_ environment
// variables, for example HEAVY_AGENT_MAX_ITERATIONS for agent.max_iterations.
var envBoundKeys = []string{
	"provider.name",
	"provider.api_key",
	"provider.base_url",
	"provider.model",
	"provider.max_tokens",
	"provider.temperature",
	"agent.system_prompt",
	"agent.max_iterations",
	"agent.no_tool_streak_threshold",
	"agent.dedup_min_length",
	"agent.dedup_similarity",
	"orchestrator.agent_count",
	"orchestrator.max_concurrency",
	"orchestrator.task_timeout",
	"orchestrator.retry_attempts",
	"orchestrator.retry_backoff",
	"orchestrator.aggregation_strategy",
	"orchestrator.question_prompt",
	"orchestrator.synthesis_prompt",
	"search.enabled",
	"search.max_results",
	"search.timeout",
	"search.user_agent",
	"logging.level",
	"logging.pretty",
	"logging.file",
	"metrics.enabled",
	"metrics.addr",
}

// Loader handles configuration loading
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load loads the configuration. A missing default config file yields the
// built-in defaults; a missing explicit path is an error. Environment
// variables with the HEAVY_ prefix override file values, for example
// HEAVY_PROVIDER_API_KEY for provider.api_key.
func (l *Loader) Load() (*Config, error) {
	configPath := l.configPath
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("HEAVY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only resolves keys viper knows about, so env-only overrides
	// need an explicit binding per key.
	for _, key := range envBoundKeys {
		_ = v.BindEnv(key)
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if explicit {
			return nil, fmt.Errorf("config file %s does not exist", configPath)
		}
	} else {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
