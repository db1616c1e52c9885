package config

import (
	"fmt"
	"time"

	"github.com/mugenyume/make-it-heavy/pkg/agent"
)

// Config is the root configuration for both the single-agent and the
// multi-agent commands.
type Config struct {
	// Provider selects and configures the model backend.
	Provider ProviderConfig `json:"provider" mapstructure:"provider"`

	// Agent configures the tool-calling loop.
	Agent AgentConfig `json:"agent" mapstructure:"agent"`

	// Orchestrator configures the parallel multi-agent run.
	Orchestrator OrchestratorConfig `json:"orchestrator" mapstructure:"orchestrator"`

	// Search configures the web search tool.
	Search SearchConfig `json:"search" mapstructure:"search"`

	// Logging configures structured log output.
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Metrics configures the optional Prometheus endpoint.
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
}

// ProviderConfig holds model backend settings.
type ProviderConfig struct {
	Name        string  `json:"name" mapstructure:"name"` // openai, openrouter, anthropic, groq, ...
	APIKey      string  `json:"api_key" mapstructure:"api_key"`
	BaseURL     string  `json:"base_url" mapstructure:"base_url"`
	Model       string  `json:"model" mapstructure:"model"`
	MaxTokens   int     `json:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `json:"temperature" mapstructure:"temperature"`
}

// AgentConfig holds agent loop settings.
type AgentConfig struct {
	SystemPrompt          string  `json:"system_prompt" mapstructure:"system_prompt"`
	MaxIterations         int     `json:"max_iterations" mapstructure:"max_iterations"`
	NoToolStreakThreshold int     `json:"no_tool_streak_threshold" mapstructure:"no_tool_streak_threshold"`
	DedupMinLength        int     `json:"dedup_min_length" mapstructure:"dedup_min_length"`
	DedupSimilarity       float64 `json:"dedup_similarity" mapstructure:"dedup_similarity"`
}

// OrchestratorConfig holds multi-agent settings.
type OrchestratorConfig struct {
	AgentCount          int           `json:"agent_count" mapstructure:"agent_count"`
	MaxConcurrency      int           `json:"max_concurrency" mapstructure:"max_concurrency"`
	TaskTimeout         time.Duration `json:"task_timeout" mapstructure:"task_timeout"`
	RetryAttempts       int           `json:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoff        time.Duration `json:"retry_backoff" mapstructure:"retry_backoff"`
	AggregationStrategy string        `json:"aggregation_strategy" mapstructure:"aggregation_strategy"`
	QuestionPrompt      string        `json:"question_prompt" mapstructure:"question_prompt"`
	SynthesisPrompt     string        `json:"synthesis_prompt" mapstructure:"synthesis_prompt"`
}

// SearchConfig holds web search tool settings.
type SearchConfig struct {
	Enabled    bool          `json:"enabled" mapstructure:"enabled"`
	MaxResults int           `json:"max_results" mapstructure:"max_results"`
	Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
	UserAgent  string        `json:"user_agent" mapstructure:"user_agent"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"` // debug, info, warn, error
	Pretty bool   `json:"pretty" mapstructure:"pretty"`
	File   string `json:"file" mapstructure:"file"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" mapstructure:"addr"`
}

// DefaultSystemPrompt instructs the model on the tool-calling contract.
const DefaultSystemPrompt = `You are a helpful research assistant with access to tools.
Use the search tool to gather current information when the question needs it.
Work step by step. When the task is fully answered, call the mark_task_complete tool
with a summary of what was accomplished and a final message for the user.`

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:        "openrouter",
			Model:       "openai/gpt-4.1-mini",
			Temperature: 0.7,
		},
		Agent: AgentConfig{
			SystemPrompt:          DefaultSystemPrompt,
			MaxIterations:         10,
			NoToolStreakThreshold: 2,
			DedupMinLength:        agent.DefaultSimilarityMinLength,
			DedupSimilarity:       agent.DefaultSimilarityThreshold,
		},
		Orchestrator: OrchestratorConfig{
			AgentCount:          4,
			TaskTimeout:         5 * time.Minute,
			RetryAttempts:       3,
			RetryBackoff:        time.Second,
			AggregationStrategy: "consensus",
		},
		Search: SearchConfig{
			Enabled:    true,
			MaxResults: 5,
			Timeout:    10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
		Metrics: MetricsConfig{
			Addr: "localhost:9090",
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Provider.Name == "" {
		return fmt.Errorf("provider.name is required")
	}
	if !providerKnown(c.Provider.Name) {
		return fmt.Errorf("unknown provider %q (available: %v)", c.Provider.Name, agent.AvailableProviders())
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("provider.model is required")
	}
	if c.Agent.MaxIterations < 0 {
		return fmt.Errorf("agent.max_iterations must not be negative")
	}
	if c.Orchestrator.AgentCount < 0 {
		return fmt.Errorf("orchestrator.agent_count must not be negative")
	}
	if c.Orchestrator.AggregationStrategy != "" && c.Orchestrator.AggregationStrategy != "consensus" {
		return fmt.Errorf("unsupported aggregation strategy %q", c.Orchestrator.AggregationStrategy)
	}
	return nil
}

func providerKnown(name string) bool {
	for _, known := range agent.AvailableProviders() {
		if known == name {
			return true
		}
	}
	return false
}
