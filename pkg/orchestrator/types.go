package orchestrator

import (
	"context"
	"time"
)

// Status classifies the outcome of one spawned agent run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// AgentRunResult is the immutable record of one spawned agent run.
type AgentRunResult struct {
	AgentID       int           `json:"agent_id"`
	Status        Status        `json:"status"`
	Response      string        `json:"response"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// Runner runs one conversation to termination. agent.Loop satisfies it.
type Runner interface {
	Run(ctx context.Context, input string) (string, error)
}

// LoopKind selects the tool surface for a spawned loop.
type LoopKind int

const (
	// LoopResearch offers the full tool set.
	LoopResearch LoopKind = iota

	// LoopQuestion removes the completion tool so decomposition cannot
	// short-circuit.
	LoopQuestion

	// LoopSynthesis removes all tools to force a direct text answer.
	LoopSynthesis
)

// LoopFactory builds fresh loop instances. Every spawned agent gets its own
// instance; instances share nothing.
type LoopFactory interface {
	NewLoop(kind LoopKind) (Runner, error)
}

// Config configures an Orchestrator.
type Config struct {
	// AgentCount is the number of parallel research agents.
	AgentCount int

	// MaxConcurrency bounds how many agents run simultaneously. Zero means
	// AgentCount.
	MaxConcurrency int

	// TaskTimeout is the global deadline for the whole fan-out. Agents
	// still running at the deadline are abandoned, not force-killed.
	TaskTimeout time.Duration

	// RetryAttempts bounds attempts per agent; only transient failures are
	// retried.
	RetryAttempts int

	// RetryBackoff is the initial backoff between attempts; it doubles per
	// retry.
	RetryBackoff time.Duration

	// AggregationStrategy names the aggregation behavior. Only "consensus"
	// is implemented.
	AggregationStrategy string

	// QuestionPrompt is the decomposition template. Substitution points:
	// {user_input}, {num_agents}.
	QuestionPrompt string

	// SynthesisPrompt is the synthesis template. Substitution points:
	// {num_responses}, {agent_responses}.
	SynthesisPrompt string

	// ProviderName feeds provider-specific auth hints into failure
	// diagnostics.
	ProviderName string
}

// Orchestration defaults.
const (
	DefaultAgentCount    = 4
	DefaultTaskTimeout   = 5 * time.Minute
	DefaultRetryAttempts = 3
	DefaultRetryBackoff  = time.Second
)

// DefaultQuestionPrompt asks the model to decompose a task into exactly N
// research questions as a JSON array.
const DefaultQuestionPrompt = `You are an orchestrator that breaks a research task into parallel subtasks.
Generate exactly {num_agents} distinct research questions that together cover this task from different angles:

{user_input}

Respond with ONLY a JSON array of {num_agents} question strings, nothing else.`

// DefaultSynthesisPrompt asks the model to merge the agents' answers.
const DefaultSynthesisPrompt = `You have {num_responses} answers to the same research task from independent agents.
Synthesize them into one comprehensive, coherent answer. Resolve contradictions, remove repetition, and keep all substantive findings.

{agent_responses}

Provide the final synthesized answer directly, without meta commentary.`

func (c *Config) applyDefaults() {
	if c.AgentCount <= 0 {
		c.AgentCount = DefaultAgentCount
	}
	if c.MaxConcurrency <= 0 || c.MaxConcurrency > c.AgentCount {
		c.MaxConcurrency = c.AgentCount
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = DefaultTaskTimeout
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.AggregationStrategy == "" {
		c.AggregationStrategy = "consensus"
	}
	if c.QuestionPrompt == "" {
		c.QuestionPrompt = DefaultQuestionPrompt
	}
	if c.SynthesisPrompt == "" {
		c.SynthesisPrompt = DefaultSynthesisPrompt
	}
}
