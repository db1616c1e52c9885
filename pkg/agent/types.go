package agent

import "strings"

// Message roles used in agent conversations.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in an agent conversation.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is the canonical form of a model-issued tool invocation. After
// normalization ID and Name are never empty and Arguments is a raw string
// expected to decode to a JSON object.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// TokenUsage tracks token consumption for one provider call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ModelResponse is a single completion from a provider. Content may be any
// shape the provider produced; ToolCalls carries provider-native payloads that
// a Normalizer converts into canonical ToolCalls.
type ModelResponse struct {
	Content   interface{}
	ToolCalls []interface{}
	Usage     TokenUsage
}

// IsRetryableError reports whether an error looks transient: network and
// connection failures, rate limits, and upstream server errors.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())

	// Network and connection errors
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"timeout",
		"deadline exceeded",
		"temporarily unavailable",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	// Rate limits
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") {
		return true
	}

	// Server errors
	for _, code := range []string{"500", "502", "503", "504"} {
		if strings.Contains(msg, code) {
			return true
		}
	}

	return false
}
