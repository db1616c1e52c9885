package tools

import (
	"context"
)

// CompletionTool signals that the agent considers its task finished. The agent
// loop treats calls to it specially; executing it only acknowledges the signal.
type CompletionTool struct{}

// NewCompletionTool creates the task completion tool.
func NewCompletionTool() *CompletionTool {
	return &CompletionTool{}
}

// Name implements Tool.
func (t *CompletionTool) Name() string {
	return CompletionToolName
}

// Description implements Tool.
func (t *CompletionTool) Description() string {
	return "REQUIRED: Call this when the task is fully complete. Provide a summary of what was accomplished and the final message for the user."
}

// Parameters implements Tool.
func (t *CompletionTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"task_summary": map[string]interface{}{
				"type":        "string",
				"description": "Brief summary of what was accomplished",
			},
			"completion_message": map[string]interface{}{
				"type":        "string",
				"description": "Final message to deliver to the user if no other content was produced",
			},
		},
		"required": []interface{}{"task_summary"},
	}
}

// Execute implements Tool.
func (t *CompletionTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	summary, _ := args["task_summary"].(string)
	message, _ := args["completion_message"].(string)
	return map[string]interface{}{
		"status":             "completed",
		"task_summary":       summary,
		"completion_message": message,
	}, nil
}
