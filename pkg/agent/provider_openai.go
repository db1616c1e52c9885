package agent

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mugenyume/make-it-heavy/pkg/tools"
)

// OpenAIProvider implements Provider for OpenAI and OpenAI-compatible vendors
// (OpenRouter, Groq, Cerebras, SambaNova, NVIDIA, Mistral, Ollama) selected by
// base URL.
type OpenAIProvider struct {
	client      openai.Client
	info        ProviderInfo
	maxTokens   int
	temperature float64
}

func newOpenAIProvider(opts ProviderOptions, info ProviderInfo, baseURL string) *OpenAIProvider {
	clientOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{
		client:      openai.NewClient(clientOpts...),
		info:        info,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

// Info implements Provider.
func (p *OpenAIProvider) Info() ProviderInfo {
	return p.info
}

// CreateChatCompletion implements Provider.
func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, messages []Message, specs []tools.Spec) (*ModelResponse, error) {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			converted = append(converted, openai.SystemMessage(msg.Content))
		case RoleUser:
			converted = append(converted, openai.UserMessage(msg.Content))
		case RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				toolCalls := make([]openai.ChatCompletionMessageToolCall, 0, len(msg.ToolCalls))
				for _, tc := range msg.ToolCalls {
					toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCall{
						ID:   tc.ID,
						Type: "function",
						Function: openai.ChatCompletionMessageToolCallFunction{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					})
				}
				assistantMsg := openai.ChatCompletionMessage{
					Role:      "assistant",
					Content:   msg.Content,
					ToolCalls: toolCalls,
				}
				converted = append(converted, assistantMsg.ToParam())
			} else {
				converted = append(converted, openai.AssistantMessage(msg.Content))
			}
		case RoleTool:
			converted = append(converted, openai.ToolMessage(msg.ToolCallID, msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.info.Model),
		Messages: converted,
	}
	if p.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.maxTokens))
	}
	if p.temperature > 0 {
		params.Temperature = openai.Float(p.temperature)
	}

	if len(specs) > 0 {
		toolParams := make([]openai.ChatCompletionToolParam, 0, len(specs))
		for _, spec := range specs {
			toolParams = append(toolParams, openai.ChatCompletionToolParam{
				Type: "function",
				Function: openai.FunctionDefinitionParam{
					Name:        spec.Name,
					Description: openai.String(spec.Description),
					Parameters:  openai.FunctionParameters(spec.Parameters),
				},
			})
		}
		params.Tools = toolParams
	}

	response, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	choice := response.Choices[0]

	// Hand tool calls to the normalizer in the wire shape: id plus a nested
	// function object with name and raw argument string.
	rawCalls := make([]interface{}, 0, len(choice.Message.ToolCalls))
	for _, tc := range choice.Message.ToolCalls {
		rawCalls = append(rawCalls, map[string]interface{}{
			"id": tc.ID,
			"function": map[string]interface{}{
				"name":      tc.Function.Name,
				"arguments": tc.Function.Arguments,
			},
		})
	}

	return &ModelResponse{
		Content:   choice.Message.Content,
		ToolCalls: rawCalls,
		Usage: TokenUsage{
			InputTokens:  int(response.Usage.PromptTokens),
			OutputTokens: int(response.Usage.CompletionTokens),
		},
	}, nil
}
