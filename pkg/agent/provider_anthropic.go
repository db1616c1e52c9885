package agent

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mugenyume/make-it-heavy/pkg/tools"
)

const anthropicDefaultMaxTokens = 4096

// AnthropicProvider implements Provider for Anthropic Claude.
type AnthropicProvider struct {
	client      anthropic.Client
	info        ProviderInfo
	maxTokens   int
	temperature float64
}

func newAnthropicProvider(opts ProviderOptions, info ProviderInfo) *AnthropicProvider {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}
	return &AnthropicProvider{
		client:      anthropic.NewClient(option.WithAPIKey(opts.APIKey)),
		info:        info,
		maxTokens:   maxTokens,
		temperature: opts.Temperature,
	}
}

// Info implements Provider.
func (p *AnthropicProvider) Info() ProviderInfo {
	return p.info
}

// CreateChatCompletion implements Provider.
func (p *AnthropicProvider) CreateChatCompletion(ctx context.Context, messages []Message, specs []tools.Spec) (*ModelResponse, error) {
	systemPrompt := ""
	converted := []anthropic.MessageParam{}

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			// Anthropic takes the system prompt as a request field.
			if systemPrompt == "" {
				systemPrompt = msg.Content
			}
		case RoleTool:
			converted = append(converted, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false),
			))
		case RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				blocks := []anthropic.ContentBlockParamUnion{}
				if msg.Content != "" {
					blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
				}
				for _, tc := range msg.ToolCalls {
					input, err := ParseToolArguments(tc.Arguments)
					if err != nil {
						input = map[string]interface{}{}
					}
					blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
				}
				converted = append(converted, anthropic.MessageParam{
					Role:    anthropic.MessageParamRoleAssistant,
					Content: blocks,
				})
			} else {
				converted = append(converted, anthropic.MessageParam{
					Role: anthropic.MessageParamRoleAssistant,
					Content: []anthropic.ContentBlockParamUnion{
						anthropic.NewTextBlock(msg.Content),
					},
				})
			}
		case RoleUser:
			converted = append(converted, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.info.Model),
		Messages:  converted,
		MaxTokens: int64(p.maxTokens),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	if p.temperature > 0 {
		params.Temperature = anthropic.Float(p.temperature)
	}

	if len(specs) > 0 {
		toolParams := []anthropic.ToolUnionParam{}
		for _, spec := range specs {
			toolParam := anthropic.ToolParam{
				Name:        spec.Name,
				Description: anthropic.String(spec.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: spec.Parameters["properties"],
				},
			}
			if required, ok := spec.Parameters["required"].([]interface{}); ok {
				names := make([]string, 0, len(required))
				for _, v := range required {
					if s, ok := v.(string); ok {
						names = append(names, s)
					}
				}
				toolParam.InputSchema.Required = names
			}
			toolParams = append(toolParams, anthropic.ToolUnionParam{OfTool: &toolParam})
		}
		params.Tools = toolParams
	}

	response, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	content := ""
	rawCalls := []interface{}{}
	for _, block := range response.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += b.Text
		case anthropic.ToolUseBlock:
			// Flat map shape; the normalizer accepts it alongside the nested
			// "function" shape OpenAI-compatible vendors produce.
			rawCalls = append(rawCalls, map[string]interface{}{
				"id":        b.ID,
				"name":      b.Name,
				"arguments": string(json.RawMessage(b.JSON.Input.Raw())),
			})
		}
	}

	return &ModelResponse{
		Content:   content,
		ToolCalls: rawCalls,
		Usage: TokenUsage{
			InputTokens:  int(response.Usage.InputTokens),
			OutputTokens: int(response.Usage.OutputTokens),
		},
	}, nil
}
