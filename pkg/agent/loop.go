package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mugenyume/make-it-heavy/internal/metrics"
	"github.com/mugenyume/make-it-heavy/pkg/tools"
)

// Loop defaults.
const (
	DefaultMaxIterations         = 10
	DefaultNoToolStreakThreshold = 2
)

// Fallback responses when a run ends without any usable content.
const (
	completedFallbackResponse = "Task completed successfully."
	exhaustedFallbackResponse = "I apologize, but I couldn't generate a meaningful response. Please try rephrasing your question."
)

// LoopConfig configures a single agent loop instance.
type LoopConfig struct {
	// Provider is the model backend. Required.
	Provider Provider

	// Tools the model may call. Nil means no tools are offered.
	Tools *tools.Registry

	// SystemPrompt opens every conversation.
	SystemPrompt string

	// MaxIterations bounds the number of model turns per run.
	MaxIterations int

	// NoToolStreakThreshold finalizes the run after this many consecutive
	// turns without a tool call. Some models answer directly and never
	// invoke the completion tool; without this the loop would burn through
	// MaxIterations for nothing.
	NoToolStreakThreshold int

	// Dedup collapses repeated assistant content at finalization. Defaults
	// to NewDeduplicator.
	Dedup *Deduplicator

	Logger zerolog.Logger
}

// Loop drives one conversation to termination: it alternates model calls and
// tool execution until the model signals completion, stops calling tools, or
// the iteration budget runs out. A Loop instance is single-threaded; run
// concurrent conversations with separate instances.
type Loop struct {
	provider        Provider
	registry        *tools.Registry
	systemPrompt    string
	maxIterations   int
	streakThreshold int
	dedup           *Deduplicator
	logger          zerolog.Logger
}

// NewLoop creates an agent loop.
func NewLoop(cfg LoopConfig) (*Loop, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.Tools == nil {
		cfg.Tools = tools.NewRegistry()
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.NoToolStreakThreshold <= 0 {
		cfg.NoToolStreakThreshold = DefaultNoToolStreakThreshold
	}
	if cfg.Dedup == nil {
		cfg.Dedup = NewDeduplicator()
	}

	metrics.EnsureRegistered()

	return &Loop{
		provider:        cfg.Provider,
		registry:        cfg.Tools,
		systemPrompt:    cfg.SystemPrompt,
		maxIterations:   cfg.MaxIterations,
		streakThreshold: cfg.NoToolStreakThreshold,
		dedup:           cfg.Dedup,
		logger:          cfg.Logger,
	}, nil
}

// Run executes the loop for one user input and returns the final response.
// Tool failures are recovered inside the run; a provider failure ends the run
// with a ProviderCallError.
func (l *Loop) Run(ctx context.Context, userInput string) (string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: l.systemPrompt},
		{Role: RoleUser, Content: userInput},
	}

	var accumulated []string
	normalizer := &Normalizer{}
	nonCompletionCalls := 0
	noToolStreak := 0
	completionFallback := ""
	start := time.Now()
	providerName := l.provider.Info().Name

	for iteration := 1; iteration <= l.maxIterations; iteration++ {
		l.logger.Debug().
			Int("iteration", iteration).
			Int("max_iterations", l.maxIterations).
			Msg("Agent iteration")

		response, err := l.provider.CreateChatCompletion(ctx, messages, l.registry.Specs())
		if err != nil {
			metrics.RecordAgentRun(providerName, time.Since(start), iteration, false)
			return "", &ProviderCallError{Provider: providerName, Err: err}
		}

		content := coerceContent(response.Content)
		calls := normalizer.NormalizeAll(response.ToolCalls)

		// Content stays present even when empty; some providers reject
		// assistant messages without it.
		assistantMsg := Message{Role: RoleAssistant, Content: content}
		if len(calls) > 0 {
			assistantMsg.ToolCalls = calls
		}
		messages = append(messages, assistantMsg)

		if trimmed := strings.TrimSpace(content); trimmed != "" {
			accumulated = append(accumulated, trimmed)
		}

		if len(calls) == 0 {
			noToolStreak++
			l.logger.Debug().
				Int("streak", noToolStreak).
				Msg("Agent responded without tool calls")
			if noToolStreak >= l.streakThreshold {
				if final := l.dedup.Fold(accumulated); final != "" {
					metrics.RecordAgentRun(providerName, time.Since(start), iteration, true)
					return final, nil
				}
			}
			continue
		}

		noToolStreak = 0
		l.logger.Debug().Int("count", len(calls)).Msg("Agent making tool calls")

		completed := false
		for _, call := range calls {
			if call.Name == tools.CompletionToolName {
				// Only honor completion after some useful work happened;
				// models occasionally call it on the very first turn.
				if len(accumulated) == 0 && nonCompletionCalls == 0 {
					l.logger.Debug().Msg("Premature completion call ignored")
					continue
				}

				messages = append(messages, l.executeToolCall(ctx, call))
				if args, err := ParseToolArguments(call.Arguments); err == nil {
					if msg := strings.TrimSpace(coerceContent(args["completion_message"])); msg != "" {
						completionFallback = msg
					}
				}
				completed = true
				continue
			}

			messages = append(messages, l.executeToolCall(ctx, call))
			nonCompletionCalls++
		}

		if completed {
			metrics.RecordAgentRun(providerName, time.Since(start), iteration, true)
			if final := l.dedup.Fold(accumulated); final != "" {
				return final, nil
			}
			if completionFallback != "" {
				return completionFallback, nil
			}
			return completedFallbackResponse, nil
		}
	}

	// Iteration budget exhausted; return whatever was gathered. A run that
	// gathered nothing counts as a failure in the metrics.
	final := l.dedup.Fold(accumulated)
	if final == "" {
		final = completionFallback
	}
	metrics.RecordAgentRun(providerName, time.Since(start), l.maxIterations, final != "")
	if final != "" {
		return final, nil
	}
	return exhaustedFallbackResponse, nil
}

// executeToolCall runs one tool call and renders the outcome as a tool
// message. Every failure mode becomes an error payload; nothing escapes.
func (l *Loop) executeToolCall(ctx context.Context, call ToolCall) Message {
	payload := l.runTool(ctx, call)
	data, err := json.Marshal(payload)
	if err != nil {
		data, _ = json.Marshal(map[string]string{
			"error": fmt.Sprintf("Tool execution failed: unserializable result: %v", err),
		})
	}
	return Message{
		Role:       RoleTool,
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    string(data),
	}
}

func (l *Loop) runTool(ctx context.Context, call ToolCall) interface{} {
	args, err := ParseToolArguments(call.Arguments)
	if err != nil {
		return map[string]string{"error": err.Error()}
	}

	out, err := l.registry.Execute(ctx, call.Name, args)
	if err != nil {
		var unknown *tools.UnknownToolError
		if errors.As(err, &unknown) {
			return map[string]string{"error": err.Error()}
		}
		l.logger.Warn().Err(err).Str("tool", call.Name).Msg("Tool execution failed")
		return map[string]string{"error": fmt.Sprintf("Tool execution failed: %v", err)}
	}
	return out
}
