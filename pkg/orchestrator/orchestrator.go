package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/mugenyume/make-it-heavy/internal/metrics"
	"github.com/mugenyume/make-it-heavy/pkg/agent"
)

// minSubstantiveLength is the cutoff below which an agent answer is treated
// as noise during aggregation.
const minSubstantiveLength = 10

const allFailedFallback = "All agents failed to provide meaningful results."

// Orchestrator fans a task out to parallel research agents and synthesizes
// their answers into one response. A single instance may be reused across
// tasks; only one Orchestrate call should run at a time.
type Orchestrator struct {
	cfg      Config
	factory  LoopFactory
	progress *progressBoard
	logger   zerolog.Logger
}

// New creates an orchestrator. The factory is required.
func New(cfg Config, factory LoopFactory, logger zerolog.Logger) (*Orchestrator, error) {
	if factory == nil {
		return nil, fmt.Errorf("loop factory is required")
	}
	cfg.applyDefaults()

	metrics.EnsureRegistered()

	return &Orchestrator{
		cfg:      cfg,
		factory:  factory,
		progress: newProgressBoard(),
		logger:   logger,
	}, nil
}

// AgentCount reports the configured number of parallel agents.
func (o *Orchestrator) AgentCount() int {
	return o.cfg.AgentCount
}

// GetProgressStatus returns a snapshot of every agent's current status.
func (o *Orchestrator) GetProgressStatus() map[int]string {
	return o.progress.Snapshot()
}

// Orchestrate runs the full pipeline for one user task: decompose, fan out,
// aggregate. Agent failures surface inside the returned string; the error is
// reserved for context cancellation and setup failures.
func (o *Orchestrator) Orchestrate(ctx context.Context, userInput string) (string, error) {
	runID, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	logger := o.logger.With().Str("run_id", runID).Logger()
	start := time.Now()

	o.progress.Reset(o.cfg.AgentCount)

	subtasks := o.decompose(ctx, userInput, logger)
	logger.Info().
		Int("agents", o.cfg.AgentCount).
		Strs("subtasks", subtasks).
		Msg("Task decomposed")

	results := o.fanOut(ctx, subtasks, logger)
	if err := ctx.Err(); err != nil {
		metrics.RecordOrchestration("canceled", time.Since(start))
		return "", err
	}

	answer := o.aggregate(ctx, userInput, results, logger)

	outcome := "success"
	if answer == allFailedFallback || strings.HasPrefix(answer, allFailedFallback) {
		outcome = "all_failed"
	}
	metrics.RecordOrchestration(outcome, time.Since(start))
	logger.Info().
		Dur("duration", time.Since(start)).
		Str("outcome", outcome).
		Msg("Orchestration finished")

	return answer, nil
}

// decompose asks a question-generation loop to split the task into exactly
// AgentCount research questions, then normalizes whatever came back.
func (o *Orchestrator) decompose(ctx context.Context, userInput string, logger zerolog.Logger) []string {
	prompt := renderTemplate(o.cfg.QuestionPrompt, map[string]string{
		"{user_input}": userInput,
		"{num_agents}": strconv.Itoa(o.cfg.AgentCount),
	})

	var items []string
	loop, err := o.factory.NewLoop(LoopQuestion)
	if err != nil {
		logger.Warn().Err(err).Msg("Question loop construction failed, using fallback questions")
	} else {
		response, runErr := loop.Run(ctx, prompt)
		if runErr != nil {
			logger.Warn().Err(runErr).Msg("Decomposition failed, using fallback questions")
		} else if parsed, parseErr := parseSubtasks(response); parseErr != nil {
			logger.Warn().Err(parseErr).Msg("Decomposition response was not a JSON array, using fallback questions")
		} else {
			items = parsed
		}
	}

	return normalizeSubtasks(items, userInput, o.cfg.AgentCount)
}

// fanOut runs one agent per subtask under bounded concurrency and a global
// deadline. Agents that miss the deadline are abandoned with a timeout
// status; their goroutines drain into a buffered channel and exit.
func (o *Orchestrator) fanOut(ctx context.Context, subtasks []string, logger zerolog.Logger) []AgentRunResult {
	n := len(subtasks)
	runCtx, cancel := context.WithTimeout(ctx, o.cfg.TaskTimeout)
	defer cancel()

	resultCh := make(chan AgentRunResult, n)
	sem := make(chan struct{}, o.cfg.MaxConcurrency)

	for i, subtask := range subtasks {
		go func(agentID int, input string) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-runCtx.Done():
				o.progress.Set(agentID, ProgressTimeout)
				metrics.RecordSubtaskResult(string(StatusTimeout))
				resultCh <- AgentRunResult{
					AgentID:       agentID,
					Status:        StatusTimeout,
					Response:      "",
					ExecutionTime: 0,
				}
				return
			}
			resultCh <- o.runAgent(runCtx, agentID, input, logger)
		}(i, subtask)
	}

	results := make([]AgentRunResult, 0, n)
	deadline := time.NewTimer(o.cfg.TaskTimeout)
	defer deadline.Stop()

collect:
	for len(results) < n {
		select {
		case res := <-resultCh:
			results = append(results, res)
		case <-deadline.C:
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	// Mark the stragglers; their goroutines unwind on the canceled context.
	seen := make(map[int]bool, len(results))
	for _, res := range results {
		seen[res.AgentID] = true
	}
	for i := 0; i < n; i++ {
		if seen[i] {
			continue
		}
		o.progress.Set(i, ProgressTimeout)
		metrics.RecordSubtaskResult(string(StatusTimeout))
		results = append(results, AgentRunResult{
			AgentID:       i,
			Status:        StatusTimeout,
			Response:      "",
			ExecutionTime: o.cfg.TaskTimeout,
		})
	}

	sort.Slice(results, func(a, b int) bool {
		return results[a].AgentID < results[b].AgentID
	})
	return results
}

// runAgent executes one subtask with a fresh loop instance, retrying only
// transient failures.
func (o *Orchestrator) runAgent(ctx context.Context, agentID int, input string, logger zerolog.Logger) AgentRunResult {
	o.progress.Set(agentID, ProgressProcessing)
	start := time.Now()

	policy := retryPolicy{attempts: o.cfg.RetryAttempts, backoff: o.cfg.RetryBackoff}
	response, err := runWithRetry(ctx, policy, agent.IsRetryableError, func(ctx context.Context) (string, error) {
		loop, err := o.factory.NewLoop(LoopResearch)
		if err != nil {
			return "", err
		}
		return loop.Run(ctx, input)
	})
	elapsed := time.Since(start)

	if err != nil {
		status := StatusError
		if ctx.Err() != nil {
			status = StatusTimeout
			o.progress.Set(agentID, ProgressTimeout)
		} else {
			o.progress.Set(agentID, ProgressFailed(err.Error()))
		}
		metrics.RecordSubtaskResult(string(status))
		logger.Warn().
			Err(err).
			Int("agent_id", agentID).
			Dur("duration", elapsed).
			Msg("Agent run failed")
		return AgentRunResult{
			AgentID:       agentID,
			Status:        status,
			Response:      fmt.Sprintf("Error: %v", err),
			ExecutionTime: elapsed,
		}
	}

	// The deadline may have passed while the loop was finishing; the result
	// was already abandoned as a timeout, so it must not count as a success.
	if ctx.Err() != nil {
		o.progress.Set(agentID, ProgressTimeout)
		metrics.RecordSubtaskResult(string(StatusTimeout))
		return AgentRunResult{
			AgentID:       agentID,
			Status:        StatusTimeout,
			ExecutionTime: elapsed,
		}
	}

	o.progress.Set(agentID, ProgressCompleted)
	metrics.RecordSubtaskResult(string(StatusSuccess))
	logger.Debug().
		Int("agent_id", agentID).
		Dur("duration", elapsed).
		Msg("Agent run completed")
	return AgentRunResult{
		AgentID:       agentID,
		Status:        StatusSuccess,
		Response:      response,
		ExecutionTime: elapsed,
	}
}

// aggregate reduces the per-agent results into the final answer. With one
// substantive answer it passes through unchanged; with several it asks a
// synthesis loop to merge them; with none it explains what went wrong.
func (o *Orchestrator) aggregate(ctx context.Context, userInput string, results []AgentRunResult, logger zerolog.Logger) string {
	substantive := filterSubstantive(results)
	if len(substantive) == 0 {
		return failureDiagnostic(results, o.cfg.ProviderName)
	}
	if len(substantive) == 1 {
		return substantive[0]
	}
	return o.synthesize(ctx, substantive, logger)
}

// filterSubstantive keeps successful answers worth synthesizing. The strict
// pass drops short answers and error strings; if that leaves nothing, a
// relaxed pass keeps any non-empty success so partial output is not thrown
// away.
func filterSubstantive(results []AgentRunResult) []string {
	strict := make([]string, 0, len(results))
	relaxed := make([]string, 0, len(results))
	for _, res := range results {
		if res.Status != StatusSuccess {
			continue
		}
		trimmed := strings.TrimSpace(res.Response)
		if trimmed == "" {
			continue
		}
		relaxed = append(relaxed, trimmed)
		if len(trimmed) > minSubstantiveLength && !strings.HasPrefix(trimmed, "Error:") {
			strict = append(strict, trimmed)
		}
	}
	if len(strict) > 0 {
		return strict
	}
	return relaxed
}

// synthesize merges multiple agent answers through a tool-less loop. If the
// synthesis model call fails, the labeled answers are concatenated instead
// so the user still sees every finding.
func (o *Orchestrator) synthesize(ctx context.Context, responses []string, logger zerolog.Logger) string {
	var blocks strings.Builder
	for i, response := range responses {
		if i > 0 {
			blocks.WriteString("\n\n")
		}
		fmt.Fprintf(&blocks, "=== AGENT %d RESPONSE ===\n%s", i+1, response)
	}

	prompt := renderTemplate(o.cfg.SynthesisPrompt, map[string]string{
		"{num_responses}":   strconv.Itoa(len(responses)),
		"{agent_responses}": blocks.String(),
	})

	loop, err := o.factory.NewLoop(LoopSynthesis)
	if err == nil {
		var answer string
		answer, err = loop.Run(ctx, prompt)
		if err == nil && strings.TrimSpace(answer) != "" {
			return answer
		}
	}
	logger.Warn().Err(err).Msg("Synthesis failed, concatenating agent responses")
	return concatenateResponses(responses)
}

func concatenateResponses(responses []string) string {
	var out strings.Builder
	for i, response := range responses {
		if i > 0 {
			out.WriteString("\n\n")
		}
		fmt.Fprintf(&out, "=== Agent %d Response ===\n%s", i+1, response)
	}
	return out.String()
}

// failureDiagnostic explains a total failure: the top failure reasons by
// frequency, plus an auth hint when the errors look like credential
// problems.
func failureDiagnostic(results []AgentRunResult, providerName string) string {
	reasons := make(map[string]int)
	order := make([]string, 0, len(results))
	timeouts := 0
	for _, res := range results {
		switch res.Status {
		case StatusTimeout:
			timeouts++
		case StatusError:
			reason := strings.TrimSpace(strings.TrimPrefix(res.Response, "Error:"))
			if reason == "" {
				reason = "unknown error"
			}
			if _, ok := reasons[reason]; !ok {
				order = append(order, reason)
			}
			reasons[reason]++
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return reasons[order[a]] > reasons[order[b]]
	})
	if len(order) > 3 {
		order = order[:3]
	}

	var out strings.Builder
	out.WriteString(allFailedFallback)
	if timeouts > 0 {
		fmt.Fprintf(&out, "\n%d agent(s) timed out.", timeouts)
	}
	for _, reason := range order {
		fmt.Fprintf(&out, "\n%d agent(s) failed: %s", reasons[reason], reason)
	}
	if hint := authFailureHint(order, providerName); hint != "" {
		fmt.Fprintf(&out, "\nHint: %s", hint)
	}
	return out.String()
}

// authFailureHint returns a provider-specific credential hint when any of
// the failure reasons looks like an authentication problem.
func authFailureHint(reasons []string, providerName string) string {
	if providerName == "" {
		return ""
	}
	markers := []string{"401", "unauthorized", "invalid api key", "authentication", "forbidden"}
	for _, reason := range reasons {
		lowered := strings.ToLower(reason)
		for _, marker := range markers {
			if strings.Contains(lowered, marker) {
				return agent.AuthHint(providerName)
			}
		}
	}
	return ""
}

func renderTemplate(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for placeholder, value := range vars {
		pairs = append(pairs, placeholder, value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
