package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mugenyume/make-it-heavy/pkg/orchestrator"
)

const progressPollInterval = 500 * time.Millisecond

var heavyCmd = &cobra.Command{
	Use:   "heavy [task]",
	Short: "Run the task across parallel agents",
	Long: `Decompose the task into research questions, run one agent per question
in parallel, and synthesize their findings into a single answer. A live
status line per agent shows progress while the agents work.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHeavy,
}

func init() {
	rootCmd.AddCommand(heavyCmd)
}

func runHeavy(cmd *cobra.Command, args []string) error {
	task, err := readTask(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	serveMetrics(cfg, log)

	provider, registry, err := buildStack(cfg)
	if err != nil {
		return err
	}

	factory := orchestrator.NewAgentFactory(orchestrator.FactoryConfig{
		Provider:              provider,
		Registry:              registry,
		SystemPrompt:          cfg.Agent.SystemPrompt,
		MaxIterations:         cfg.Agent.MaxIterations,
		NoToolStreakThreshold: cfg.Agent.NoToolStreakThreshold,
		Dedup:                 newDedup(cfg),
		Logger:                log,
	})
	orch, err := orchestrator.New(orchestrator.Config{
		AgentCount:          cfg.Orchestrator.AgentCount,
		MaxConcurrency:      cfg.Orchestrator.MaxConcurrency,
		TaskTimeout:         cfg.Orchestrator.TaskTimeout,
		RetryAttempts:       cfg.Orchestrator.RetryAttempts,
		RetryBackoff:        cfg.Orchestrator.RetryBackoff,
		AggregationStrategy: cfg.Orchestrator.AggregationStrategy,
		QuestionPrompt:      cfg.Orchestrator.QuestionPrompt,
		SynthesisPrompt:     cfg.Orchestrator.SynthesisPrompt,
		ProviderName:        cfg.Provider.Name,
	}, factory, log)
	if err != nil {
		return err
	}

	info := provider.Info()
	fmt.Fprintf(cmd.OutOrStdout(), "Running %d agents on %s (model %s)\n\n", orch.AgentCount(), info.DisplayName, info.Model)

	done := make(chan struct{})
	answer := ""
	var runErr error
	go func() {
		defer close(done)
		answer, runErr = orch.Orchestrate(cmd.Context(), task)
	}()

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()
	lines := 0
	for {
		select {
		case <-done:
			lines = renderProgress(cmd, orch.GetProgressStatus(), lines)
			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", answer)
			return nil
		case <-ticker.C:
			lines = renderProgress(cmd, orch.GetProgressStatus(), lines)
		}
	}
}

// renderProgress redraws the per-agent status block in place and returns the
// number of lines drawn.
func renderProgress(cmd *cobra.Command, status map[int]string, previousLines int) int {
	out := cmd.OutOrStdout()
	if previousLines > 0 {
		fmt.Fprintf(out, "\033[%dA", previousLines)
	}

	ids := make([]int, 0, len(status))
	for id := range status {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		label := status[id]
		bar := strings.Repeat(":", 40)
		if label == orchestrator.ProgressCompleted {
			bar = strings.Repeat("=", 40)
		}
		fmt.Fprintf(out, "\033[KAGENT %02d  %-14s %s\n", id+1, label, bar)
	}
	return len(ids)
}
