package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mugenyume/make-it-heavy/pkg/agent"
)

var runCmd = &cobra.Command{
	Use:   "run [task]",
	Short: "Run a single agent",
	Long: `Run one tool-calling agent. With a task argument the agent answers it
and exits; without one an interactive prompt loop starts.`,
	RunE: runSingle,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runSingle(cmd *cobra.Command, args []string) error {
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
	loop, err := agent.NewLoop(agent.LoopConfig{
		Provider:              provider,
		Tools:                 registry,
		SystemPrompt:          cfg.Agent.SystemPrompt,
		MaxIterations:         cfg.Agent.MaxIterations,
		NoToolStreakThreshold: cfg.Agent.NoToolStreakThreshold,
		Dedup:                 newDedup(cfg),
		Logger:                log,
	})
	if err != nil {
		return err
	}

	if len(args) > 0 {
		task, err := readTask(args)
		if err != nil {
			return err
		}
		answer, err := loop.Run(cmd.Context(), task)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	}

	info := provider.Info()
	fmt.Fprintf(cmd.OutOrStdout(), "Agent ready (%s, model %s). Type 'quit' to exit.\n", info.DisplayName, info.Model)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			return nil
		}

		answer, err := loop.Run(cmd.Context(), input)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\n", answer)
	}
}
