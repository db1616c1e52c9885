package cli

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mugenyume/make-it-heavy/internal/config"
	"github.com/mugenyume/make-it-heavy/internal/logger"
	"github.com/mugenyume/make-it-heavy/internal/metrics"
	"github.com/mugenyume/make-it-heavy/pkg/agent"
	"github.com/mugenyume/make-it-heavy/pkg/tools"
)

const version = "0.1.0"

var (
	cfgFile      string
	logLevel     string
	providerFlag string
	modelFlag    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "heavy",
	Short: "Heavy - parallel multi-agent research assistant",
	Long: `Heavy runs LLM agents with web search and task completion tools.
The run command drives a single agent; the heavy command fans a task out to
multiple parallel agents and synthesizes their findings.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "model provider (openai, openrouter, anthropic, ...)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model name override")

	// Version template
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// loadConfig loads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, err
	}
	if providerFlag != "" {
		cfg.Provider.Name = providerFlag
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if modelFlag != "" {
		cfg.Provider.Model = modelFlag
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("HEAVY_PROVIDER_API_KEY")
	}
	return cfg, nil
}

// newDedup builds the content deduplicator from config, falling back to the
// package defaults for unset thresholds.
func newDedup(cfg *config.Config) *agent.Deduplicator {
	dedup := agent.NewDeduplicator()
	if cfg.Agent.DedupMinLength > 0 {
		dedup.MinLength = cfg.Agent.DedupMinLength
	}
	if cfg.Agent.DedupSimilarity > 0 {
		dedup.Threshold = cfg.Agent.DedupSimilarity
	}
	return dedup
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
		File:   cfg.Logging.File,
	})
}

// buildStack wires the provider and the tool registry from the config.
func buildStack(cfg *config.Config) (agent.Provider, *tools.Registry, error) {
	provider, err := agent.NewProvider(agent.ProviderOptions{
		Name:        cfg.Provider.Name,
		APIKey:      cfg.Provider.APIKey,
		BaseURL:     cfg.Provider.BaseURL,
		Model:       cfg.Provider.Model,
		MaxTokens:   cfg.Provider.MaxTokens,
		Temperature: cfg.Provider.Temperature,
	})
	if err != nil {
		return nil, nil, err
	}

	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewCompletionTool()); err != nil {
		return nil, nil, err
	}
	if cfg.Search.Enabled {
		search := tools.NewSearchTool(tools.SearchConfig{
			MaxResults: cfg.Search.MaxResults,
			Timeout:    cfg.Search.Timeout,
			UserAgent:  cfg.Search.UserAgent,
		})
		if err := registry.Register(search); err != nil {
			return nil, nil, err
		}
	}
	return provider, registry, nil
}

// serveMetrics exposes the Prometheus endpoint when enabled.
func serveMetrics(cfg *config.Config, log zerolog.Logger) {
	if !cfg.Metrics.Enabled {
		return
	}
	go func() {
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("Serving metrics")
		if err := http.ListenAndServe(cfg.Metrics.Addr, metrics.Handler()); err != nil {
			log.Warn().Err(err).Msg("Metrics server stopped")
		}
	}()
}

func readTask(args []string) (string, error) {
	task := strings.TrimSpace(strings.Join(args, " "))
	if task == "" {
		return "", fmt.Errorf("a task is required")
	}
	return task, nil
}
