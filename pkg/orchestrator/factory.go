package orchestrator

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mugenyume/make-it-heavy/pkg/agent"
	"github.com/mugenyume/make-it-heavy/pkg/tools"
)

// FactoryConfig carries the loop settings shared by every spawned agent.
type FactoryConfig struct {
	Provider              agent.Provider
	Registry              *tools.Registry
	SystemPrompt          string
	MaxIterations         int
	NoToolStreakThreshold int
	Dedup                 *agent.Deduplicator
	Logger                zerolog.Logger
}

// AgentFactory builds agent loops backed by a single provider and a shared
// tool registry. Each loop kind gets the tool surface it needs: research
// loops get the full registry, question-generation loops lose the completion
// tool so the model answers inline, and synthesis loops get no tools at all.
type AgentFactory struct {
	cfg FactoryConfig
}

// NewAgentFactory wires a factory around the given provider and registry.
func NewAgentFactory(cfg FactoryConfig) *AgentFactory {
	return &AgentFactory{cfg: cfg}
}

// NewLoop implements LoopFactory.
func (f *AgentFactory) NewLoop(kind LoopKind) (Runner, error) {
	loopCfg := agent.LoopConfig{
		Provider:              f.cfg.Provider,
		Tools:                 f.cfg.Registry,
		SystemPrompt:          f.cfg.SystemPrompt,
		MaxIterations:         f.cfg.MaxIterations,
		NoToolStreakThreshold: f.cfg.NoToolStreakThreshold,
		Dedup:                 f.cfg.Dedup,
		Logger:                f.cfg.Logger,
	}
	switch kind {
	case LoopResearch:
	case LoopQuestion:
		if loopCfg.Tools != nil {
			loopCfg.Tools = loopCfg.Tools.Without(tools.CompletionToolName)
		}
	case LoopSynthesis:
		loopCfg.Tools = tools.NewRegistry()
	default:
		return nil, fmt.Errorf("unknown loop kind %d", kind)
	}
	return agent.NewLoop(loopCfg)
}
