// Package orchestrator decomposes a research question into subtasks, fans
// them out to independent agent loops running in parallel, and synthesizes
// their answers into one result.
//
// Invariants:
// - Decomposition always yields exactly the configured number of subtasks.
// - Agents share no mutable state except the progress board.
// - Aggregation processes results in agent ID order.
// - Total failure is reported as a returned diagnostic string, not an error.
//
// Usage:
//
//	orch, _ := orchestrator.New(orchestrator.Config{AgentCount: 4}, factory, logger)
//	answer, _ := orch.Orchestrate(ctx, "what changed in HTTP/3?")
//	_ = answer
package orchestrator
