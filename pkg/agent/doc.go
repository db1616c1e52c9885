// Package agent drives a single model conversation to termination through a
// tool-calling loop.
//
// Invariants:
// - Conversations are append-only; messages are never mutated after append.
// - Tool failures are converted to error payloads and never end a run.
// - Provider failures are terminal for the run; retry belongs to the caller.
// - Canonical tool calls always carry a non-empty ID and name.
//
// Usage:
//
//	loop, _ := agent.NewLoop(agent.LoopConfig{
//		Provider:     provider,
//		Tools:        registry,
//		SystemPrompt: "You are a research assistant.",
//	})
//	answer, _ := loop.Run(ctx, "why is the sky blue?")
//	_ = answer
package agent
