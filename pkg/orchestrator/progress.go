package orchestrator

import (
	"fmt"
	"sync"
)

// Progress labels for the live agent status board.
const (
	ProgressQueued     = "QUEUED"
	ProgressProcessing = "PROCESSING..."
	ProgressCompleted  = "COMPLETED"
	ProgressTimeout    = "TIMEOUT"
)

// ProgressFailed renders the failure label for a reason.
func ProgressFailed(reason string) string {
	return fmt.Sprintf("FAILED:%s", reason)
}

// progressBoard is the only mutable state shared across concurrent agents.
// All writes go through Set; reads take a full-copy snapshot.
type progressBoard struct {
	mu     sync.RWMutex
	status map[int]string
}

func newProgressBoard() *progressBoard {
	return &progressBoard{status: make(map[int]string)}
}

// Reset discards all state and marks agents 0..n-1 as queued.
func (b *progressBoard) Reset(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = make(map[int]string, n)
	for i := 0; i < n; i++ {
		b.status[i] = ProgressQueued
	}
}

// Set updates one agent's status label. TIMEOUT is terminal for a run: once
// an agent is abandoned at the deadline, late writes from its still-running
// goroutine are dropped.
func (b *progressBoard) Set(agentID int, label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status[agentID] == ProgressTimeout {
		return
	}
	b.status[agentID] = label
}

// Snapshot returns a point-in-time copy of the board.
func (b *progressBoard) Snapshot() map[int]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snapshot := make(map[int]string, len(b.status))
	for id, label := range b.status {
		snapshot[id] = label
	}
	return snapshot
}
