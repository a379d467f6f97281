package model

import (
	"fmt"
	"time"
)

// OperationSync is the only operation that can be interrupted today
const OperationSync = "sync"

// OperationState is the checkpoint of a sync halted on a merge conflict.
// It exists only between the conflict and a successful continue or an abort.
type OperationState struct {
	Operation string `toml:"operation"`
	StackName string `toml:"stack_name"`
	// BranchIndex is the index into the stack's branches blocked on the conflict
	BranchIndex int `toml:"branch_index"`
	// OriginalBranch is checked out again when the sync ends: a branch name,
	// or a commit id when HEAD was detached
	OriginalBranch string `toml:"original_branch"`
	// SyncUpToIndex is set when the sync was scoped to a single branch
	SyncUpToIndex *int `toml:"sync_up_to_index,omitempty"`
	// WorktreePath is set when the conflicted merge runs in a linked worktree
	WorktreePath *string `toml:"worktree_path,omitempty"`
	// Merged lists branches merged before the conflict that still need a push
	Merged []string `toml:"merged,omitempty"`
	Push   bool     `toml:"push"`
	Remote string   `toml:"remote,omitempty"`

	CreatedAt time.Time `toml:"created_at"`
}

// EndIndex is the exclusive upper bound of the cascade for a stack of n branches
func (o *OperationState) EndIndex(n int) int {
	if o.SyncUpToIndex != nil && *o.SyncUpToIndex+1 < n {
		return *o.SyncUpToIndex + 1
	}
	return n
}

// Worktree returns the worktree path, or "" when the merge runs in the main checkout
func (o *OperationState) Worktree() string {
	if o.WorktreePath == nil {
		return ""
	}
	return *o.WorktreePath
}

// Validate checks the fields a resumable state needs
func (o *OperationState) Validate() error {
	if o.Operation != OperationSync {
		return fmt.Errorf("unknown operation %q", o.Operation)
	}
	if o.StackName == "" {
		return fmt.Errorf("stack name is missing")
	}
	if o.BranchIndex < 0 {
		return fmt.Errorf("branch index %d is negative", o.BranchIndex)
	}
	if o.OriginalBranch == "" {
		return fmt.Errorf("original branch is missing")
	}
	if o.SyncUpToIndex != nil && *o.SyncUpToIndex < o.BranchIndex {
		return fmt.Errorf("sync bound %d is below branch index %d", *o.SyncUpToIndex, o.BranchIndex)
	}
	return nil
}
