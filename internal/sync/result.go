package sync

import "gitstack.dev/gitstack/internal/model"

// BranchStatus is the outcome of one cascade step
type BranchStatus int

const (
	// StatusUpToDate means the parent tip was already an ancestor of the branch
	StatusUpToDate BranchStatus = iota
	// StatusMerged means the parent was merged into the branch
	StatusMerged
	// StatusConflict means the merge stopped on conflicts
	StatusConflict
)

func (s BranchStatus) String() string {
	switch s {
	case StatusUpToDate:
		return "up to date"
	case StatusMerged:
		return "merged"
	case StatusConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// BranchResult reports one branch of a sync
type BranchResult struct {
	Name   string
	Parent string
	Status BranchStatus
	// Commits is the number of commits on the branch that its parent lacks
	Commits int
	// ConflictFiles is only set for StatusConflict
	ConflictFiles []string
}

// Result reports a sync or continue. Branches above a conflict are absent.
type Result struct {
	Stack        string
	Trunk        string
	Branches     []BranchResult
	HasConflict  bool
	Pushed       []string
	PushWarnings []string
}

// Conflict returns the conflicted branch, if any
func (r *Result) Conflict() (BranchResult, bool) {
	for _, b := range r.Branches {
		if b.Status == StatusConflict {
			return b, true
		}
	}
	return BranchResult{}, false
}

// AbortResult reports what an abort cleaned up
type AbortResult struct {
	// Stack is empty when there was no checkpoint and only a raw merge was aborted
	Stack          string
	OriginalBranch string
	AbortedMerge   bool
	// Warnings collects merge aborts that failed; the checkpoint is cleared anyway
	Warnings []string
}

// Pending describes a sync halted on a conflict
type Pending struct {
	State         *model.OperationState
	Branch        string
	Parent        string
	ConflictFiles []string
}
