package stack

import (
	"context"
	"errors"
	"fmt"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/model"
)

// CommitOptions selects where and how staged changes are committed
type CommitOptions struct {
	// Branch is the target; empty means the top of the active stack, or the
	// checked-out branch when there is no stack to route to
	Branch  string
	Message string
	Amend   bool
}

// CommitResult describes a routed commit
type CommitResult struct {
	Branch   string
	CommitID string
	// BranchesAreStale is set when branches above the target need a sync
	BranchesAreStale bool
	StaleBranches    []string
}

// Commit records the staged changes on a branch of the active stack.
// The target branch is checked out first when it is not the current branch;
// branches above it are reported as stale and are not synced. A target held by
// a linked worktree is refused with a BranchInWorktreeError.
func (m *Manager) Commit(ctx context.Context, repo string, opts CommitOptions) (*CommitResult, error) {
	if opts.Message == "" && !opts.Amend {
		return nil, gserrors.NewValidationError("message", "", "a commit message is required")
	}

	b := m.backend(repo)
	s, target, err := m.resolveCommitTarget(ctx, repo, opts.Branch)
	if err != nil {
		return nil, err
	}

	if err := m.ensureStaged(ctx, b, opts.Amend); err != nil {
		return nil, err
	}

	current, _, err := b.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}
	if current != target {
		wt, err := m.linkedWorktree(ctx, repo, target)
		if err != nil {
			return nil, err
		}
		if wt != "" {
			return nil, gserrors.NewBranchInWorktreeError(target, wt)
		}
		m.logger.Debug("checking out commit target", "from", current, "to", target)
		if err := b.Checkout(ctx, target); err != nil {
			return nil, fmt.Errorf("failed to switch to %s for commit: %w", target, err)
		}
		// the index may match the target's tree once switched
		if err := m.ensureStaged(ctx, b, opts.Amend); err != nil {
			return nil, err
		}
	}

	id, err := b.Commit(ctx, git.CommitOptions{Message: opts.Message, Amend: opts.Amend})
	if err != nil {
		return nil, err
	}

	result := &CommitResult{Branch: target, CommitID: id}
	if s != nil {
		if idx := s.IndexOf(target); idx >= 0 && idx < len(s.Branches)-1 {
			result.BranchesAreStale = true
			result.StaleBranches = s.BranchNames()[idx+1:]
		}
	}
	return result, nil
}

func (m *Manager) ensureStaged(ctx context.Context, b *git.Backend, amend bool) error {
	if amend {
		return nil
	}
	staged, err := b.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if !staged {
		return gserrors.ErrNoStagedChanges
	}
	return nil
}

// resolveCommitTarget returns the active stack (nil when there is none) and the target branch
func (m *Manager) resolveCommitTarget(ctx context.Context, repo, branch string) (*model.Stack, string, error) {
	s, err := m.ActiveStack(ctx, repo)
	if err != nil {
		if branch != "" || !errors.Is(err, gserrors.ErrNoStacks) {
			return nil, "", err
		}
		s = nil
	}

	switch {
	case branch != "":
		if !s.Contains(branch) {
			return nil, "", gserrors.NewBranchNotInStackError(branch, s.Name)
		}
		return s, branch, nil
	case s != nil && len(s.Branches) > 0:
		top, _ := s.Top()
		return s, top.Name, nil
	default:
		current, _, err := m.backend(repo).CurrentBranch(ctx)
		if err != nil {
			return nil, "", err
		}
		return s, current, nil
	}
}
