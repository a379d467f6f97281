package stack

import (
	"context"
	"fmt"
	"slices"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/model"
)

// Init creates a stack named name and makes it active.
// The trunk is base when it names an existing branch, otherwise the checked-out
// branch (or the HEAD commit when detached).
func (m *Manager) Init(ctx context.Context, repo, name, base string) (*model.Stack, error) {
	if err := model.ValidateStackName(name); err != nil {
		return nil, err
	}

	b := m.backend(repo)
	isRepo, err := b.IsRepository(ctx)
	if err != nil {
		return nil, err
	}
	if !isRepo {
		return nil, fmt.Errorf("%s: %w", repo, gserrors.ErrNotGitRepository)
	}

	exists, err := m.store.StackExists(ctx, repo, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("stack %s: %w", name, gserrors.ErrStackExists)
	}

	trunk := ""
	if base != "" {
		ok, err := b.BranchExists(ctx, base)
		if err != nil {
			return nil, err
		}
		if ok {
			trunk = base
		} else {
			m.logger.Warn("base branch does not exist, using current branch", "base", base)
		}
	}
	if trunk == "" {
		current, detached, err := b.CurrentBranch(ctx)
		if err != nil {
			return nil, err
		}
		if detached {
			m.logger.Warn("HEAD is detached, using commit as trunk", "commit", current)
		}
		trunk = current
	}

	s := model.NewStack(name, trunk, m.now())
	if err := m.store.SaveStack(ctx, repo, s); err != nil {
		return nil, fmt.Errorf("failed to save stack %s: %w", name, err)
	}
	if err := m.store.SaveActive(ctx, repo, name); err != nil {
		return nil, err
	}
	m.logger.Debug("initialized stack", "stack", name, "trunk", trunk)
	return s, nil
}

// Push appends branch to the top of the active stack and checks it out.
// With create the branch is created from HEAD first. A branch already checked
// out in a linked worktree is appended without a checkout.
func (m *Manager) Push(ctx context.Context, repo, branch string, create bool) (*model.Stack, error) {
	if branch == "" {
		return nil, gserrors.NewValidationError(gserrors.FieldBranch, "", "branch name is required")
	}
	s, err := m.ActiveStack(ctx, repo)
	if err != nil {
		return nil, err
	}
	if s.Contains(branch) {
		return nil, fmt.Errorf("%s in stack %s: %w", branch, s.Name, gserrors.ErrBranchAlreadyInStack)
	}

	b := m.backend(repo)
	exists, err := b.BranchExists(ctx, branch)
	if err != nil {
		return nil, err
	}
	if create {
		if exists {
			return nil, fmt.Errorf("%s: %w", branch, gserrors.ErrBranchExists)
		}
		if err := b.CreateAndCheckout(ctx, branch); err != nil {
			return nil, err
		}
	} else {
		if !exists {
			return nil, gserrors.NewBranchNotFoundError(branch)
		}
		wt, err := m.linkedWorktree(ctx, repo, branch)
		if err != nil {
			return nil, err
		}
		if wt != "" {
			m.logger.Debug("branch is checked out in a linked worktree, not switching", "branch", branch, "worktree", wt)
		} else if err := b.Checkout(ctx, branch); err != nil {
			return nil, err
		}
	}

	s.Branches = append(s.Branches, model.Branch{Name: branch})
	if err := m.save(ctx, repo, s); err != nil {
		return nil, err
	}
	m.logger.Debug("pushed branch", "stack", s.Name, "branch", branch, "created", create)
	return s, nil
}

// Pop removes and returns the top branch of the active stack.
// The branch itself is left in the repository.
func (m *Manager) Pop(ctx context.Context, repo string) (model.Branch, error) {
	s, err := m.ActiveStack(ctx, repo)
	if err != nil {
		return model.Branch{}, err
	}
	top, ok := s.Top()
	if !ok {
		return model.Branch{}, fmt.Errorf("stack %s: %w", s.Name, gserrors.ErrEmptyStack)
	}
	if err := m.ensureNoSyncInProgress(ctx, repo, s.Name); err != nil {
		return model.Branch{}, err
	}

	s.Branches = s.Branches[:len(s.Branches)-1]
	if err := m.save(ctx, repo, s); err != nil {
		return model.Branch{}, err
	}
	return top, nil
}

// Drop removes branch from any position of the active stack
func (m *Manager) Drop(ctx context.Context, repo, branch string) (*model.Stack, error) {
	s, err := m.ActiveStack(ctx, repo)
	if err != nil {
		return nil, err
	}
	idx := s.IndexOf(branch)
	if idx < 0 {
		return nil, gserrors.NewBranchNotInStackError(branch, s.Name)
	}
	if err := m.ensureNoSyncInProgress(ctx, repo, s.Name); err != nil {
		return nil, err
	}

	s.Branches = slices.Delete(s.Branches, idx, idx+1)
	if err := m.save(ctx, repo, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Shift inserts an existing branch at the bottom of the active stack, directly on the trunk
func (m *Manager) Shift(ctx context.Context, repo, branch string) (*model.Stack, error) {
	if branch == "" {
		return nil, gserrors.NewValidationError(gserrors.FieldBranch, "", "branch name is required")
	}
	s, err := m.ActiveStack(ctx, repo)
	if err != nil {
		return nil, err
	}
	if s.Contains(branch) {
		return nil, fmt.Errorf("%s in stack %s: %w", branch, s.Name, gserrors.ErrBranchAlreadyInStack)
	}
	exists, err := m.backend(repo).BranchExists(ctx, branch)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, gserrors.NewBranchNotFoundError(branch)
	}
	if err := m.ensureNoSyncInProgress(ctx, repo, s.Name); err != nil {
		return nil, err
	}

	s.Branches = slices.Insert(s.Branches, 0, model.Branch{Name: branch})
	if err := m.save(ctx, repo, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes the definition of stack name. Its branches are kept.
// The active marker is cleared when it pointed at name.
func (m *Manager) Delete(ctx context.Context, repo, name string) error {
	if err := model.ValidateStackName(name); err != nil {
		return err
	}
	exists, err := m.store.StackExists(ctx, repo, name)
	if err != nil {
		return err
	}
	if !exists {
		return gserrors.NewStackNotFoundError(name)
	}
	if err := m.ensureNoSyncInProgress(ctx, repo, name); err != nil {
		return err
	}

	if err := m.store.DeleteStack(ctx, repo, name); err != nil {
		return err
	}

	active, err := m.store.LoadActive(ctx, repo)
	if err != nil {
		return err
	}
	if active == name {
		return m.ClearActiveStack(ctx, repo)
	}
	return nil
}
