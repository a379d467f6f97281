package stack

import (
	"context"
	"errors"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/model"
)

// Listing is the set of stacks in a repository
type Listing struct {
	Names []string
	// Active is "" when no stack is active
	Active string
}

// List returns every stack name and the active one.
// It applies the single-stack activation rule but does not fail when the
// active stack is ambiguous.
func (m *Manager) List(ctx context.Context, repo string) (*Listing, error) {
	names, err := m.store.ListStackNames(ctx, repo)
	if err != nil {
		return nil, err
	}
	active, err := m.GetActiveStackName(ctx, repo)
	if err != nil && !errors.Is(err, gserrors.ErrNoStacks) && !errors.Is(err, gserrors.ErrAmbiguousActiveStack) {
		return nil, err
	}
	return &Listing{Names: names, Active: active}, nil
}

// Show loads stack name, or the active stack when name is empty
func (m *Manager) Show(ctx context.Context, repo, name string) (*model.Stack, error) {
	if name == "" {
		return m.ActiveStack(ctx, repo)
	}
	return m.store.LoadStack(ctx, repo, name)
}

// SetPullRequest records the pull request of a branch in the active stack.
// A nil pr clears it.
func (m *Manager) SetPullRequest(ctx context.Context, repo, branch string, pr *model.PullRequest) (*model.Stack, error) {
	if pr != nil {
		if pr.Number <= 0 {
			return nil, gserrors.NewValidationError("pr number", "", "must be positive")
		}
		if !pr.State.Valid() {
			return nil, gserrors.NewValidationError("pr state", string(pr.State), "must be open, merged or closed")
		}
	}
	s, err := m.ActiveStack(ctx, repo)
	if err != nil {
		return nil, err
	}
	idx := s.IndexOf(branch)
	if idx < 0 {
		return nil, gserrors.NewBranchNotInStackError(branch, s.Name)
	}

	s.Branches[idx].PR = pr
	if err := m.save(ctx, repo, s); err != nil {
		return nil, err
	}
	return s, nil
}
