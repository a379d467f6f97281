package stack

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/model"
	"gitstack.dev/gitstack/internal/store"
)

// Manager owns the stack definitions of repositories
type Manager struct {
	store     store.Store
	inv       git.Invoker
	worktrees *git.WorktreeDirectory
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger used for debug and warning records
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithWorktrees replaces the worktree lookup
func WithWorktrees(w *git.WorktreeDirectory) Option {
	return func(m *Manager) {
		if w != nil {
			m.worktrees = w
		}
	}
}

// WithClock overrides the time source for createdAt/updatedAt
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Manager
func NewManager(st store.Store, inv git.Invoker, opts ...Option) *Manager {
	m := &Manager{
		store:     st,
		inv:       inv,
		worktrees: git.NewWorktreeDirectory(inv, ""),
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying stack store
func (m *Manager) Store() store.Store {
	return m.store
}

func (m *Manager) backend(repo string) *git.Backend {
	return git.NewBackend(m.inv, repo)
}

// linkedWorktree returns the path of another worktree holding branch, or "" when none does
func (m *Manager) linkedWorktree(ctx context.Context, repo, branch string) (string, error) {
	path, ok, err := m.worktrees.PathFor(ctx, repo, branch)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return path, nil
}

// GetActiveStackName returns the active stack of repo.
// When no marker is set and exactly one stack exists, that stack becomes active
// and the marker is written.
func (m *Manager) GetActiveStackName(ctx context.Context, repo string) (string, error) {
	name, err := m.store.LoadActive(ctx, repo)
	if err != nil {
		return "", err
	}
	if name != "" {
		return name, nil
	}

	names, err := m.store.ListStackNames(ctx, repo)
	if err != nil {
		return "", err
	}
	switch len(names) {
	case 0:
		return "", gserrors.ErrNoStacks
	case 1:
		m.logger.Debug("activating only stack", "stack", names[0])
		if err := m.store.SaveActive(ctx, repo, names[0]); err != nil {
			return "", err
		}
		return names[0], nil
	default:
		return "", gserrors.NewAmbiguousActiveStackError(names)
	}
}

// SetActiveStack marks name as the active stack
func (m *Manager) SetActiveStack(ctx context.Context, repo, name string) error {
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
	return m.store.SaveActive(ctx, repo, name)
}

// ClearActiveStack removes the active marker. It is a no-op when none is set.
func (m *Manager) ClearActiveStack(ctx context.Context, repo string) error {
	return m.store.SaveActive(ctx, repo, "")
}

// ActiveStack loads the definition of the active stack
func (m *Manager) ActiveStack(ctx context.Context, repo string) (*model.Stack, error) {
	name, err := m.GetActiveStackName(ctx, repo)
	if err != nil {
		return nil, err
	}
	return m.store.LoadStack(ctx, repo, name)
}

// save bumps updatedAt and persists the definition
func (m *Manager) save(ctx context.Context, repo string, s *model.Stack) error {
	s.Touch(m.now())
	if err := m.store.SaveStack(ctx, repo, s); err != nil {
		return fmt.Errorf("failed to save stack %s: %w", s.Name, err)
	}
	return nil
}

// ensureNoSyncInProgress refuses edits that would shift the branch indices a
// halted sync of the same stack resumes from.
func (m *Manager) ensureNoSyncInProgress(ctx context.Context, repo, stackName string) error {
	state, err := m.store.LoadOperationState(ctx, repo)
	if err != nil {
		return err
	}
	if state == nil || state.StackName != stackName {
		return nil
	}
	blocked := ""
	if s, err := m.store.LoadStack(ctx, repo, stackName); err == nil && state.BranchIndex < len(s.Branches) {
		blocked = s.Branches[state.BranchIndex].Name
	}
	return gserrors.NewOperationInProgressError(stackName, blocked)
}
