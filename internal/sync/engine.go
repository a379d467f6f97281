package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/model"
	"gitstack.dev/gitstack/internal/store"
)

// DefaultRemote is pushed to when Options.Remote is empty
const DefaultRemote = "origin"

// ActiveStackResolver picks the stack to sync when none is named
type ActiveStackResolver interface {
	GetActiveStackName(ctx context.Context, repo string) (string, error)
}

// Options controls a sync
type Options struct {
	// Stack defaults to the active stack
	Stack string
	// Branch limits the sync to a single branch of the stack
	Branch string
	Remote string
	// Push pushes every merged branch once the cascade completes
	Push bool
}

// Engine runs, resumes and aborts syncs
type Engine struct {
	store     store.Store
	inv       git.Invoker
	active    ActiveStackResolver
	worktrees *git.WorktreeDirectory
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for step and warning records
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorktrees replaces the worktree lookup
func WithWorktrees(w *git.WorktreeDirectory) Option {
	return func(e *Engine) {
		e.worktrees = w
	}
}

// WithClock overrides the checkpoint timestamp source
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new Engine
func NewEngine(st store.Store, inv git.Invoker, active ActiveStackResolver, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		inv:       inv,
		active:    active,
		worktrees: git.NewWorktreeDirectory(inv, ""),
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync merges each branch's parent into it, bottom to top.
// It refuses to start while another sync is halted on a conflict.
func (e *Engine) Sync(ctx context.Context, repo string, opts Options) (*Result, error) {
	pending, err := e.store.LoadOperationState(ctx, repo)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, gserrors.NewOperationInProgressError(pending.StackName, e.blockedBranch(ctx, repo, pending))
	}

	name := opts.Stack
	if name == "" {
		if name, err = e.active.GetActiveStackName(ctx, repo); err != nil {
			return nil, err
		}
	}
	s, err := e.store.LoadStack(ctx, repo, name)
	if err != nil {
		return nil, err
	}

	start, end := 0, len(s.Branches)
	var upTo *int
	if opts.Branch != "" {
		idx := s.IndexOf(opts.Branch)
		if idx < 0 {
			return nil, gserrors.NewBranchNotInStackError(opts.Branch, s.Name)
		}
		start, end = idx, idx+1
		upTo = &idx
	}

	main := git.NewBackend(e.inv, repo)
	original, _, err := main.CurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	remote := opts.Remote
	if remote == "" {
		remote = DefaultRemote
	}

	c := &cascade{
		engine:   e,
		repo:     repo,
		stack:    s,
		main:     main,
		original: original,
		upTo:     upTo,
		push:     opts.Push,
		remote:   remote,
		result:   &Result{Stack: s.Name, Trunk: s.Trunk, Branches: []BranchResult{}},
	}
	e.logger.Debug("starting sync", "stack", s.Name, "from", start, "to", end, "original", original)
	return c.run(ctx, start, end)
}

// Continue resumes a sync halted on a conflict once the conflict is resolved and staged
func (e *Engine) Continue(ctx context.Context, repo string) (*Result, error) {
	state, err := e.store.LoadOperationState(ctx, repo)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, gserrors.ErrNoOperationInProgress
	}

	s, err := e.store.LoadStack(ctx, repo, state.StackName)
	if err != nil {
		return nil, err
	}
	if state.BranchIndex >= len(s.Branches) {
		return nil, gserrors.NewCorruptStateError("operation state",
			fmt.Errorf("branch index %d is outside stack %s with %d branches", state.BranchIndex, s.Name, len(s.Branches)))
	}

	branch := s.Branches[state.BranchIndex].Name
	dir := repo
	if wt := state.Worktree(); wt != "" {
		if !git.Exists(wt) {
			return nil, fmt.Errorf("worktree %s holding %s no longer exists; run 'gitstack abort'", wt, branch)
		}
		dir = wt
	}
	b := git.NewBackend(e.inv, dir)

	c := &cascade{
		engine:   e,
		repo:     repo,
		stack:    s,
		main:     git.NewBackend(e.inv, repo),
		original: state.OriginalBranch,
		upTo:     state.SyncUpToIndex,
		push:     state.Push,
		remote:   state.Remote,
		merged:   append([]string(nil), state.Merged...),
		result:   &Result{Stack: s.Name, Trunk: s.Trunk, Branches: []BranchResult{}},
	}
	if c.remote == "" {
		c.remote = DefaultRemote
	}

	outcome, err := b.MergeContinue(ctx)
	if err != nil {
		return nil, err
	}
	if outcome == git.MergeConflict {
		files, ferr := b.UnmergedFiles(ctx)
		if ferr != nil {
			e.logger.Warn("failed to list conflicting files", "branch", branch, "error", ferr)
			files = []string{}
		}
		c.result.Branches = append(c.result.Branches, BranchResult{
			Name:          branch,
			Parent:        s.ParentOf(state.BranchIndex),
			Status:        StatusConflict,
			ConflictFiles: files,
		})
		c.result.HasConflict = true
		return c.result, nil
	}

	// The merge may have been abandoned outside gitstack; redo the step if so.
	upToDate, err := c.upToDate(ctx, state.BranchIndex)
	if err != nil {
		return nil, err
	}
	if upToDate {
		c.recordMerged(ctx, state.BranchIndex)
	} else {
		e.logger.Warn("resolved merge not found on branch, merging again", "branch", branch)
		halted, err := c.step(ctx, state.BranchIndex)
		if err != nil {
			return nil, err
		}
		if halted {
			return c.result, nil
		}
	}

	return c.run(ctx, state.BranchIndex+1, state.EndIndex(len(s.Branches)))
}

// Abort cancels a halted sync: the conflicted merge is aborted wherever it
// runs, the original branch is checked out and the checkpoint is removed.
// Without a checkpoint it aborts a merge in progress in the main working copy.
func (e *Engine) Abort(ctx context.Context, repo string) (*AbortResult, error) {
	main := git.NewBackend(e.inv, repo)

	state, err := e.store.LoadOperationState(ctx, repo)
	if err != nil {
		if !errors.Is(err, gserrors.ErrCorruptState) {
			return nil, err
		}
		e.logger.Warn("discarding unreadable sync checkpoint", "error", err)
		state = nil
		if err := e.store.ClearOperationState(ctx, repo); err != nil {
			return nil, err
		}
	}

	result := &AbortResult{}
	if state == nil {
		inProgress, err := main.IsMergeInProgress(ctx)
		if err != nil {
			return nil, err
		}
		if !inProgress {
			return nil, gserrors.ErrNoOperationInProgress
		}
		if err := main.MergeAbort(ctx); err != nil {
			return nil, err
		}
		result.AbortedMerge = true
		return result, nil
	}

	result.Stack = state.StackName
	result.OriginalBranch = state.OriginalBranch

	if wt := state.Worktree(); wt != "" && git.Exists(wt) {
		e.abortMergeIn(ctx, git.NewBackend(e.inv, wt), result)
	}
	e.abortMergeIn(ctx, main, result)

	checkoutErr := main.Checkout(ctx, state.OriginalBranch)
	if err := e.store.ClearOperationState(ctx, repo); err != nil {
		return nil, err
	}
	if checkoutErr != nil {
		return result, fmt.Errorf("sync aborted but failed to return to %s: %w", state.OriginalBranch, checkoutErr)
	}
	return result, nil
}

func (e *Engine) abortMergeIn(ctx context.Context, b *git.Backend, result *AbortResult) {
	inProgress, err := b.IsMergeInProgress(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", b.Dir(), err))
		return
	}
	if !inProgress {
		return
	}
	if err := b.MergeAbort(ctx); err != nil {
		e.logger.Warn("merge abort failed", "dir", b.Dir(), "error", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", b.Dir(), err))
		return
	}
	result.AbortedMerge = true
}

// Status returns the halted sync, or nil when none is pending
func (e *Engine) Status(ctx context.Context, repo string) (*Pending, error) {
	state, err := e.store.LoadOperationState(ctx, repo)
	if err != nil || state == nil {
		return nil, err
	}

	p := &Pending{State: state, ConflictFiles: []string{}}
	s, err := e.store.LoadStack(ctx, repo, state.StackName)
	if err == nil && state.BranchIndex < len(s.Branches) {
		p.Branch = s.Branches[state.BranchIndex].Name
		p.Parent = s.ParentOf(state.BranchIndex)
	}

	dir := repo
	if wt := state.Worktree(); wt != "" && git.Exists(wt) {
		dir = wt
	}
	if files, err := git.NewBackend(e.inv, dir).UnmergedFiles(ctx); err == nil {
		p.ConflictFiles = files
	}
	return p, nil
}

func (e *Engine) blockedBranch(ctx context.Context, repo string, state *model.OperationState) string {
	s, err := e.store.LoadStack(ctx, repo, state.StackName)
	if err != nil || state.BranchIndex >= len(s.Branches) {
		return fmt.Sprintf("branch #%d", state.BranchIndex)
	}
	return s.Branches[state.BranchIndex].Name
}
