package sync

import (
	"context"
	"fmt"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/model"
)

// cascade is one pass over a range of a stack's branches
type cascade struct {
	engine   *Engine
	repo     string
	stack    *model.Stack
	main     *git.Backend
	original string
	upTo     *int
	push     bool
	remote   string
	// merged collects branches to push once the cascade completes
	merged []string
	result *Result
}

// run processes branches [start, end) and finishes the sync unless a step halts on a conflict.
// On a hard error the original branch is checked out again when possible.
func (c *cascade) run(ctx context.Context, start, end int) (*Result, error) {
	for i := start; i < end; i++ {
		halted, err := c.step(ctx, i)
		if err != nil {
			c.restoreAfterError(ctx)
			return nil, err
		}
		if halted {
			return c.result, nil
		}
	}
	if err := c.finish(ctx); err != nil {
		return nil, err
	}
	return c.result, nil
}

// step merges the parent of branch i into it. halted is true when the merge
// stopped on conflicts and the checkpoint was written.
func (c *cascade) step(ctx context.Context, i int) (halted bool, err error) {
	branch := c.stack.Branches[i].Name
	parent := c.stack.ParentOf(i)
	log := c.engine.logger.With("stack", c.stack.Name, "branch", branch, "parent", parent)

	exists, err := c.main.BranchExists(ctx, branch)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("stack %s references a branch that no longer exists (drop it with 'gitstack drop %s'): %w",
			c.stack.Name, branch, gserrors.NewBranchNotFoundError(branch))
	}

	upToDate, err := c.upToDate(ctx, i)
	if err != nil {
		return false, err
	}
	if upToDate {
		log.Debug("branch up to date")
		c.record(ctx, i, StatusUpToDate, nil)
		return false, nil
	}

	b := c.main
	wtPath, inWorktree, err := c.engine.worktrees.PathFor(ctx, c.repo, branch)
	if err != nil {
		return false, err
	}
	if inWorktree {
		log.Debug("merging in linked worktree", "worktree", wtPath)
		b = git.NewBackend(c.engine.inv, wtPath)
	} else if err := c.main.Checkout(ctx, branch); err != nil {
		return false, err
	}

	outcome, err := b.Merge(ctx, parent)
	if err != nil {
		return false, err
	}
	if outcome == git.MergeDone {
		log.Debug("merged parent")
		c.recordMerged(ctx, i)
		return false, nil
	}

	files, ferr := b.UnmergedFiles(ctx)
	if ferr != nil {
		log.Warn("failed to list conflicting files", "error", ferr)
		files = []string{}
	}
	log.Debug("merge conflict", "files", files)
	c.record(ctx, i, StatusConflict, files)
	c.result.HasConflict = true

	state := &model.OperationState{
		Operation:      model.OperationSync,
		StackName:      c.stack.Name,
		BranchIndex:    i,
		OriginalBranch: c.original,
		SyncUpToIndex:  c.upTo,
		Merged:         append([]string(nil), c.merged...),
		Push:           c.push,
		Remote:         c.remote,
		CreatedAt:      c.engine.now(),
	}
	if inWorktree {
		state.WorktreePath = &wtPath
	}
	if err := c.engine.store.SaveOperationState(ctx, c.repo, state); err != nil {
		return true, fmt.Errorf("merge of %s into %s stopped on conflicts but the sync could not be checkpointed: %w",
			parent, branch, err)
	}
	return true, nil
}

// upToDate reports whether the parent tip of branch i is already merged
func (c *cascade) upToDate(ctx context.Context, i int) (bool, error) {
	branch := c.stack.Branches[i].Name
	parent := c.stack.ParentOf(i)

	tip, err := c.main.RevParse(ctx, parent)
	if err != nil {
		return false, fmt.Errorf("failed to resolve parent %s of %s: %w", parent, branch, err)
	}
	base, err := c.main.MergeBase(ctx, parent, branch)
	if err != nil {
		return false, err
	}
	return base == tip, nil
}

func (c *cascade) recordMerged(ctx context.Context, i int) {
	c.merged = append(c.merged, c.stack.Branches[i].Name)
	c.record(ctx, i, StatusMerged, nil)
}

func (c *cascade) record(ctx context.Context, i int, status BranchStatus, files []string) {
	branch := c.stack.Branches[i].Name
	parent := c.stack.ParentOf(i)
	br := BranchResult{Name: branch, Parent: parent, Status: status, ConflictFiles: files}
	if status != StatusConflict {
		// Display only; a failed count is reported as zero.
		if n, err := c.main.CountCommits(ctx, parent, branch); err == nil {
			br.Commits = n
		}
	}
	c.result.Branches = append(c.result.Branches, br)
}

// finish pushes merged branches, returns to the original branch and drops the checkpoint
func (c *cascade) finish(ctx context.Context) error {
	if c.push {
		for _, branch := range c.merged {
			if err := c.main.Push(ctx, c.remote, branch); err != nil {
				c.engine.logger.Warn("push failed", "branch", branch, "remote", c.remote, "error", err)
				c.result.PushWarnings = append(c.result.PushWarnings, err.Error())
				continue
			}
			c.result.Pushed = append(c.result.Pushed, branch)
		}
	}

	checkoutErr := c.returnToOriginal(ctx)
	if err := c.engine.store.ClearOperationState(ctx, c.repo); err != nil {
		return err
	}
	if checkoutErr != nil {
		return fmt.Errorf("sync completed but failed to return to %s: %w", c.original, checkoutErr)
	}
	return nil
}

func (c *cascade) returnToOriginal(ctx context.Context) error {
	current, _, err := c.main.CurrentBranch(ctx)
	if err == nil && current == c.original {
		return nil
	}
	return c.main.Checkout(ctx, c.original)
}

func (c *cascade) restoreAfterError(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if inProgress, err := c.main.IsMergeInProgress(ctx); err != nil || inProgress {
		return
	}
	if err := c.returnToOriginal(ctx); err != nil {
		c.engine.logger.Warn("failed to return to original branch", "branch", c.original, "error", err)
	}
}
