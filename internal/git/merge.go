package git

import (
	"context"
	"fmt"
)

// MergeResult represents the result of a merge operation
type MergeResult int

const (
	// MergeDone indicates the merge completed and was committed
	MergeDone MergeResult = iota
	// MergeConflict indicates the merge stopped with unmerged paths
	MergeConflict
)

// Merge merges rev into the checked-out branch using git's automatic merge.
// A merge that stops on conflicts returns MergeConflict with a nil error and
// leaves the merge in progress for the user to resolve.
func (b *Backend) Merge(ctx context.Context, rev string) (MergeResult, error) {
	res, err := b.inv.Run(ctx, b.dir, "merge", "--no-edit", rev)
	if err != nil {
		return MergeConflict, err
	}
	if res.Success {
		return MergeDone, nil
	}

	inProgress, perr := b.IsMergeInProgress(ctx)
	if perr != nil {
		return MergeConflict, perr
	}
	if inProgress {
		return MergeConflict, nil
	}
	return MergeConflict, fmt.Errorf("failed to merge %s into %s: %w", rev, b.dir,
		newCommandError([]string{"merge", "--no-edit", rev}, res))
}

// MergeContinue concludes a merge whose conflicts have been resolved and staged.
// If unresolved paths remain it returns MergeConflict and the merge stays in progress.
// When no merge is in progress (the user already committed the resolution) it
// reports MergeDone.
func (b *Backend) MergeContinue(ctx context.Context) (MergeResult, error) {
	inProgress, err := b.IsMergeInProgress(ctx)
	if err != nil {
		return MergeConflict, err
	}
	if !inProgress {
		return MergeDone, nil
	}

	unmerged, err := b.UnmergedFiles(ctx)
	if err != nil {
		return MergeConflict, err
	}
	if len(unmerged) > 0 {
		return MergeConflict, nil
	}

	// commit concludes the merge with the prepared MERGE_MSG and never opens an editor
	args := []string{"commit", "--no-edit"}
	res, err := b.inv.Run(ctx, b.dir, args...)
	if err != nil {
		return MergeConflict, err
	}
	if res.Success {
		return MergeDone, nil
	}
	if stillInProgress, perr := b.IsMergeInProgress(ctx); perr == nil && stillInProgress {
		return MergeConflict, nil
	}
	return MergeConflict, fmt.Errorf("merge continue failed: %w", newCommandError(args, res))
}

// MergeAbort aborts an in-progress merge
func (b *Backend) MergeAbort(ctx context.Context) error {
	if _, err := b.run(ctx, "merge", "--abort"); err != nil {
		return fmt.Errorf("merge abort failed: %w", err)
	}
	return nil
}

// IsMergeInProgress checks for MERGE_HEAD in this working copy
func (b *Backend) IsMergeInProgress(ctx context.Context) (bool, error) {
	return b.probe(ctx, "rev-parse", "-q", "--verify", "MERGE_HEAD")
}

// UnmergedFiles lists the paths that still have conflicts
func (b *Backend) UnmergedFiles(ctx context.Context) ([]string, error) {
	res, err := b.run(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, fmt.Errorf("failed to list unmerged files: %w", err)
	}
	return res.Lines(), nil
}
