package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	gserrors "gitstack.dev/gitstack/internal/errors"
)

// Backend is a handle on one working copy: the main checkout or a linked worktree.
// All commands run with the working copy as their directory.
type Backend struct {
	inv Invoker
	dir string
}

// NewBackend creates a Backend rooted at dir
func NewBackend(inv Invoker, dir string) *Backend {
	return &Backend{inv: inv, dir: dir}
}

// Dir returns the working directory of the backend
func (b *Backend) Dir() string {
	return b.dir
}

// run executes a git command and converts a failed exit into a GitCommandError
func (b *Backend) run(ctx context.Context, args ...string) (Result, error) {
	res, err := b.inv.Run(ctx, b.dir, args...)
	if err != nil {
		return res, err
	}
	if !res.Success {
		return res, newCommandError(args, res)
	}
	return res, nil
}

func newCommandError(args []string, res Result) error {
	return gserrors.NewGitCommandError("git", args, res.Stdout, res.Stderr, nil)
}

// probe executes a git command whose exit status is the answer
func (b *Backend) probe(ctx context.Context, args ...string) (bool, error) {
	res, err := b.inv.Run(ctx, b.dir, args...)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

// IsRepository reports whether the backend directory is inside a git work tree
func (b *Backend) IsRepository(ctx context.Context) (bool, error) {
	return b.probe(ctx, "rev-parse", "--is-inside-work-tree")
}

// TopLevel returns the root of the working copy
func (b *Backend) TopLevel(ctx context.Context) (string, error) {
	res, err := b.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("failed to get top level: %w", err)
	}
	return res.Output(), nil
}

// CommonDir returns the absolute git directory shared by all worktrees
func (b *Backend) CommonDir(ctx context.Context) (string, error) {
	res, err := b.run(ctx, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("failed to get git common dir: %w", err)
	}
	dir := res.Output()
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(b.dir, dir)
	}
	return filepath.Clean(dir), nil
}

// CurrentBranch returns the checked-out branch name.
// When HEAD is detached it returns the commit id and detached=true.
func (b *Backend) CurrentBranch(ctx context.Context) (name string, detached bool, err error) {
	res, err := b.inv.Run(ctx, b.dir, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		return "", false, err
	}
	if res.Success && res.Output() != "" {
		return res.Output(), false, nil
	}
	sha, err := b.HeadCommit(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to get current branch: %w", err)
	}
	return sha, true, nil
}

// HeadCommit returns the commit id of HEAD
func (b *Backend) HeadCommit(ctx context.Context) (string, error) {
	return b.RevParse(ctx, "HEAD")
}

// RevParse resolves a revision to its commit id
func (b *Backend) RevParse(ctx context.Context, rev string) (string, error) {
	res, err := b.run(ctx, "rev-parse", "--verify", "-q", rev+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	return res.Output(), nil
}

// BranchExists checks if a local branch exists
func (b *Backend) BranchExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	return b.probe(ctx, "show-ref", "--verify", "--quiet", "refs/heads/"+name)
}

// CreateAndCheckout creates a new branch at HEAD and checks it out
func (b *Backend) CreateAndCheckout(ctx context.Context, name string) error {
	if _, err := b.run(ctx, "checkout", "-b", name); err != nil {
		return fmt.Errorf("failed to create and checkout branch %s: %w", name, err)
	}
	return nil
}

// Checkout checks out a branch or, for a commit id, a detached HEAD
func (b *Backend) Checkout(ctx context.Context, ref string) error {
	if _, err := b.run(ctx, "checkout", ref); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", ref, err)
	}
	return nil
}

// MergeBase returns the best common ancestor of two revisions
func (b *Backend) MergeBase(ctx context.Context, rev1, rev2 string) (string, error) {
	res, err := b.run(ctx, "merge-base", rev1, rev2)
	if err != nil {
		return "", fmt.Errorf("failed to find merge base of %s and %s: %w", rev1, rev2, err)
	}
	return res.Output(), nil
}

// CountCommits returns the number of commits reachable from head but not from base
func (b *Backend) CountCommits(ctx context.Context, base, head string) (int, error) {
	res, err := b.run(ctx, "rev-list", "--count", base+".."+head)
	if err != nil {
		return 0, fmt.Errorf("failed to count commits %s..%s: %w", base, head, err)
	}
	n, err := strconv.Atoi(res.Output())
	if err != nil {
		return 0, fmt.Errorf("unexpected rev-list output %q: %w", res.Output(), err)
	}
	return n, nil
}

// Push pushes a branch to remote and sets its upstream
func (b *Backend) Push(ctx context.Context, remote, branch string) error {
	res, err := b.inv.Run(ctx, b.dir, "push", "-u", remote, branch)
	if err != nil {
		return fmt.Errorf("failed to push branch %s: %w", branch, err)
	}
	if !res.Success {
		return fmt.Errorf("failed to push branch %s to %s: %s", branch, remote, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// HasStagedChanges checks if the index differs from HEAD
func (b *Backend) HasStagedChanges(ctx context.Context) (bool, error) {
	res, err := b.inv.Run(ctx, b.dir, "diff", "--cached", "--quiet")
	if err != nil {
		return false, fmt.Errorf("failed to check staged changes: %w", err)
	}
	// --quiet exits 1 when there are differences
	return !res.Success, nil
}

// StageAll stages every change in the working copy, including deletions
func (b *Backend) StageAll(ctx context.Context) error {
	if _, err := b.run(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// CommitOptions controls Commit
type CommitOptions struct {
	Message string
	Amend   bool
}

// Commit records the index as a new commit (or amends HEAD) and returns its id
func (b *Backend) Commit(ctx context.Context, opts CommitOptions) (string, error) {
	args := []string{"commit"}
	if opts.Amend {
		args = append(args, "--amend")
		if opts.Message == "" {
			args = append(args, "--no-edit")
		}
	}
	if opts.Message != "" {
		args = append(args, "-m", opts.Message)
	}
	if _, err := b.run(ctx, args...); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return b.HeadCommit(ctx)
}
