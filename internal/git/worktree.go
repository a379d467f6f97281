package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Worktree is one entry of `git worktree list --porcelain`
type Worktree struct {
	Path       string
	Branch     string // empty when detached or bare
	Head       string
	IsBare     bool
	IsDetached bool
}

// WorktreeDirectory maps branches to the working copies that hold them
type WorktreeDirectory struct {
	inv Invoker
	// BaseDir is where Add creates worktrees. Empty means a sibling
	// directory named "<repo>-worktrees".
	BaseDir string
}

// NewWorktreeDirectory creates a new WorktreeDirectory
func NewWorktreeDirectory(inv Invoker, baseDir string) *WorktreeDirectory {
	return &WorktreeDirectory{inv: inv, BaseDir: baseDir}
}

// List returns all worktrees of the repository, the main one first
func (w *WorktreeDirectory) List(ctx context.Context, repo string) ([]Worktree, error) {
	res, err := NewBackend(w.inv, repo).run(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	return parseWorktreeList(res.Stdout), nil
}

func parseWorktreeList(out string) []Worktree {
	var worktrees []Worktree
	var cur *Worktree
	flush := func() {
		if cur != nil {
			worktrees = append(worktrees, *cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur = &Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case cur == nil:
			continue
		case strings.HasPrefix(line, "HEAD "):
			cur.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			cur.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "bare":
			cur.IsBare = true
		case line == "detached":
			cur.IsDetached = true
		}
	}
	flush()
	return worktrees
}

// PathFor returns the path of the linked worktree that has branch checked out.
// The main checkout at repo is never returned; ok is false when no other
// worktree holds the branch.
func (w *WorktreeDirectory) PathFor(ctx context.Context, repo, branch string) (path string, ok bool, err error) {
	worktrees, err := w.List(ctx, repo)
	if err != nil {
		return "", false, err
	}
	for _, wt := range worktrees {
		if wt.IsBare || wt.Branch != branch {
			continue
		}
		if SamePath(wt.Path, repo) {
			continue
		}
		return wt.Path, true, nil
	}
	return "", false, nil
}

// Add creates a worktree for branch and returns its path.
// With create the branch is created from the repository HEAD.
func (w *WorktreeDirectory) Add(ctx context.Context, repo, branch string, create bool) (string, error) {
	path := w.pathForBranch(repo, branch)
	args := []string{"worktree", "add"}
	if create {
		args = append(args, "-b", branch, path)
	} else {
		args = append(args, path, branch)
	}
	if _, err := NewBackend(w.inv, repo).run(ctx, args...); err != nil {
		return "", fmt.Errorf("failed to add worktree at %s: %w", path, err)
	}
	return path, nil
}

// Remove removes the linked worktree holding branch
func (w *WorktreeDirectory) Remove(ctx context.Context, repo, branch string, force bool) error {
	path, ok, err := w.PathFor(ctx, repo, branch)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no worktree has branch %s checked out", branch)
	}
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	if _, err := NewBackend(w.inv, repo).run(ctx, args...); err != nil {
		return fmt.Errorf("failed to remove worktree at %s: %w", path, err)
	}
	return nil
}

func (w *WorktreeDirectory) pathForBranch(repo, branch string) string {
	base := w.BaseDir
	if base == "" {
		clean := filepath.Clean(repo)
		base = filepath.Join(filepath.Dir(clean), filepath.Base(clean)+"-worktrees")
	}
	return filepath.Join(base, strings.ReplaceAll(branch, "/", "-"))
}

// SamePath reports whether two paths name the same directory.
// Symlinks are resolved since temp dirs on macOS live behind /var -> /private/var.
func SamePath(a, b string) bool {
	return canonical(a) == canonical(b)
}

func canonical(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return filepath.Clean(p)
}

// Exists reports whether a worktree path is still present on disk
func Exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
