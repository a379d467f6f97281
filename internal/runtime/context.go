package runtime

import (
	"context"
	"fmt"
	"io"
	"os"

	"gitstack.dev/gitstack/internal/config"
	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/lock"
	"gitstack.dev/gitstack/internal/output"
	"gitstack.dev/gitstack/internal/stack"
	"gitstack.dev/gitstack/internal/store"
	"gitstack.dev/gitstack/internal/sync"
)

// Options controls how a Context is built
type Options struct {
	// Dir is any directory inside the repository; empty means the working directory
	Dir string
	// Out receives console output; nil means stdout
	Out io.Writer
	// LogFile is the rotated log file; empty disables file logging
	LogFile string
	// Git overrides the git invoker
	Git git.Invoker
}

// Context provides access to the repository services for commands
type Context struct {
	ctx context.Context

	Splog    *output.Splog
	Render   *output.Renderer
	Git      git.Invoker
	RepoRoot string
	// MetaDir is <git-common-dir>/gitstack, shared by all worktrees
	MetaDir   string
	Config    *config.RepoConfig
	Store     store.Store
	Stacks    *stack.Manager
	Sync      *sync.Engine
	Worktrees *git.WorktreeDirectory
}

// NewContext resolves the repository containing opts.Dir and wires its services
func NewContext(ctx context.Context, opts Options) (*Context, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	splog, err := output.NewSplogWithConfig(out, opts.LogFile)
	if err != nil {
		// Console logging still works without the file
		splog, _ = output.NewSplogWithConfig(out, "")
		splog.Debug("file logging disabled: %v", err)
	}

	inv := opts.Git
	if inv == nil {
		inv = git.NewCommandRunner()
	}

	dir := opts.Dir
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	root, err := repoRoot(ctx, inv, dir)
	if err != nil {
		return nil, err
	}

	metaDir, err := store.MetadataDir(ctx, inv, root)
	if err != nil {
		return nil, err
	}

	cfg, err := config.GetRepoConfig(metaDir)
	if err != nil {
		return nil, err
	}

	logger := splog.Logger().With("repo", root)
	st := store.NewFileStoreWithResolver(func(context.Context, string) (string, error) {
		return metaDir, nil
	})
	worktrees := git.NewWorktreeDirectory(inv, cfg.GetWorktreeDir())
	stacks := stack.NewManager(st, inv, stack.WithLogger(logger), stack.WithWorktrees(worktrees))

	return &Context{
		ctx:       ctx,
		Splog:     splog,
		Render:    output.NewRenderer(out, output.ColorEnabled(out)),
		Git:       inv,
		RepoRoot:  root,
		MetaDir:   metaDir,
		Config:    cfg,
		Store:     st,
		Stacks:    stacks,
		Sync:      sync.NewEngine(st, inv, stacks, sync.WithLogger(logger), sync.WithWorktrees(worktrees)),
		Worktrees: worktrees,
	}, nil
}

// repoRoot finds the working copy root with go-git and falls back to git itself
// for layouts go-git cannot open.
func repoRoot(ctx context.Context, inv git.Invoker, dir string) (string, error) {
	root, err := git.RepoRoot(dir)
	if err == nil {
		return root, nil
	}
	top, topErr := git.NewBackend(inv, dir).TopLevel(ctx)
	if topErr != nil {
		return "", fmt.Errorf("%s: %w", dir, gserrors.ErrNotGitRepository)
	}
	return top, nil
}

// Context returns the command's context.Context
func (c *Context) Context() context.Context {
	return c.ctx
}

// Backend returns a git backend for the main working copy
func (c *Context) Backend() *git.Backend {
	return git.NewBackend(c.Git, c.RepoRoot)
}

// Lock takes the repository lock for a mutating command
func (c *Context) Lock() (*lock.RepoLock, error) {
	if err := os.MkdirAll(c.MetaDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", c.MetaDir, err)
	}
	return lock.Acquire(c.MetaDir)
}

// Close flushes the log file
func (c *Context) Close() error {
	return c.Splog.Close()
}
