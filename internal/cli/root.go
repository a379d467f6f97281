package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/output"
	"gitstack.dev/gitstack/internal/runtime"
)

// ErrConflict is returned after a sync or continue stopped on a merge conflict.
// The command has already reported the conflicting files.
var ErrConflict = errors.New("sync stopped on a merge conflict")

// RootOption customizes the root command
type RootOption func(*globalOptions)

// WithGit runs every git command through inv
func WithGit(inv git.Invoker) RootOption {
	return func(g *globalOptions) {
		g.git = inv
	}
}

// WithLogFile overrides the log file location; empty disables file logging
func WithLogFile(path string) RootOption {
	return func(g *globalOptions) {
		g.logFile = &path
	}
}

type globalOptions struct {
	repo    string
	git     git.Invoker
	logFile *string
}

// NewRootCmd creates the root cobra command
func NewRootCmd(version string, opts ...RootOption) *cobra.Command {
	g := &globalOptions{}
	for _, opt := range opts {
		opt(g)
	}

	rootCmd := &cobra.Command{
		Use:   "gitstack",
		Short: "Manage stacks of dependent git branches",
		Long: `gitstack keeps an ordered stack of branches, each building on the one below,
and propagates changes up the stack by merging every branch's parent into it.

Stacks live in the repository's git directory and are shared by all worktrees.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.repo, "repo", "C", "", "Run as if gitstack was started in this directory")

	rootCmd.AddCommand(
		newInitCmd(g),
		newPushCmd(g),
		newPopCmd(g),
		newDropCmd(g),
		newShiftCmd(g),
		newDeleteCmd(g),
		newListCmd(g),
		newShowCmd(g),
		newUseCmd(g),
		newUnuseCmd(g),
		newSyncCmd(g),
		newContinueCmd(g),
		newAbortCmd(g),
		newStatusCmd(g),
		newCommitCmd(g),
		newPRCmd(g),
		newWorktreeCmd(g),
		newConfigCmd(g),
	)

	return rootCmd
}

// run provides a runtime context to a command's execution function
func (g *globalOptions) run(cmd *cobra.Command, fn func(rt *runtime.Context) error) error {
	logFile := output.GetLogFilePath()
	if g.logFile != nil {
		logFile = *g.logFile
	}

	rt, err := runtime.NewContext(cmd.Context(), runtime.Options{
		Dir:     g.repo,
		Out:     cmd.OutOrStdout(),
		LogFile: logFile,
		Git:     g.git,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	rt.Splog.Debug("running %s", cmd.CommandPath())
	return fn(rt)
}

// runLocked is run holding the repository lock, for commands that change state
func (g *globalOptions) runLocked(cmd *cobra.Command, fn func(rt *runtime.Context) error) error {
	return g.run(cmd, func(rt *runtime.Context) error {
		l, err := rt.Lock()
		if err != nil {
			return err
		}
		defer func() { _ = l.Release() }()
		return fn(rt)
	})
}
