package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
)

// newWorktreeCmd creates the worktree command
func newWorktreeCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "worktree",
		Aliases: []string{"wt"},
		Short:   "Manage worktrees for stack branches",
		Long: `Manage linked worktrees holding stack branches.

'gitstack sync' merges a branch inside the worktree that has it checked out,
so several branches of a stack can be worked on side by side.`,
	}

	cmd.AddCommand(newWorktreeAddCmd(g))
	cmd.AddCommand(newWorktreeRemoveCmd(g))
	cmd.AddCommand(newWorktreeListCmd(g))

	return cmd
}

// newWorktreeAddCmd creates the worktree add command
func newWorktreeAddCmd(g *globalOptions) *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "add <branch>",
		Short: "Check out a branch in a new worktree",
		Long: `Check out a branch in a new linked worktree.

Worktrees are created under worktree_dir, or next to the repository in
a directory named "<repo>-worktrees".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				path, err := rt.Worktrees.Add(rt.Context(), rt.RepoRoot, args[0], create)
				if err != nil {
					return err
				}
				rt.Splog.Info("Checked out %s in %s.", rt.Render.Branch(args[0]), path)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&create, "create", "c", false, "Create the branch from HEAD")
	cmd.ValidArgsFunction = g.completeStackBranches

	return cmd
}

// newWorktreeRemoveCmd creates the worktree remove command
func newWorktreeRemoveCmd(g *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove <branch>",
		Short: "Remove the worktree holding a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				if err := rt.Worktrees.Remove(rt.Context(), rt.RepoRoot, args[0], force); err != nil {
					return err
				}
				rt.Splog.Info("Removed the worktree of %s.", rt.Render.Branch(args[0]))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove even with uncommitted changes")
	cmd.ValidArgsFunction = g.completeStackBranches

	return cmd
}

// newWorktreeListCmd creates the worktree list command
func newWorktreeListCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List worktrees and the branches they hold",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(rt *runtime.Context) error {
				worktrees, err := rt.Worktrees.List(rt.Context(), rt.RepoRoot)
				if err != nil {
					return err
				}
				for _, wt := range worktrees {
					branch := wt.Branch
					switch {
					case wt.IsBare:
						branch = "(bare)"
					case wt.IsDetached:
						branch = "(detached)"
					}
					rt.Splog.Page(fmt.Sprintf("%s  %s\n", rt.Render.Branch(branch), wt.Path))
				}
				return nil
			})
		},
	}
}
