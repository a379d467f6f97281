package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/runtime"
)

// newContinueCmd creates the continue command
func newContinueCmd(g *globalOptions) *cobra.Command {
	var addAll bool

	cmd := &cobra.Command{
		Use:   "continue",
		Short: "Resume a sync halted by a merge conflict",
		Long: `Resume a sync halted by a merge conflict.

The conflicted merge is concluded once every file is resolved and staged, and
the remaining branches are synced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				ctx := rt.Context()
				if addAll {
					pending, err := rt.Sync.Status(ctx, rt.RepoRoot)
					if err != nil {
						return err
					}
					dir := rt.RepoRoot
					if pending != nil && pending.State.Worktree() != "" {
						dir = pending.State.Worktree()
					}
					if err := git.NewBackend(rt.Git, dir).StageAll(ctx); err != nil {
						return err
					}
				}

				res, err := rt.Sync.Continue(ctx, rt.RepoRoot)
				if err != nil {
					return err
				}
				return reportSync(rt, res)
			})
		},
	}

	cmd.Flags().BoolVarP(&addAll, "all", "a", false, "Stage all changes before continuing")

	return cmd
}
