package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
)

// newDropCmd creates the drop command
func newDropCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop <branch>",
		Short: "Remove a branch from anywhere in the active stack",
		Long: `Remove a branch from anywhere in the active stack.

The branch above it now builds on the branch below. Run 'gitstack sync' to
bring it up to date. The dropped branch stays in the repository.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				s, err := rt.Stacks.Drop(rt.Context(), rt.RepoRoot, args[0])
				if err != nil {
					return err
				}
				rt.Splog.Info("Dropped %s from %s.", rt.Render.Branch(args[0]), s.Name)
				return nil
			})
		},
	}
	cmd.ValidArgsFunction = g.completeStackBranches
	return cmd
}
