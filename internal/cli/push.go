package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
)

// newPushCmd creates the push command
func newPushCmd(g *globalOptions) *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "push <branch>",
		Short: "Add a branch to the top of the active stack",
		Long: `Add a branch to the top of the active stack and check it out.

With --create the branch is created from the current HEAD first. Nothing is
sent to a remote; use 'gitstack sync' to push.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				s, err := rt.Stacks.Push(rt.Context(), rt.RepoRoot, args[0], create)
				if err != nil {
					return err
				}
				rt.Splog.Info("Pushed %s onto %s.", rt.Render.Branch(args[0]), s.Name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&create, "create", "c", false, "Create the branch from HEAD")

	return cmd
}
