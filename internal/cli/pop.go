package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
)

// newPopCmd creates the pop command
func newPopCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pop",
		Short: "Remove the top branch from the active stack",
		Long: `Remove the top branch from the active stack.

The branch itself and its commits stay in the repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				b, err := rt.Stacks.Pop(rt.Context(), rt.RepoRoot)
				if err != nil {
					return err
				}
				rt.Splog.Info("Popped %s.", rt.Render.Branch(b.Name))
				return nil
			})
		},
	}
}
