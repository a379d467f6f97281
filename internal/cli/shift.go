package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
)

// newShiftCmd creates the shift command
func newShiftCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shift <branch>",
		Short: "Insert a branch at the bottom of the active stack",
		Long: `Insert an existing branch at the bottom of the active stack, directly on the trunk.

The branch that was at the bottom now builds on it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				s, err := rt.Stacks.Shift(rt.Context(), rt.RepoRoot, args[0])
				if err != nil {
					return err
				}
				rt.Splog.Info("Shifted %s under %s.", rt.Render.Branch(args[0]), s.Name)
				return nil
			})
		},
	}
}
