package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
)

// newListCmd creates the list command
func newListCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stacks, marking the active one",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(rt *runtime.Context) error {
				l, err := rt.Stacks.List(rt.Context(), rt.RepoRoot)
				if err != nil {
					return err
				}
				rt.Splog.Page(rt.Render.List(l))
				return nil
			})
		},
	}
}
