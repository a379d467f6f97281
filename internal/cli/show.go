package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
)

// newShowCmd creates the show command
func newShowCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show the branches of a stack",
		Long: `Show the branches of a stack from top to bottom, ending with its trunk.

Without a name the active stack is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(rt *runtime.Context) error {
				ctx := rt.Context()
				name := ""
				if len(args) == 1 {
					name = args[0]
				}
				s, err := rt.Stacks.Show(ctx, rt.RepoRoot, name)
				if err != nil {
					return err
				}
				active, err := rt.Stacks.List(ctx, rt.RepoRoot)
				if err != nil {
					return err
				}
				current, _, err := rt.Backend().CurrentBranch(ctx)
				if err != nil {
					return err
				}
				rt.Splog.Page(rt.Render.Stack(s, active.Active == s.Name, current))
				return nil
			})
		},
	}
	cmd.ValidArgsFunction = g.completeStacks
	return cmd
}
