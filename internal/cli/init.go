package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
)

// newInitCmd creates the init command
func newInitCmd(g *globalOptions) *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Create a new stack and make it active",
		Long: `Create a new, empty stack and make it the active stack.

The stack's trunk is the branch given with --base. When --base is omitted or
names a branch that does not exist, the checked-out branch is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				s, err := rt.Stacks.Init(rt.Context(), rt.RepoRoot, args[0], base)
				if err != nil {
					return err
				}
				rt.Splog.Info("Created stack %s on %s.", s.Name, rt.Render.Branch(s.Trunk))
				rt.Splog.Tip("Add branches with 'gitstack push <branch>'.")
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&base, "base", "b", "", "Trunk branch the stack builds on")

	return cmd
}
