package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
	"gitstack.dev/gitstack/internal/tui"
)

// newDeleteCmd creates the delete command
func newDeleteCmd(g *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stack definition",
		Long: `Delete a stack definition. The branches of the stack are kept.

On a terminal you are asked to confirm unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				name := args[0]
				if !force && tui.IsTTY() {
					ok, err := tui.PromptConfirm(fmt.Sprintf("Delete stack %s?", name), false)
					if err != nil {
						return err
					}
					if !ok {
						rt.Splog.Info("Kept stack %s.", name)
						return nil
					}
				}
				if err := rt.Stacks.Delete(rt.Context(), rt.RepoRoot, name); err != nil {
					return err
				}
				rt.Splog.Info("Deleted stack %s.", name)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Do not prompt for confirmation")
	cmd.ValidArgsFunction = g.completeStacks

	return cmd
}
