package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
	"gitstack.dev/gitstack/internal/tui"
)

// newAbortCmd creates the abort command
func newAbortCmd(g *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "abort",
		Short: "Abort a sync halted by a merge conflict",
		Long: `Abort a sync halted by a merge conflict.

The conflicted merge is aborted and the branch you started from is checked
out again. Branches merged before the conflict keep their merges.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				if !force && tui.IsTTY() {
					ok, err := tui.PromptConfirm("Abort the sync in progress?", true)
					if err != nil {
						return err
					}
					if !ok {
						return nil
					}
				}

				res, err := rt.Sync.Abort(rt.Context(), rt.RepoRoot)
				if err != nil {
					return err
				}
				rt.Splog.Page(rt.Render.Abort(res))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Do not prompt for confirmation; abort immediately.")

	return cmd
}
