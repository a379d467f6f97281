package cli

import (
	"errors"

	"github.com/spf13/cobra"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/runtime"
	"gitstack.dev/gitstack/internal/tui"
)

// newUseCmd creates the use command
func newUseCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use [name]",
		Short: "Select the active stack",
		Long: `Select the stack that commands act on by default.

Without a name you pick from the existing stacks.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				ctx := rt.Context()
				var name string
				if len(args) == 1 {
					name = args[0]
				} else {
					l, err := rt.Stacks.List(ctx, rt.RepoRoot)
					if err != nil {
						return err
					}
					if len(l.Names) == 0 {
						return gserrors.ErrNoStacks
					}
					name, err = tui.PromptSelect("Select a stack:", l.Names, l.Active)
					if err != nil {
						if errors.Is(err, tui.ErrInteractiveDisabled) {
							return errors.New("a stack name is required when prompts are disabled")
						}
						return err
					}
				}
				if err := rt.Stacks.SetActiveStack(ctx, rt.RepoRoot, name); err != nil {
					return err
				}
				rt.Splog.Info("Now using stack %s.", name)
				return nil
			})
		},
	}
	cmd.ValidArgsFunction = g.completeStacks
	return cmd
}

// newUnuseCmd creates the unuse command
func newUnuseCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unuse",
		Short: "Clear the active stack selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				if err := rt.Stacks.ClearActiveStack(rt.Context(), rt.RepoRoot); err != nil {
					return err
				}
				rt.Splog.Info("Cleared the active stack.")
				return nil
			})
		},
	}
}
