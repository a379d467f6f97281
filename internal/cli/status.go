package cli

import (
	"errors"

	"github.com/spf13/cobra"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/runtime"
)

// newStatusCmd creates the status command
func newStatusCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active stack and any sync in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(rt *runtime.Context) error {
				ctx := rt.Context()

				s, err := rt.Stacks.ActiveStack(ctx, rt.RepoRoot)
				switch {
				case err == nil:
					current, _, err := rt.Backend().CurrentBranch(ctx)
					if err != nil {
						return err
					}
					rt.Splog.Page(rt.Render.Stack(s, true, current))
				case errors.Is(err, gserrors.ErrNoStacks), errors.Is(err, gserrors.ErrAmbiguousActiveStack):
					rt.Splog.Info("%v", err)
				default:
					return err
				}

				pending, err := rt.Sync.Status(ctx, rt.RepoRoot)
				if err != nil {
					return err
				}
				rt.Splog.Newline()
				rt.Splog.Page(rt.Render.Pending(pending))
				return nil
			})
		},
	}
}
