package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/model"
	"gitstack.dev/gitstack/internal/runtime"
)

// newPRCmd creates the pr command
func newPRCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pr",
		Short: "Record pull requests of stack branches",
		Long: `Record which pull request belongs to a branch of the active stack.

gitstack does not talk to any hosting service; the recorded pull requests
are shown by 'gitstack show'.`,
	}

	cmd.AddCommand(newPRSetCmd(g))
	cmd.AddCommand(newPRClearCmd(g))

	return cmd
}

// newPRSetCmd creates the pr set command
func newPRSetCmd(g *globalOptions) *cobra.Command {
	var (
		url   string
		state string
	)

	cmd := &cobra.Command{
		Use:   "set <branch> <number>",
		Short: "Record the pull request of a branch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[1])
			if err != nil || number <= 0 {
				return gserrors.NewValidationError("number", args[1], "must be a positive integer")
			}
			prState := model.PRState(state)
			if !prState.Valid() {
				return gserrors.NewValidationError("state", state, "must be open, merged or closed")
			}

			return g.runLocked(cmd, func(rt *runtime.Context) error {
				pr := &model.PullRequest{Number: number, URL: url, State: prState}
				if _, err := rt.Stacks.SetPullRequest(rt.Context(), rt.RepoRoot, args[0], pr); err != nil {
					return err
				}
				rt.Splog.Info("Recorded #%d for %s.", number, rt.Render.Branch(args[0]))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Pull request URL")
	cmd.Flags().StringVar(&state, "state", string(model.PRStateOpen), "Pull request state: open, merged or closed")
	cmd.ValidArgsFunction = g.completeStackBranches

	return cmd
}

// newPRClearCmd creates the pr clear command
func newPRClearCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <branch>",
		Short: "Forget the pull request of a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				if _, err := rt.Stacks.SetPullRequest(rt.Context(), rt.RepoRoot, args[0], nil); err != nil {
					return err
				}
				rt.Splog.Info("Cleared the pull request of %s.", rt.Render.Branch(args[0]))
				return nil
			})
		},
	}
	cmd.ValidArgsFunction = g.completeStackBranches
	return cmd
}
