package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
	"gitstack.dev/gitstack/internal/sync"
)

// newSyncCmd creates the sync command
func newSyncCmd(g *globalOptions) *cobra.Command {
	var (
		stackName string
		remote    string
		noPush    bool
	)

	cmd := &cobra.Command{
		Use:   "sync [branch]",
		Short: "Merge each branch's parent into it, from the bottom of the stack up",
		Long: `Bring every branch of a stack up to date by merging its parent into it,
starting at the bottom. With a branch argument only that branch is synced:
its parent is merged into it and the branches above are left alone.

Branches checked out in another worktree are merged there. When a merge
conflicts the sync stops; resolve the conflict, stage the files and run
'gitstack continue', or give up with 'gitstack abort'.

Branches that received a merge are pushed unless --no-push is given or
push_on_sync is false.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				opts := sync.Options{
					Stack:  stackName,
					Remote: rt.Config.GetRemote(),
					Push:   rt.Config.GetPushOnSync() && !noPush,
				}
				if remote != "" {
					opts.Remote = remote
				}
				if len(args) == 1 {
					opts.Branch = args[0]
				}

				res, err := rt.Sync.Sync(rt.Context(), rt.RepoRoot, opts)
				if err != nil {
					return err
				}
				return reportSync(rt, res)
			})
		},
	}

	cmd.Flags().StringVarP(&stackName, "stack", "s", "", "Stack to sync instead of the active one")
	cmd.Flags().StringVar(&remote, "remote", "", "Remote to push to")
	cmd.Flags().BoolVar(&noPush, "no-push", false, "Do not push merged branches")
	cmd.ValidArgsFunction = g.completeStackBranches

	return cmd
}

func reportSync(rt *runtime.Context, res *sync.Result) error {
	rt.Splog.Page(rt.Render.SyncResult(res))
	if res.HasConflict {
		return ErrConflict
	}
	return nil
}
