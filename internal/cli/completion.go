package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
)

// completeStacks returns the stack names of the repository
func (g *globalOptions) completeStacks(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	err := g.run(cmd, func(rt *runtime.Context) error {
		l, err := rt.Stacks.List(rt.Context(), rt.RepoRoot)
		if err != nil {
			return err
		}
		names = l.Names
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeStackBranches returns the branches of the active stack
func (g *globalOptions) completeStackBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var names []string
	err := g.run(cmd, func(rt *runtime.Context) error {
		s, err := rt.Stacks.ActiveStack(rt.Context(), rt.RepoRoot)
		if err != nil {
			return err
		}
		names = s.BranchNames()
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
