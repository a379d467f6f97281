package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/config"
	"gitstack.dev/gitstack/internal/runtime"
)

// newConfigCmd creates the config command
func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Get and set repository configuration",
		Long: `Get and set repository configuration values.

Keys:
  remote        remote that sync pushes to (default origin, GITSTACK_REMOTE overrides)
  push_on_sync  push merged branches after a sync (default true, GITSTACK_NO_PUSH overrides)
  worktree_dir  directory for new worktrees

Examples:
  gitstack config get remote
  gitstack config set push_on_sync false`,
	}

	cmd.AddCommand(newConfigGetCmd(g))
	cmd.AddCommand(newConfigSetCmd(g))
	cmd.AddCommand(newConfigListCmd(g))

	return cmd
}

func completeConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.Keys, cobra.ShellCompDirectiveNoFileComp
}

// newConfigGetCmd creates the config get command
func newConfigGetCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "get <key>",
		Short:             "Get a configuration value",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeConfigKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(rt *runtime.Context) error {
				value, err := rt.Config.Get(args[0])
				if err != nil {
					return err
				}
				rt.Splog.Page(value + "\n")
				return nil
			})
		},
	}
}

// newConfigSetCmd creates the config set command
func newConfigSetCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             "Set a configuration value",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeConfigKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				if err := rt.Config.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := config.SaveRepoConfig(rt.MetaDir, rt.Config); err != nil {
					return err
				}
				rt.Splog.Info("Set %s to %s.", args[0], args[1])
				return nil
			})
		},
	}
}

// newConfigListCmd creates the config list command
func newConfigListCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every configuration value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.run(cmd, func(rt *runtime.Context) error {
				for _, key := range config.Keys {
					value, err := rt.Config.Get(key)
					if err != nil {
						return err
					}
					rt.Splog.Page(fmt.Sprintf("%s = %s\n", key, value))
				}
				return nil
			})
		},
	}
}
