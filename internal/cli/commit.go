package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
	"gitstack.dev/gitstack/internal/stack"
	"gitstack.dev/gitstack/internal/tui"
)

// newCommitCmd creates the commit command
func newCommitCmd(g *globalOptions) *cobra.Command {
	var (
		message string
		branch  string
		amend   bool
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit staged changes to a branch of the active stack",
		Long: `Commit the staged changes to a branch of the active stack.

The commit goes to --branch, or the top of the active stack when omitted, and
that branch is checked out. Branches above it are reported as stale; run
'gitstack sync' to update them.

Without --message you are prompted for one on a terminal. A message of "-"
is read from standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return g.runLocked(cmd, func(rt *runtime.Context) error {
				if message == "-" {
					m, err := readMessage(cmd.InOrStdin())
					if err != nil {
						return err
					}
					message = m
				}
				if message == "" && !amend && tui.IsTTY() {
					m, err := tui.PromptTextInput("Commit message:", "")
					if err != nil && !errors.Is(err, tui.ErrInteractiveDisabled) {
						return err
					}
					message = m
				}

				res, err := rt.Stacks.Commit(rt.Context(), rt.RepoRoot, stack.CommitOptions{
					Branch:  branch,
					Message: message,
					Amend:   amend,
				})
				if err != nil {
					return err
				}
				rt.Splog.Page(rt.Render.Commit(res))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Stack branch to commit to")
	cmd.Flags().BoolVar(&amend, "amend", false, "Amend the last commit of the branch")
	_ = cmd.RegisterFlagCompletionFunc("branch", g.completeStackBranches)

	return cmd
}

// readMessage reads a commit message, dropping trailing blank lines
func readMessage(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n\t "), nil
}
