package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitstack.dev/gitstack/internal/cli"
	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/testhelpers"
)

// conflictOnMain commits a change to a's file on main so merging main into a conflicts
func conflictOnMain(t *testing.T, scene *testhelpers.Scene) {
	t.Helper()
	current := testhelpers.Must(scene.Repo.CurrentBranchName())
	require.NoError(t, scene.Repo.CheckoutBranch("main"))
	require.NoError(t, scene.Repo.CommitFile("a_test.txt", "from main", "main edits a"))
	require.NoError(t, scene.Repo.CheckoutBranch(current))
}

func TestSyncCommands(t *testing.T) {
	t.Parallel()

	t.Run("sync merges parents upward", func(t *testing.T) {
		t.Parallel()
		scene := newStackScene(t)
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("main.txt", "main", "main moves"))

		out := mustRun(t, scene, "sync", "--no-push")
		require.Contains(t, out, "✓ a merged main")
		require.Contains(t, out, "✓ b merged a")
		testhelpers.ExpectAncestor(t, scene.Repo, "main", "b")
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "main")

		out = mustRun(t, scene, "sync", "--no-push")
		require.Contains(t, out, "= a up to date with main")
		require.Contains(t, out, "= b up to date with a")
	})

	t.Run("sync pushes merged branches", func(t *testing.T) {
		t.Parallel()
		scene := newStackScene(t)
		bare, err := scene.Repo.CreateBareRemote("origin")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("main.txt", "main", "main moves"))

		out := mustRun(t, scene, "sync")
		require.Contains(t, out, "↑ pushed a")
		require.Equal(t, testhelpers.Must(scene.Repo.GetRevision("b")), testhelpers.RemoteRevision(bare, "b"))
	})

	t.Run("sync a single branch", func(t *testing.T) {
		t.Parallel()
		scene := newStackScene(t)
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("main.txt", "main", "main moves"))

		out := mustRun(t, scene, "sync", "a", "--no-push")
		require.Contains(t, out, "✓ a merged main")
		require.NotContains(t, out, " b ")
		require.False(t, scene.Repo.IsAncestor("main", "b"))
	})

	t.Run("conflict, status and continue", func(t *testing.T) {
		t.Parallel()
		scene := newStackScene(t)
		conflictOnMain(t, scene)

		out, err := runCLI(t, scene, "sync", "--no-push")
		require.ErrorIs(t, err, cli.ErrConflict)
		require.Contains(t, out, "✗ a conflict merging main")
		require.Contains(t, out, "a_test.txt")
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "a")

		out = mustRun(t, scene, "status")
		require.Contains(t, out, "Sync of feature halted on a (merging main)")
		require.Contains(t, out, "✗ a_test.txt")
		require.Contains(t, out, "returns to b")

		_, err = runCLI(t, scene, "continue")
		require.ErrorIs(t, err, cli.ErrConflict)

		_, err = runCLI(t, scene, "pop")
		require.ErrorIs(t, err, gserrors.ErrOperationInProgress)

		require.NoError(t, scene.Repo.WriteFile("a_test.txt", "resolved"))
		out = mustRun(t, scene, "continue", "--all")
		require.Contains(t, out, "✓ a merged main")
		require.Contains(t, out, "✓ b merged a")
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "b")
		testhelpers.ExpectAncestor(t, scene.Repo, "main", "b")

		require.Contains(t, mustRun(t, scene, "status"), "No sync in progress.")
		_, err = runCLI(t, scene, "continue")
		require.ErrorIs(t, err, gserrors.ErrNoOperationInProgress)
	})

	t.Run("abort", func(t *testing.T) {
		t.Parallel()
		scene := newStackScene(t)
		conflictOnMain(t, scene)
		before := testhelpers.Must(scene.Repo.GetRevision("a"))

		_, err := runCLI(t, scene, "sync", "--no-push")
		require.ErrorIs(t, err, cli.ErrConflict)

		out := mustRun(t, scene, "abort", "--force")
		require.Contains(t, out, "Aborted sync of feature; back on b.")
		require.False(t, scene.Repo.MergeInProgress(scene.Dir))
		require.Equal(t, before, testhelpers.Must(scene.Repo.GetRevision("a")))
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "b")

		_, err = runCLI(t, scene, "abort", "--force")
		require.ErrorIs(t, err, gserrors.ErrNoOperationInProgress)
	})

	t.Run("sync in a linked worktree", func(t *testing.T) {
		t.Parallel()
		scene := newStackScene(t)
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("main.txt", "main", "main moves"))

		out := mustRun(t, scene, "worktree", "add", "a")
		wtPath := filepath.Join(filepath.Dir(scene.Dir), filepath.Base(scene.Dir)+"-worktrees", "a")
		require.Contains(t, out, "Checked out a in "+wtPath)

		out = mustRun(t, scene, "worktree", "list")
		require.Contains(t, out, "a  "+wtPath)

		mustRun(t, scene, "sync", "--no-push")
		_, err := os.Stat(filepath.Join(wtPath, "main.txt"))
		require.NoError(t, err)
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "main")

		mustRun(t, scene, "worktree", "remove", "a")
		require.NotContains(t, mustRun(t, scene, "worktree", "list"), wtPath)
	})
}

func TestCommitCommand(t *testing.T) {
	t.Parallel()

	t.Run("commits below the top and reports stale branches", func(t *testing.T) {
		t.Parallel()
		scene := newStackScene(t)
		require.NoError(t, scene.Repo.CreateChange("fix", "fix", false))

		out := mustRun(t, scene, "commit", "-m", "fix a", "--branch", "a")
		require.Contains(t, out, " on a.")
		require.Contains(t, out, "Branches above are now stale: b")
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "a")

		msg := testhelpers.Must(scene.Repo.RunGitCommandAndGetOutput("log", "-1", "--format=%s", "a"))
		require.Equal(t, "fix a", strings.TrimSpace(msg))
	})

	t.Run("defaults to the top branch", func(t *testing.T) {
		t.Parallel()
		scene := newStackScene(t)
		require.NoError(t, scene.Repo.CheckoutBranch("a"))
		require.NoError(t, scene.Repo.CreateChange("top", "top", false))

		out := mustRun(t, scene, "commit", "-m", "top change")
		require.Contains(t, out, " on b.")
		require.NotContains(t, out, "stale")
	})

	t.Run("message from stdin", func(t *testing.T) {
		t.Parallel()
		scene := newStackScene(t)
		require.NoError(t, scene.Repo.CreateChange("piped", "piped", false))

		cmd := cli.NewRootCmd("test", cli.WithGit(scene.Runner()), cli.WithLogFile(""))
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetIn(strings.NewReader("piped message\n\nwith a body\n\n"))
		cmd.SetArgs([]string{"commit", "-m", "-", "--repo", scene.Dir})
		require.NoError(t, cmd.Execute())

		body := testhelpers.Must(scene.Repo.RunGitCommandAndGetOutput("log", "-1", "--format=%B", "b"))
		require.Equal(t, "piped message\n\nwith a body", body)
	})

	t.Run("requires a message without a terminal", func(t *testing.T) {
		t.Parallel()
		scene := newStackScene(t)
		require.NoError(t, scene.Repo.CreateChange("x", "x", false))

		_, err := runCLI(t, scene, "commit")
		require.ErrorIs(t, err, gserrors.ErrValidation)
	})

	t.Run("nothing staged", func(t *testing.T) {
		t.Parallel()
		scene := newStackScene(t)

		_, err := runCLI(t, scene, "commit", "-m", "empty")
		require.ErrorIs(t, err, gserrors.ErrNoStagedChanges)
	})
}

func TestConfigCommand(t *testing.T) {
	t.Parallel()

	scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

	require.Equal(t, "origin\n", mustRun(t, scene, "config", "get", "remote"))

	mustRun(t, scene, "config", "set", "remote", "upstream")
	mustRun(t, scene, "config", "set", "push_on_sync", "false")
	require.Equal(t, "upstream\n", mustRun(t, scene, "config", "get", "remote"))

	out := mustRun(t, scene, "config", "list")
	require.Contains(t, out, "remote = upstream")
	require.Contains(t, out, "push_on_sync = false")

	_, err := runCLI(t, scene, "config", "set", "push_on_sync", "maybe")
	require.Error(t, err)
	_, err = runCLI(t, scene, "config", "get", "nope")
	require.ErrorContains(t, err, "unknown config key")
}
