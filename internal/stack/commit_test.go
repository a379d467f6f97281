package stack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/testhelpers"
)

func TestCommit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	setupStack := func(t *testing.T) (*Manager, *testhelpers.Scene) {
		t.Helper()
		m, scene := newTestManager(t, testhelpers.StackSceneSetup)
		_, err := m.Init(ctx, scene.Dir, "feature", "main")
		require.NoError(t, err)
		for _, b := range []string{"a", "b"} {
			_, err = m.Push(ctx, scene.Dir, b, false)
			require.NoError(t, err)
		}
		return m, scene
	}

	t.Run("fails without staged changes", func(t *testing.T) {
		t.Parallel()
		m, scene := setupStack(t)

		_, err := m.Commit(ctx, scene.Dir, CommitOptions{Message: "nothing"})
		require.ErrorIs(t, err, gserrors.ErrNoStagedChanges)
	})

	t.Run("amend succeeds without staged changes", func(t *testing.T) {
		t.Parallel()
		m, scene := setupStack(t)
		res, err := m.Commit(ctx, scene.Dir, CommitOptions{Amend: true})
		require.NoError(t, err)
		require.Equal(t, "b", res.Branch)
		require.Equal(t, testhelpers.Must(scene.Repo.GetRevision("b")), res.CommitID)
		require.False(t, res.BranchesAreStale)
	})

	t.Run("defaults to the top of the stack", func(t *testing.T) {
		t.Parallel()
		m, scene := setupStack(t)
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CreateChange("top", "new", false))

		res, err := m.Commit(ctx, scene.Dir, CommitOptions{Message: "top change"})
		require.NoError(t, err)
		require.Equal(t, "b", res.Branch)
		require.Equal(t, testhelpers.Must(scene.Repo.GetRevision("b")), res.CommitID)
		require.False(t, res.BranchesAreStale)
		require.Empty(t, res.StaleBranches)
	})

	t.Run("commit below the top marks branches above as stale", func(t *testing.T) {
		t.Parallel()
		m, scene := setupStack(t)
		require.NoError(t, scene.Repo.CreateChange("fix", "fix", false))

		res, err := m.Commit(ctx, scene.Dir, CommitOptions{Branch: "a", Message: "fix a"})
		require.NoError(t, err)
		require.Equal(t, "a", res.Branch)
		require.True(t, res.BranchesAreStale)
		require.Equal(t, []string{"b"}, res.StaleBranches)
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "a")
		require.False(t, scene.Repo.IsAncestor("a", "b"))
	})

	t.Run("refuses a target held by a linked worktree", func(t *testing.T) {
		t.Parallel()
		m, scene := setupStack(t)
		wt, err := scene.Repo.AddWorktree("a")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.CreateChange("fix", "fix", false))
		before := testhelpers.Must(scene.Repo.GetRevision("a"))

		_, err = m.Commit(ctx, scene.Dir, CommitOptions{Branch: "a", Message: "fix a"})
		require.ErrorIs(t, err, gserrors.ErrBranchInWorktree)
		var wtErr *gserrors.BranchInWorktreeError
		require.ErrorAs(t, err, &wtErr)
		require.True(t, git.SamePath(wt, wtErr.Path))
		require.Equal(t, before, testhelpers.Must(scene.Repo.GetRevision("a")))
		testhelpers.ExpectCurrentBranch(t, scene.Repo, "b")
	})

	t.Run("nothing staged relative to the target", func(t *testing.T) {
		t.Parallel()
		m, scene := setupStack(t)
		// staging the removal of b's file leaves the index equal to a's tree
		require.NoError(t, scene.Repo.RunGitCommand("rm", "--cached", "-q", "b_test.txt"))

		_, err := m.Commit(ctx, scene.Dir, CommitOptions{Branch: "a", Message: "noop"})
		require.ErrorIs(t, err, gserrors.ErrNoStagedChanges)
	})

	t.Run("rejects a branch outside the stack", func(t *testing.T) {
		t.Parallel()
		m, scene := setupStack(t)
		require.NoError(t, scene.Repo.CreateChange("x", "x", false))

		_, err := m.Commit(ctx, scene.Dir, CommitOptions{Branch: "main", Message: "x"})
		require.ErrorIs(t, err, gserrors.ErrBranchNotInStack)
	})

	t.Run("requires a message unless amending", func(t *testing.T) {
		t.Parallel()
		m, scene := setupStack(t)

		_, err := m.Commit(ctx, scene.Dir, CommitOptions{})
		require.ErrorIs(t, err, gserrors.ErrValidation)
		require.NotErrorIs(t, err, gserrors.ErrInvalidName)
	})

	t.Run("commits to the current branch when there are no stacks", func(t *testing.T) {
		t.Parallel()
		m, scene := newTestManager(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateChange("loose", "loose", false))

		res, err := m.Commit(ctx, scene.Dir, CommitOptions{Message: "loose"})
		require.NoError(t, err)
		require.Equal(t, "main", res.Branch)
		require.False(t, res.BranchesAreStale)
	})
}
