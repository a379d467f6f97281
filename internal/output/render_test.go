package output_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitstack.dev/gitstack/internal/model"
	"gitstack.dev/gitstack/internal/output"
	"gitstack.dev/gitstack/internal/stack"
	"gitstack.dev/gitstack/internal/sync"
)

func newPlainRenderer() *output.Renderer {
	return output.NewRenderer(&bytes.Buffer{}, false)
}

func TestRenderer_Stack(t *testing.T) {
	t.Parallel()

	t.Run("lists branches top first and ends with the trunk", func(t *testing.T) {
		t.Parallel()
		s := model.NewStack("feature", "main", time.Now())
		s.Branches = []model.Branch{{Name: "a"}, {Name: "b", PR: &model.PullRequest{Number: 12, State: model.PRStateOpen}}}

		out := newPlainRenderer().Stack(s, true, "a")

		require.Equal(t, "feature (active)\n  ○ b #12 open\n  ● a\n  ┴ main\n", out)
	})

	t.Run("empty stack", func(t *testing.T) {
		t.Parallel()
		s := model.NewStack("empty", "main", time.Now())

		out := newPlainRenderer().Stack(s, false, "main")

		require.Contains(t, out, "(no branches)")
		require.NotContains(t, out, "(active)")
	})
}

func TestRenderer_List(t *testing.T) {
	t.Parallel()

	r := newPlainRenderer()
	require.Equal(t, "  a\n* b\n", r.List(&stack.Listing{Names: []string{"a", "b"}, Active: "b"}))
	require.Contains(t, r.List(&stack.Listing{}), "No stacks")
}

func TestRenderer_SyncResult(t *testing.T) {
	t.Parallel()

	res := &sync.Result{
		Stack: "feature",
		Trunk: "main",
		Branches: []sync.BranchResult{
			{Name: "a", Parent: "main", Status: sync.StatusMerged, Commits: 1},
			{Name: "b", Parent: "a", Status: sync.StatusUpToDate, Commits: 3},
			{Name: "c", Parent: "b", Status: sync.StatusConflict, ConflictFiles: []string{"x.txt"}},
		},
		HasConflict:  true,
		Pushed:       []string{"a"},
		PushWarnings: []string{"failed to push branch b\nremote rejected"},
	}

	out := newPlainRenderer().SyncResult(res)

	require.Contains(t, out, "✓ a merged main, 1 commit")
	require.Contains(t, out, "= b up to date with a, 3 commits")
	require.Contains(t, out, "✗ c conflict merging b")
	require.Contains(t, out, "      x.txt")
	require.Contains(t, out, "↑ pushed a")
	require.Contains(t, out, "⚠ failed to push branch b\n")
	require.NotContains(t, out, "remote rejected")
	require.Contains(t, out, "gitstack continue")
}

func TestRenderer_Pending(t *testing.T) {
	t.Parallel()

	r := newPlainRenderer()
	require.Equal(t, "No sync in progress.\n", r.Pending(nil))

	wt := "/tmp/wt-b"
	p := &sync.Pending{
		State:  &model.OperationState{Operation: model.OperationSync, StackName: "feature", BranchIndex: 1, OriginalBranch: "main", WorktreePath: &wt},
		Branch: "b",
		Parent: "a",
	}
	out := r.Pending(p)
	require.Contains(t, out, "Sync of feature halted on b (merging a)")
	require.Contains(t, out, "worktree: /tmp/wt-b")
	require.Contains(t, out, "all conflicts resolved")
	require.Contains(t, out, "returns to main")
}

func TestRenderer_Abort(t *testing.T) {
	t.Parallel()

	r := newPlainRenderer()
	require.Equal(t, "Aborted merge in progress.\n", r.Abort(&sync.AbortResult{AbortedMerge: true}))
	out := r.Abort(&sync.AbortResult{Stack: "feature", OriginalBranch: "a", Warnings: []string{"merge abort failed"}})
	require.Contains(t, out, "Aborted sync of feature; back on a.")
	require.Contains(t, out, "⚠ merge abort failed")
}

func TestRenderer_Commit(t *testing.T) {
	t.Parallel()

	r := newPlainRenderer()
	out := r.Commit(&stack.CommitResult{Branch: "a", CommitID: "0123456789abcdef"})
	require.Equal(t, "Committed 0123456 on a.\n", out)

	out = r.Commit(&stack.CommitResult{Branch: "a", CommitID: "abc", BranchesAreStale: true, StaleBranches: []string{"b", "c"}})
	require.Contains(t, out, "Branches above are now stale: b, c")
	require.Contains(t, out, "gitstack sync")
}

func TestColorEnabled(t *testing.T) {
	require.False(t, output.ColorEnabled(&bytes.Buffer{}))

	t.Setenv("NO_COLOR", "1")
	require.False(t, output.ColorEnabled(&bytes.Buffer{}))
}
