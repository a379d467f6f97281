package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/model"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewFileStoreWithResolver(func(context.Context, string) (string, error) {
		return dir, nil
	})
	return s, dir
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestStackRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("preserves name, trunk, branch order and pr fields", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
		st := model.NewStack("feature", "main", now)
		st.Branches = []model.Branch{
			{Name: "c"},
			{Name: "a", PR: &model.PullRequest{Number: 12, URL: "https://example.com/pr/12", State: model.PRStateOpen}},
			{Name: "feat/b", PR: &model.PullRequest{Number: 13, State: model.PRStateMerged}},
		}
		require.NoError(t, s.SaveStack(ctx, "repo", st))

		loaded, err := s.LoadStack(ctx, "repo", "feature")
		require.NoError(t, err)
		require.Equal(t, st.Name, loaded.Name)
		require.Equal(t, st.Trunk, loaded.Trunk)
		require.Equal(t, st.Branches, loaded.Branches)
		require.WithinDuration(t, now, loaded.CreatedAt, time.Second)
		require.WithinDuration(t, now, loaded.UpdatedAt, time.Second)
	})

	t.Run("empty stack loads with empty branch list", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		require.NoError(t, s.SaveStack(ctx, "repo", model.NewStack("empty", "main", time.Now())))

		loaded, err := s.LoadStack(ctx, "repo", "empty")
		require.NoError(t, err)
		require.NotNil(t, loaded.Branches)
		require.Empty(t, loaded.Branches)
	})

	t.Run("save leaves no temporary files behind", func(t *testing.T) {
		t.Parallel()
		s, dir := newTestStore(t)

		require.NoError(t, s.SaveStack(ctx, "repo", model.NewStack("one", "main", time.Now())))
		require.NoError(t, s.SaveStack(ctx, "repo", model.NewStack("one", "develop", time.Now())))

		entries, err := os.ReadDir(filepath.Join(dir, stacksDir))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, "one.toml", entries[0].Name())
	})
}

func TestLoadStackErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing stack is not found", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		_, err := s.LoadStack(ctx, "repo", "nope")
		require.ErrorIs(t, err, gserrors.ErrStackNotFound)
	})

	t.Run("invalid name is rejected before touching disk", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		_, err := s.LoadStack(ctx, "repo", "../escape")
		require.ErrorIs(t, err, gserrors.ErrInvalidName)
	})

	t.Run("malformed document is corrupt state", func(t *testing.T) {
		t.Parallel()
		s, dir := newTestStore(t)

		require.NoError(t, os.MkdirAll(filepath.Join(dir, stacksDir), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, stacksDir, "bad.toml"), []byte("name = [unterminated"), 0o644))

		_, err := s.LoadStack(ctx, "repo", "bad")
		require.ErrorIs(t, err, gserrors.ErrCorruptState)
	})

	t.Run("duplicate branches are corrupt state", func(t *testing.T) {
		t.Parallel()
		s, dir := newTestStore(t)

		doc := "name = 'dup'\ntrunk = 'main'\n[[branches]]\nname = 'a'\n[[branches]]\nname = 'a'\n"
		require.NoError(t, os.MkdirAll(filepath.Join(dir, stacksDir), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, stacksDir, "dup.toml"), []byte(doc), 0o644))

		_, err := s.LoadStack(ctx, "repo", "dup")
		require.ErrorIs(t, err, gserrors.ErrCorruptState)
	})
}

func TestListAndDeleteStacks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, dir := newTestStore(t)

	names, err := s.ListStackNames(ctx, "repo")
	require.NoError(t, err)
	require.Empty(t, names)

	for _, n := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.SaveStack(ctx, "repo", model.NewStack(n, "main", time.Now())))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, stacksDir, "notes.txt"), []byte("x"), 0o644))

	names, err = s.ListStackNames(ctx, "repo")
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "mid", "zeta"}, names)

	exists, err := s.StackExists(ctx, "repo", "mid")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, s.DeleteStack(ctx, "repo", "mid"))
	exists, err = s.StackExists(ctx, "repo", "mid")
	require.NoError(t, err)
	require.False(t, exists)

	require.ErrorIs(t, s.DeleteStack(ctx, "repo", "mid"), gserrors.ErrStackNotFound)
}

func TestActiveMarker(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)

	name, err := s.LoadActive(ctx, "repo")
	require.NoError(t, err)
	require.Empty(t, name)

	require.NoError(t, s.SaveActive(ctx, "repo", "feature"))
	name, err = s.LoadActive(ctx, "repo")
	require.NoError(t, err)
	require.Equal(t, "feature", name)

	require.NoError(t, s.SaveActive(ctx, "repo", ""))
	require.NoError(t, s.SaveActive(ctx, "repo", ""))
	name, err = s.LoadActive(ctx, "repo")
	require.NoError(t, err)
	require.Empty(t, name)
}

func TestOperationState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("absent state loads as nil", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		state, err := s.LoadOperationState(ctx, "repo")
		require.NoError(t, err)
		require.Nil(t, state)
		require.NoError(t, s.ClearOperationState(ctx, "repo"))
	})

	t.Run("round trips optional fields", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		state := &model.OperationState{
			Operation:      model.OperationSync,
			StackName:      "feature",
			BranchIndex:    1,
			OriginalBranch: "main",
			SyncUpToIndex:  intPtr(2),
			WorktreePath:   strPtr("/tmp/wt/b"),
			Merged:         []string{"a"},
			Push:           true,
			Remote:         "origin",
			CreatedAt:      time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, s.SaveOperationState(ctx, "repo", state))

		loaded, err := s.LoadOperationState(ctx, "repo")
		require.NoError(t, err)
		require.Equal(t, state.StackName, loaded.StackName)
		require.Equal(t, state.BranchIndex, loaded.BranchIndex)
		require.Equal(t, state.OriginalBranch, loaded.OriginalBranch)
		require.Equal(t, 2, *loaded.SyncUpToIndex)
		require.Equal(t, "/tmp/wt/b", loaded.Worktree())
		require.Equal(t, []string{"a"}, loaded.Merged)
		require.True(t, loaded.Push)

		require.NoError(t, s.ClearOperationState(ctx, "repo"))
		loaded, err = s.LoadOperationState(ctx, "repo")
		require.NoError(t, err)
		require.Nil(t, loaded)
	})

	t.Run("unset optional fields stay nil", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)

		require.NoError(t, s.SaveOperationState(ctx, "repo", &model.OperationState{
			Operation:      model.OperationSync,
			StackName:      "feature",
			OriginalBranch: "main",
		}))

		loaded, err := s.LoadOperationState(ctx, "repo")
		require.NoError(t, err)
		require.Nil(t, loaded.SyncUpToIndex)
		require.Nil(t, loaded.WorktreePath)
		require.Empty(t, loaded.Worktree())
	})

	t.Run("malformed state is corrupt", func(t *testing.T) {
		t.Parallel()
		s, dir := newTestStore(t)

		require.NoError(t, os.WriteFile(filepath.Join(dir, operationFile), []byte("operation = 'rebase'\n"), 0o644))

		_, err := s.LoadOperationState(ctx, "repo")
		require.ErrorIs(t, err, gserrors.ErrCorruptState)
	})

	t.Run("invalid state is not written", func(t *testing.T) {
		t.Parallel()
		s, dir := newTestStore(t)

		err := s.SaveOperationState(ctx, "repo", &model.OperationState{Operation: model.OperationSync})
		require.Error(t, err)
		_, statErr := os.Stat(filepath.Join(dir, operationFile))
		require.True(t, os.IsNotExist(statErr))
	})
}
