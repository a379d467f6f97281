package runtime_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/runtime"
	"gitstack.dev/gitstack/testhelpers"
)

func TestNewContext(t *testing.T) {
	t.Parallel()

	t.Run("resolves the repository from a subdirectory", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.WriteFile("sub/file.txt", "x"))

		rt, err := runtime.NewContext(context.Background(), runtime.Options{
			Dir: filepath.Join(scene.Dir, "sub"),
			Out: &bytes.Buffer{},
			Git: scene.Runner(),
		})
		require.NoError(t, err)
		t.Cleanup(func() { _ = rt.Close() })

		require.True(t, samePath(rt.RepoRoot, scene.Dir))
		require.Equal(t, "gitstack", filepath.Base(rt.MetaDir))
		require.True(t, samePath(filepath.Dir(rt.MetaDir), filepath.Join(scene.Dir, ".git")))
		require.Equal(t, "origin", rt.Config.GetRemote())
	})

	t.Run("outside a repository", func(t *testing.T) {
		t.Parallel()
		_, err := runtime.NewContext(context.Background(), runtime.Options{
			Dir: t.TempDir(),
			Out: &bytes.Buffer{},
		})
		require.ErrorIs(t, err, gserrors.ErrNotGitRepository)
	})

	t.Run("lock is exclusive", func(t *testing.T) {
		t.Parallel()
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		rt, err := runtime.NewContext(context.Background(), runtime.Options{Dir: scene.Dir, Out: &bytes.Buffer{}, Git: scene.Runner()})
		require.NoError(t, err)

		l, err := rt.Lock()
		require.NoError(t, err)
		_, err = rt.Lock()
		require.ErrorIs(t, err, gserrors.ErrLocked)
		require.NoError(t, l.Release())
	})
}

func samePath(a, b string) bool {
	ea, errA := filepath.EvalSymlinks(a)
	eb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ea == eb
}
