package lock_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	gserrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/lock"
)

func TestAcquire(t *testing.T) {
	t.Parallel()

	t.Run("second holder is refused until release", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		first, err := lock.Acquire(dir)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, lock.FileName), first.Path())

		_, err = lock.Acquire(dir)
		require.ErrorIs(t, err, gserrors.ErrLocked)

		require.NoError(t, first.Release())

		second, err := lock.Acquire(dir)
		require.NoError(t, err)
		require.NoError(t, second.Release())
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()
		_, err := lock.Acquire(filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		require.NotErrorIs(t, err, gserrors.ErrLocked)
	})
}
