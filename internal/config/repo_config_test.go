package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string { return &s }

func TestGetRepoConfig(t *testing.T) {
	t.Run("returns empty config when file does not exist", func(t *testing.T) {
		cfg, err := GetRepoConfig(t.TempDir())
		require.NoError(t, err)
		require.Nil(t, cfg.Remote)
		require.Nil(t, cfg.PushOnSync)
	})

	t.Run("round trips through the toml file", func(t *testing.T) {
		dir := t.TempDir()
		noPush := false
		require.NoError(t, SaveRepoConfig(dir, &RepoConfig{Remote: stringPtr("upstream"), PushOnSync: &noPush}))

		cfg, err := GetRepoConfig(dir)
		require.NoError(t, err)
		require.Equal(t, "upstream", *cfg.Remote)
		require.False(t, *cfg.PushOnSync)
	})

	t.Run("fails on malformed file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(Path(dir), []byte("remote = "), 0600))

		_, err := GetRepoConfig(dir)
		require.Error(t, err)
	})
}

func TestDefaultsAndOverrides(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvRemote, "")
		t.Setenv(EnvNoPush, "")
		cfg := &RepoConfig{}
		require.Equal(t, DefaultRemote, cfg.GetRemote())
		require.True(t, cfg.GetPushOnSync())
		require.Empty(t, cfg.GetWorktreeDir())
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv(EnvRemote, "fork")
		t.Setenv(EnvNoPush, "1")
		enabled := true
		cfg := &RepoConfig{Remote: stringPtr("upstream"), PushOnSync: &enabled}
		require.Equal(t, "fork", cfg.GetRemote())
		require.False(t, cfg.GetPushOnSync())
	})

	t.Run("unparseable no-push value is ignored", func(t *testing.T) {
		t.Setenv(EnvRemote, "")
		t.Setenv(EnvNoPush, "sometimes")
		require.True(t, (&RepoConfig{}).GetPushOnSync())
	})
}

func TestGetSet(t *testing.T) {
	t.Setenv(EnvRemote, "")
	t.Setenv(EnvNoPush, "")

	cfg := &RepoConfig{}
	require.NoError(t, cfg.Set("remote", "upstream"))
	require.NoError(t, cfg.Set("push_on_sync", "false"))

	v, err := cfg.Get("remote")
	require.NoError(t, err)
	require.Equal(t, "upstream", v)

	v, err = cfg.Get("push_on_sync")
	require.NoError(t, err)
	require.Equal(t, "false", v)

	require.Error(t, cfg.Set("push_on_sync", "maybe"))
	require.Error(t, cfg.Set("remote", "  "))
	require.Error(t, cfg.Set("colour", "red"))
	_, err = cfg.Get("colour")
	require.Error(t, err)

	require.NoError(t, cfg.Set("worktree_dir", "/tmp/wts"))
	require.Equal(t, "/tmp/wts", cfg.GetWorktreeDir())
	require.NoError(t, cfg.Set("worktree_dir", ""))
	require.Empty(t, cfg.GetWorktreeDir())
}
