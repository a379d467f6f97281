package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	fileName = "config.toml"

	// DefaultRemote is used for pushes when nothing is configured
	DefaultRemote = "origin"

	// EnvRemote overrides the configured remote
	EnvRemote = "GITSTACK_REMOTE"
	// EnvNoPush disables pushing after a sync when set to a true value
	EnvNoPush = "GITSTACK_NO_PUSH"
)

// Keys lists the settable configuration keys
var Keys = []string{"remote", "push_on_sync", "worktree_dir"}

// RepoConfig represents the repository configuration
type RepoConfig struct {
	Remote      *string `toml:"remote,omitempty"`
	PushOnSync  *bool   `toml:"push_on_sync,omitempty"`
	WorktreeDir *string `toml:"worktree_dir,omitempty"`
}

// Path returns the config file location inside a metadata directory
func Path(metaDir string) string {
	return filepath.Join(metaDir, fileName)
}

// GetRepoConfig reads the repository configuration from metaDir.
// A missing file yields an empty config.
func GetRepoConfig(metaDir string) (*RepoConfig, error) {
	data, err := os.ReadFile(Path(metaDir))
	if err != nil {
		if os.IsNotExist(err) {
			return &RepoConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read repo config: %w", err)
	}

	var config RepoConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse repo config: %w", err)
	}
	return &config, nil
}

// SaveRepoConfig writes the repository configuration to metaDir
func SaveRepoConfig(metaDir string, config *RepoConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", metaDir, err)
	}
	return os.WriteFile(Path(metaDir), data, 0600)
}

// GetRemote returns the push remote: GITSTACK_REMOTE, then config, then "origin"
func (c *RepoConfig) GetRemote() string {
	if env := os.Getenv(EnvRemote); env != "" {
		return env
	}
	if c.Remote != nil && *c.Remote != "" {
		return *c.Remote
	}
	return DefaultRemote
}

// GetPushOnSync returns whether a sync pushes merged branches, true by default.
// GITSTACK_NO_PUSH wins over the config file.
func (c *RepoConfig) GetPushOnSync() bool {
	if env := os.Getenv(EnvNoPush); env != "" {
		if noPush, err := strconv.ParseBool(env); err == nil {
			return !noPush
		}
	}
	if c.PushOnSync != nil {
		return *c.PushOnSync
	}
	return true
}

// GetWorktreeDir returns the base directory for new worktrees, or "" for the default
func (c *RepoConfig) GetWorktreeDir() string {
	if c.WorktreeDir == nil {
		return ""
	}
	return *c.WorktreeDir
}

// Get returns the effective value of key as a string
func (c *RepoConfig) Get(key string) (string, error) {
	switch key {
	case "remote":
		return c.GetRemote(), nil
	case "push_on_sync":
		return strconv.FormatBool(c.GetPushOnSync()), nil
	case "worktree_dir":
		return c.GetWorktreeDir(), nil
	}
	return "", unknownKey(key)
}

// Set parses value and stores it under key
func (c *RepoConfig) Set(key, value string) error {
	switch key {
	case "remote":
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Errorf("remote cannot be empty")
		}
		c.Remote = &value
	case "push_on_sync":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("push_on_sync must be true or false, got %q", value)
		}
		c.PushOnSync = &b
	case "worktree_dir":
		if value == "" {
			c.WorktreeDir = nil
			return nil
		}
		abs, err := filepath.Abs(value)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", value, err)
		}
		c.WorktreeDir = &abs
	default:
		return unknownKey(key)
	}
	return nil
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
}
