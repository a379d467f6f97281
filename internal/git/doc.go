// Package git provides low-level Git operations.
//
// It wraps git command execution and provides a Go-friendly interface for:
//   - Branch management (create, checkout, existence probes)
//   - Merge operations (merge, continue, abort, conflict listing)
//   - Repo state queries (merge base, commit counts, staged changes)
//   - Worktree discovery (which branch is checked out where)
//   - Remote operations (push)
//
// Every command goes through an Invoker so callers can substitute a fake and
// cancel in-flight subprocesses through the context they pass in.
// This package should be the only place where direct git commands are executed.
package git
