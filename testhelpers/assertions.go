// Package testhelpers provides testing utilities for gitstack,
// including a scene system, Git repository helpers, and custom assertions.
package testhelpers

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Must is a generic helper function that panics if err is not nil,
// otherwise returns the value. Useful in setup code where errors are not expected.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// ExpectBranches asserts that the repository has exactly the expected local branches.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("for-each-ref", "refs/heads/", "--format=%(refname:short)")
	require.NoError(t, err, "Failed to list branches")

	branches := splitLines(output)
	sort.Strings(branches)
	want := append([]string(nil), expected...)
	sort.Strings(want)

	require.Equal(t, want, branches, "Branches do not match")
}

// ExpectCurrentBranch asserts the checked-out branch of the main working copy.
func ExpectCurrentBranch(t *testing.T, repo *GitRepo, expected string) {
	t.Helper()
	current, err := repo.CurrentBranchName()
	require.NoError(t, err)
	require.Equal(t, expected, current)
}

// ExpectAncestor asserts that ancestor is reachable from descendant.
func ExpectAncestor(t *testing.T, repo *GitRepo, ancestor, descendant string) {
	t.Helper()
	require.True(t, repo.IsAncestor(ancestor, descendant), "%s is not an ancestor of %s", ancestor, descendant)
}

func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
