package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	gserrors "gitstack.dev/gitstack/internal/errors"
)

func TestValidateStackName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "feature", true},
		{"dots dashes underscores", "v1.2_auth-rework", true},
		{"empty", "", false},
		{"slash", "team/feature", false},
		{"space", "my stack", false},
		{"dot", ".", false},
		{"dot dot", "..", false},
		{"unicode", "fé", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStackName(tt.input)
			if tt.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, gserrors.ErrInvalidName)
			}
		})
	}
}

func TestStackNavigation(t *testing.T) {
	t.Parallel()

	s := NewStack("feature", "main", time.Now())
	_, ok := s.Top()
	require.False(t, ok)
	require.Equal(t, -1, s.IndexOf("a"))

	s.Branches = []Branch{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	require.Equal(t, "main", s.ParentOf(0))
	require.Equal(t, "a", s.ParentOf(1))
	require.Equal(t, "b", s.ParentOf(2))
	require.Equal(t, 1, s.IndexOf("b"))
	require.True(t, s.Contains("c"))
	require.False(t, s.Contains("main"))
	require.Equal(t, []string{"a", "b", "c"}, s.BranchNames())

	top, ok := s.Top()
	require.True(t, ok)
	require.Equal(t, "c", top.Name)
}

func TestStackValidate(t *testing.T) {
	t.Parallel()

	s := NewStack("feature", "main", time.Now())
	s.Branches = []Branch{{Name: "a"}, {Name: "a"}}
	require.Error(t, s.Validate())

	s.Branches = []Branch{{Name: "a", PR: &PullRequest{Number: 1, State: "draft"}}}
	require.Error(t, s.Validate())

	s.Branches = []Branch{{Name: "a", PR: &PullRequest{Number: 1, State: PRStateClosed}}}
	require.NoError(t, s.Validate())

	s.Trunk = ""
	require.Error(t, s.Validate())
}

func TestOperationStateEndIndex(t *testing.T) {
	t.Parallel()

	state := &OperationState{Operation: OperationSync, StackName: "s", OriginalBranch: "main"}
	require.Equal(t, 4, state.EndIndex(4))

	upTo := 1
	state.SyncUpToIndex = &upTo
	require.Equal(t, 2, state.EndIndex(4))

	// A stack that shrank below the recorded bound is clamped
	upTo = 9
	require.Equal(t, 3, state.EndIndex(3))

	state.BranchIndex = 10
	require.Error(t, state.Validate())
}
