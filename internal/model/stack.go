package model

import (
	"regexp"
	"slices"
	"time"

	gserrors "gitstack.dev/gitstack/internal/errors"
)

var validStackNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// PRState is the review state of a pull request
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateMerged PRState = "merged"
	PRStateClosed PRState = "closed"
)

// Valid reports whether s is one of the known states
func (s PRState) Valid() bool {
	switch s {
	case PRStateOpen, PRStateMerged, PRStateClosed:
		return true
	}
	return false
}

// PullRequest is descriptive metadata about the review of a branch.
// The sync engine never reads it.
type PullRequest struct {
	Number int     `toml:"number" json:"number"`
	URL    string  `toml:"url,omitempty" json:"url,omitempty"`
	State  PRState `toml:"state" json:"state"`
}

// Branch is one rung of a stack
type Branch struct {
	Name string       `toml:"name" json:"name"`
	PR   *PullRequest `toml:"pr,omitempty" json:"pr,omitempty"`
}

// Stack is a named, ordered chain of branches rebuilt on top of a trunk.
// Branches[0] sits directly on the trunk; the last branch is the top.
type Stack struct {
	Name      string    `toml:"name" json:"name"`
	Trunk     string    `toml:"trunk" json:"trunk"`
	Branches  []Branch  `toml:"branches" json:"branches"`
	CreatedAt time.Time `toml:"created_at" json:"createdAt"`
	UpdatedAt time.Time `toml:"updated_at" json:"updatedAt"`
}

// NewStack creates an empty stack on trunk
func NewStack(name, trunk string, now time.Time) *Stack {
	return &Stack{
		Name:      name,
		Trunk:     trunk,
		Branches:  []Branch{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IndexOf returns the position of branch in the stack, or -1
func (s *Stack) IndexOf(branch string) int {
	return slices.IndexFunc(s.Branches, func(b Branch) bool { return b.Name == branch })
}

// Contains reports whether branch is part of the stack
func (s *Stack) Contains(branch string) bool {
	return s.IndexOf(branch) >= 0
}

// BranchNames returns the branch names in cascade order
func (s *Stack) BranchNames() []string {
	names := make([]string, len(s.Branches))
	for i, b := range s.Branches {
		names[i] = b.Name
	}
	return names
}

// Top returns the last branch, or false for an empty stack
func (s *Stack) Top() (Branch, bool) {
	if len(s.Branches) == 0 {
		return Branch{}, false
	}
	return s.Branches[len(s.Branches)-1], true
}

// ParentOf returns the branch a given index merges from: the trunk for
// index 0, otherwise the preceding branch.
func (s *Stack) ParentOf(index int) string {
	if index <= 0 {
		return s.Trunk
	}
	return s.Branches[index-1].Name
}

// Touch refreshes UpdatedAt
func (s *Stack) Touch(now time.Time) {
	s.UpdatedAt = now
}

// Validate checks the invariants a loaded stack must satisfy
func (s *Stack) Validate() error {
	if err := ValidateStackName(s.Name); err != nil {
		return err
	}
	if s.Trunk == "" {
		return gserrors.NewValidationError(gserrors.FieldTrunk, "", "trunk is required")
	}
	seen := make(map[string]bool, len(s.Branches))
	for _, b := range s.Branches {
		if b.Name == "" {
			return gserrors.NewValidationError(gserrors.FieldBranch, "", "branch name is required")
		}
		if seen[b.Name] {
			return gserrors.NewValidationError(gserrors.FieldBranch, b.Name, "listed more than once")
		}
		seen[b.Name] = true
		if b.PR != nil && !b.PR.State.Valid() {
			return gserrors.NewValidationError("pr state", string(b.PR.State), "must be open, merged or closed")
		}
	}
	return nil
}

// ValidateStackName checks that a stack name is safe to use as a file name
func ValidateStackName(name string) error {
	if name == "" {
		return gserrors.NewValidationError(gserrors.FieldStackName, name, "name is required")
	}
	if name == "." || name == ".." || !validStackNameRegex.MatchString(name) {
		return gserrors.NewValidationError(gserrors.FieldStackName, name,
			"only letters, numbers, dots, underscores, and hyphens are allowed")
	}
	return nil
}
