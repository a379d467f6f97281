// Package errors provides sentinel errors and custom error types for gitstack.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNoStacks indicates that the repository has no stack definitions at all
	ErrNoStacks = errors.New("no stacks")

	// ErrAmbiguousActiveStack indicates that no stack is active and more than one exists
	ErrAmbiguousActiveStack = errors.New("no active stack selected")

	// ErrStackNotFound indicates that a stack definition does not exist
	ErrStackNotFound = errors.New("stack not found")

	// ErrStackExists indicates that a stack definition with the same name already exists
	ErrStackExists = errors.New("stack already exists")

	// ErrBranchNotFound indicates that a branch does not exist in the repository
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBranchExists indicates that a branch already exists in the repository
	ErrBranchExists = errors.New("branch already exists")

	// ErrBranchNotInStack indicates that a branch is not part of the stack
	ErrBranchNotInStack = errors.New("branch not in stack")

	// ErrBranchAlreadyInStack indicates that a branch is already part of the stack
	ErrBranchAlreadyInStack = errors.New("branch already in stack")

	// ErrEmptyStack indicates an operation that needs at least one branch
	ErrEmptyStack = errors.New("stack is empty")

	// ErrValidation indicates input rejected before any side effect
	ErrValidation = errors.New("invalid input")

	// ErrInvalidName indicates a stack, branch or trunk name that fails validation
	ErrInvalidName = errors.New("invalid name")

	// ErrNotGitRepository indicates the target path is not a git repository
	ErrNotGitRepository = errors.New("not a git repository")

	// ErrNoOperationInProgress indicates that there is no interrupted sync to continue
	ErrNoOperationInProgress = errors.New("no operation in progress")

	// ErrOperationInProgress indicates that an interrupted sync must be continued or aborted first
	ErrOperationInProgress = errors.New("operation in progress")

	// ErrNoStagedChanges indicates a commit was requested with nothing staged
	ErrNoStagedChanges = errors.New("no staged changes")

	// ErrBranchInWorktree indicates a branch that is checked out in a linked worktree
	ErrBranchInWorktree = errors.New("branch is checked out in another worktree")

	// ErrCorruptState indicates a persisted document that cannot be trusted
	ErrCorruptState = errors.New("corrupt state")

	// ErrLocked indicates another gitstack command holds the repository lock
	ErrLocked = errors.New("repository is locked by another gitstack command")
)

// AmbiguousActiveStackError lists the stacks the caller could pick from
type AmbiguousActiveStackError struct {
	Names []string
}

func (e *AmbiguousActiveStackError) Error() string {
	return fmt.Sprintf("no active stack selected and multiple stacks exist (%s); run 'gitstack use <name>'",
		strings.Join(e.Names, ", "))
}

// Is returns true if the target error is ErrAmbiguousActiveStack
func (e *AmbiguousActiveStackError) Is(target error) bool {
	return target == ErrAmbiguousActiveStack
}

// NewAmbiguousActiveStackError creates a new AmbiguousActiveStackError
func NewAmbiguousActiveStackError(names []string) *AmbiguousActiveStackError {
	return &AmbiguousActiveStackError{Names: names}
}

// NotFoundKind says what kind of thing was missing
type NotFoundKind string

const (
	KindStack       NotFoundKind = "stack"
	KindBranch      NotFoundKind = "branch"
	KindStackBranch NotFoundKind = "stack branch"
)

// NotFoundError represents a missing stack or branch
type NotFoundError struct {
	Kind  NotFoundKind
	Name  string
	Stack string
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case KindStackBranch:
		return fmt.Sprintf("branch %s is not in stack %s", e.Name, e.Stack)
	case KindStack:
		return fmt.Sprintf("stack %s does not exist", e.Name)
	default:
		return fmt.Sprintf("branch %s does not exist", e.Name)
	}
}

// Is maps the kind onto its sentinel
func (e *NotFoundError) Is(target error) bool {
	switch e.Kind {
	case KindStack:
		return target == ErrStackNotFound
	case KindStackBranch:
		return target == ErrBranchNotInStack
	default:
		return target == ErrBranchNotFound
	}
}

// NewStackNotFoundError creates a NotFoundError for a stack
func NewStackNotFoundError(name string) *NotFoundError {
	return &NotFoundError{Kind: KindStack, Name: name}
}

// NewBranchNotFoundError creates a NotFoundError for a repository branch
func NewBranchNotFoundError(name string) *NotFoundError {
	return &NotFoundError{Kind: KindBranch, Name: name}
}

// NewBranchNotInStackError creates a NotFoundError for a branch missing from a stack
func NewBranchNotInStackError(branch, stack string) *NotFoundError {
	return &NotFoundError{Kind: KindStackBranch, Name: branch, Stack: stack}
}

// Field names used by ValidationError for names
const (
	FieldStackName = "stack name"
	FieldBranch    = "branch"
	FieldTrunk     = "trunk"
)

// ValidationError represents input rejected before any side effect
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Reason)
}

// Is matches ErrValidation, and ErrInvalidName when the field is a name
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return true
	case ErrInvalidName:
		return e.IsName()
	}
	return false
}

// IsName reports whether the rejected field names a stack, branch or trunk
func (e *ValidationError) IsName() bool {
	switch e.Field {
	case FieldStackName, FieldBranch, FieldTrunk:
		return true
	}
	return false
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// BranchInWorktreeError names the linked worktree that holds a branch
type BranchInWorktreeError struct {
	Branch string
	Path   string
}

func (e *BranchInWorktreeError) Error() string {
	return fmt.Sprintf("branch %s is checked out in worktree %s; run the command from there", e.Branch, e.Path)
}

// Is returns true if the target error is ErrBranchInWorktree
func (e *BranchInWorktreeError) Is(target error) bool {
	return target == ErrBranchInWorktree
}

// NewBranchInWorktreeError creates a new BranchInWorktreeError
func NewBranchInWorktreeError(branch, path string) *BranchInWorktreeError {
	return &BranchInWorktreeError{Branch: branch, Path: path}
}

// CorruptStateError represents a persisted document that failed to parse or validate
type CorruptStateError struct {
	Path string
	Err  error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt state in %s: %v (run 'gitstack abort' or remove the file manually)", e.Path, e.Err)
}

// Is returns true if the target error is ErrCorruptState
func (e *CorruptStateError) Is(target error) bool {
	return target == ErrCorruptState
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

// NewCorruptStateError creates a new CorruptStateError
func NewCorruptStateError(path string, err error) *CorruptStateError {
	return &CorruptStateError{Path: path, Err: err}
}

// OperationInProgressError is returned when a sync is requested while another one waits on a conflict
type OperationInProgressError struct {
	Stack  string
	Branch string
}

func (e *OperationInProgressError) Error() string {
	return fmt.Sprintf("a sync of stack %s is halted on a conflict in %s; run 'gitstack continue' or 'gitstack abort' first",
		e.Stack, e.Branch)
}

// Is returns true if the target error is ErrOperationInProgress
func (e *OperationInProgressError) Is(target error) bool {
	return target == ErrOperationInProgress
}

// NewOperationInProgressError creates a new OperationInProgressError
func NewOperationInProgressError(stack, branch string) *OperationInProgressError {
	return &OperationInProgressError{Stack: stack, Branch: branch}
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
