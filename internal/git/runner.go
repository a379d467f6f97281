package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	gserrors "gitstack.dev/gitstack/internal/errors"
)

// Result is the outcome of one git invocation
type Result struct {
	Success bool
	Stdout  string
	Stderr  string
}

// Output returns stdout without surrounding whitespace
func (r Result) Output() string {
	return strings.TrimSpace(r.Stdout)
}

// Lines splits trimmed stdout into lines, returning an empty slice for no output
func (r Result) Lines() []string {
	out := r.Output()
	if out == "" {
		return []string{}
	}
	return strings.Split(out, "\n")
}

// Invoker runs git with the given arguments in dir.
// A non-zero exit status is reported through Result.Success; the error is
// reserved for commands that could not run at all or were cancelled.
type Invoker interface {
	Run(ctx context.Context, dir string, args ...string) (Result, error)
}

// CommandRunner is the Invoker backed by the git binary on PATH
type CommandRunner struct {
	// Binary defaults to "git"
	Binary string
	// Env is appended to the inherited environment
	Env []string
}

// NewCommandRunner creates a new CommandRunner
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{Binary: "git"}
}

// Run executes git and captures stdout and stderr.
// The subprocess is killed when ctx is cancelled.
func (r *CommandRunner) Run(ctx context.Context, dir string, args ...string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	binary := r.Binary
	if binary == "" {
		binary = "git"
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Success: err == nil, Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, gserrors.NewGitCommandError(binary, args, res.Stdout, res.Stderr, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, nil
	}
	return res, gserrors.NewGitCommandError(binary, args, res.Stdout, res.Stderr, err)
}
