package testhelpers

import (
	"os"
	"path/filepath"
	"testing"

	"gitstack.dev/gitstack/internal/git"
)

// Scene represents a test scene with a temporary directory and Git repository.
// Scenes never change the process working directory, so tests using them can
// run in parallel.
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene with a temporary directory and Git repository.
// Cleanup is registered with t; set DEBUG to keep the directory around.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "gitstack-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	// Resolve symlinks so paths compare equal to what git reports (macOS /var).
	if resolved, err := filepath.EvalSymlinks(tmpDir); err == nil {
		tmpDir = resolved
	}
	t.Cleanup(func() {
		if os.Getenv("DEBUG") == "" {
			_ = os.RemoveAll(tmpDir)
		}
	})

	repoDir := filepath.Join(tmpDir, "repo")
	repo, err := NewGitRepo(repoDir)
	if err != nil {
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{Dir: repoDir, Repo: repo}
	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}
	return scene
}

// Runner returns a git.CommandRunner isolated from the developer's git config
func (s *Scene) Runner() *git.CommandRunner {
	r := git.NewCommandRunner()
	r.Env = GitEnv()
	return r
}

// BasicSceneSetup is a setup function that creates a basic scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// StackSceneSetup creates main with one commit and branches a and b stacked on it,
// each with a commit of its own, leaving main checked out.
func StackSceneSetup(scene *Scene) error {
	steps := []func() error{
		func() error { return scene.Repo.CreateChangeAndCommit("1", "1") },
		func() error { return scene.Repo.CreateAndCheckoutBranch("a") },
		func() error { return scene.Repo.CreateChangeAndCommit("a1", "a") },
		func() error { return scene.Repo.CreateAndCheckoutBranch("b") },
		func() error { return scene.Repo.CreateChangeAndCommit("b1", "b") },
		func() error { return scene.Repo.CheckoutBranch("main") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
