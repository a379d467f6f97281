package cli_test

import (
	"bytes"
	"os"
	"testing"

	"gitstack.dev/gitstack/internal/cli"
	"gitstack.dev/gitstack/testhelpers"
)

func TestMain(m *testing.M) {
	// Prompts would block a test run
	_ = os.Setenv("GITSTACK_NO_INTERACTIVE", "1")
	_ = os.Setenv("NO_COLOR", "1")
	os.Exit(m.Run())
}

// runCLI executes gitstack with args against the scene's repository
func runCLI(t *testing.T, scene *testhelpers.Scene, args ...string) (string, error) {
	t.Helper()
	return runCLIIn(t, scene, scene.Dir, args...)
}

func runCLIIn(t *testing.T, scene *testhelpers.Scene, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd("test", cli.WithGit(scene.Runner()), cli.WithLogFile(""))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--repo", dir))
	err := cmd.Execute()
	return out.String(), err
}

// mustRun executes gitstack and fails the test on error
func mustRun(t *testing.T, scene *testhelpers.Scene, args ...string) string {
	t.Helper()
	out, err := runCLI(t, scene, args...)
	if err != nil {
		t.Fatalf("gitstack %v failed: %v\n%s", args, err, out)
	}
	return out
}

// newStackScene returns a repository with stack feature holding a then b, b checked out
func newStackScene(t *testing.T) *testhelpers.Scene {
	t.Helper()
	scene := testhelpers.NewScene(t, testhelpers.StackSceneSetup)
	mustRun(t, scene, "init", "feature", "--base", "main")
	mustRun(t, scene, "push", "a")
	mustRun(t, scene, "push", "b")
	return scene
}
