//go:build integration

package integration_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpm-labs/cpm/internal/cli"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir    string // CPM_HOME: config.yaml, storage/, templates/
	ProjectDir string // a mock work tree
}

// StorageDir returns the storage tree of project name.
func (e *testEnv) StorageDir(name string) string {
	return filepath.Join(e.HomeDir, "storage", name)
}

// setupTestEnv creates isolated temp directories and points CPM_HOME at one
// of them so every cpm operation is sandboxed. The env var is restored
// after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:    t.TempDir(),
		ProjectDir: filepath.Join(t.TempDir(), "webshop"),
	}
	t.Setenv("CPM_HOME", env.HomeDir)

	if err := os.MkdirAll(env.ProjectDir, 0755); err != nil {
		t.Fatalf("creating project dir: %v", err)
	}
	return env
}

// setupTemplate writes a template into the sandboxed templates root.
func setupTemplate(t *testing.T, homeDir, name, version, claudeMD string) string {
	t.Helper()

	dir := filepath.Join(homeDir, "templates", name)
	writeFile(t, filepath.Join(dir, "template.yaml"), fmt.Sprintf(`name: %s
version: "%s"
icon: "*"
description: Test template %s
`, name, version, version))
	writeFile(t, filepath.Join(dir, "CLAUDE.md"), claudeMD)
	writeFile(t, filepath.Join(dir, "settings.json"), `{"permissions":{"allow":["Bash(go test:*)"],"deny":[]}}`)
	writeFile(t, filepath.Join(dir, "commands", "ship.md"), "Ship version "+version+"\n")
	return dir
}

// runCLI executes cpm with args and returns its stdout. stdin feeds prompts.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := cli.Run(args, strings.NewReader(stdin), &out, &errOut)
	if errOut.Len() > 0 {
		t.Logf("cpm %s stderr:\n%s", strings.Join(args, " "), errOut.String())
	}
	return out.String(), err
}

// mustRunCLI is runCLI that fails the test on error.
func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatalf("cpm %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

// writeFile creates a file with the given content, creating parent dirs.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertSymlink fails unless path is a symlink whose raw target is want.
func assertSymlink(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.Readlink(path)
	if err != nil {
		t.Errorf("expected %s to be a symlink: %v", path, err)
		return
	}
	if got != want {
		t.Errorf("symlink %s -> %q, want %q", path, got, want)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
