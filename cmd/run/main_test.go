package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, body string, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), mode); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// setupRoot points the dispatcher at a temp task collection via config so
// the test does not depend on where the test binary lives.
func setupRoot(t *testing.T) (root, cfgPath string) {
	t.Helper()
	root = t.TempDir()
	writeFile(t, filepath.Join(root, "ok"), "#!/bin/sh\nexit 0\n", 0o755)
	writeFile(t, filepath.Join(root, "boom"), "#!/bin/sh\nexit 5\n", 0o755)
	writeFile(t, filepath.Join(root, "job", "run"), "#!/bin/sh\nexit 0\n", 0o755)

	cfgPath = filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, cfgPath, "tasks:\n  root: "+root+"\nlogging:\n  console: false\n", 0o644)
	return root, cfgPath
}

func TestRunExitCodePassThrough(t *testing.T) {
	_, cfgPath := setupRoot(t)

	if code := run([]string{"-config", cfgPath, "ok"}); code != 0 {
		t.Fatalf("ok exit = %d, want 0", code)
	}
	if code := run([]string{"-config", cfgPath, "boom"}); code != 5 {
		t.Fatalf("boom exit = %d, want 5", code)
	}
	if code := run([]string{"-config", cfgPath, "job"}); code != 0 {
		t.Fatalf("job exit = %d, want 0", code)
	}
}

func TestRunTaskNotFound(t *testing.T) {
	_, cfgPath := setupRoot(t)
	if code := run([]string{"-config", cfgPath, "nonexistent-task"}); code != exitNotFound {
		t.Fatalf("exit = %d, want %d", code, exitNotFound)
	}
}

func TestRunUsage(t *testing.T) {
	_, cfgPath := setupRoot(t)
	if code := run([]string{"-config", cfgPath}); code != 2 {
		t.Fatalf("exit = %d, want 2 for missing task name", code)
	}
	if code := run([]string{"-bogus-flag"}); code != 2 {
		t.Fatalf("exit = %d, want 2 for bad flag", code)
	}
}

func TestRunList(t *testing.T) {
	_, cfgPath := setupRoot(t)
	if code := run([]string{"-config", cfgPath, "-list"}); code != 0 {
		t.Fatalf("list exit = %d, want 0", code)
	}
}
