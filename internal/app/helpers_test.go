package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// setupTestEnv points the global flags at files under a fresh temp dir and
// restores them afterwards. It returns the temp dir so tests can write their
// mapping and tracking fixtures into it.
func setupTestEnv(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	oldConfig, oldMapping, oldTracking, oldDistro, oldDB :=
		flagConfig, flagMapping, flagTracking, flagDistro, flagDB
	t.Cleanup(func() {
		flagConfig, flagMapping, flagTracking, flagDistro, flagDB =
			oldConfig, oldMapping, oldTracking, oldDistro, oldDB
	})

	flagConfig = filepath.Join(dir, "config.yaml") // absent: defaults apply
	flagMapping = filepath.Join(dir, "package_mappings.conf")
	flagTracking = filepath.Join(dir, "tracked_packages")
	flagDistro = "fedora"
	flagDB = filepath.Join(dir, "history.db")

	t.Setenv("NO_COLOR", "1")

	return dir
}

// writeFixture writes a test file and fails the test on error.
func writeFixture(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
}

// captureStdout runs fn while capturing everything written to os.Stdout.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	runErr := fn()

	w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}

	return buf.String(), runErr
}
