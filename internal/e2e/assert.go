package e2e

import (
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"
)

// AssertSuccess fails the test if the command returned an error.
func AssertSuccess(t *testing.T, r *Result) {
	t.Helper()
	if !r.Success() {
		t.Fatalf("command failed: %v\nstdout:\n%s", r.Err, r.Stdout)
	}
}

// AssertError fails the test if the command succeeded.
func AssertError(t *testing.T, r *Result) {
	t.Helper()
	if r.Success() {
		t.Fatalf("command succeeded, expected a failure\nstdout:\n%s", r.Stdout)
	}
}

// AssertExitCode fails the test if the exit code differs.
func AssertExitCode(t *testing.T, r *Result, want int) {
	t.Helper()
	if r.ExitCode != want {
		t.Errorf("exit code = %d, want %d (err: %v)", r.ExitCode, want, r.Err)
	}
}

// AssertOutputContains fails the test if stdout lacks the substring.
func AssertOutputContains(t *testing.T, r *Result, substr string) {
	t.Helper()
	if !strings.Contains(r.Stdout, substr) {
		t.Errorf("stdout missing %q:\n%s", substr, r.Stdout)
	}
}

// AssertErrorContains fails the test if the command succeeded or its
// error message lacks the substring.
func AssertErrorContains(t *testing.T, r *Result, substr string) {
	t.Helper()
	if r.Success() {
		t.Fatalf("command succeeded, expected an error containing %q", substr)
	}
	if !strings.Contains(r.Err.Error(), substr) {
		t.Errorf("error = %q, want substring %q", r.Err, substr)
	}
}

// AssertFileExists fails the test if path cannot be stat'd.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

// AssertFileNotExists fails the test if path exists.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("%s should not exist", path)
	}
}

// AssertFileEquals fails the test if the file content differs.
func AssertFileEquals(t *testing.T, path, want string) {
	t.Helper()
	// #nosec G304 - path is provided by test code
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if got := string(data); got != want {
		t.Errorf("%s holds %q, want %q", path, got, want)
	}
}

// AssertDirNames fails the test if the directory's regular files are not
// exactly the given names.
func AssertDirNames(t *testing.T, dir string, want ...string) {
	t.Helper()

	got := listNames(t, dir)
	sorted := append([]string{}, want...)
	sort.Strings(sorted)
	if len(sorted) == 0 {
		sorted = nil
	}

	if !reflect.DeepEqual(got, sorted) {
		t.Errorf("directory %s contains %v, want %v", dir, got, sorted)
	}
}

// AssertMirrored fails the test unless dest holds exactly the same file
// names as source, with identical content for each.
func AssertMirrored(t *testing.T, source, dest string) {
	t.Helper()

	srcNames := listNames(t, source)
	dstNames := listNames(t, dest)
	if !reflect.DeepEqual(srcNames, dstNames) {
		t.Fatalf("destination %v does not mirror source %v", dstNames, srcNames)
	}

	for _, name := range srcNames {
		// #nosec G304 - paths come from test fixtures
		want, err := os.ReadFile(filepath.Join(source, name))
		if err != nil {
			t.Fatalf("failed to read source %s: %v", name, err)
		}
		// #nosec G304 - paths come from test fixtures
		got, err := os.ReadFile(filepath.Join(dest, name))
		if err != nil {
			t.Fatalf("failed to read dest %s: %v", name, err)
		}
		if string(want) != string(got) {
			t.Errorf("content mismatch for %s: source %q, dest %q", name, want, got)
		}
	}
}

// AssertEventually polls cond until it returns true or the timeout
// expires. Used to observe effects of a command still running in the
// background.
func AssertEventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("failed to list %s: %v", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}
