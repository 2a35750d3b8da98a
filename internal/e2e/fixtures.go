package e2e

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Fixture provides helpers for building and inspecting a directory tree
// used by an E2E test.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{
		t:       t,
		baseDir: baseDir,
	}
}

// Dir returns the fixture's base directory.
func (f *Fixture) Dir() string {
	return f.baseDir
}

// Path returns the full path for a relative path.
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.baseDir, relPath)
}

// WriteFile writes content to a file relative to the fixture base
// directory, creating parent directories as needed.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		f.t.Fatalf("failed to create directory for %s: %v", fullPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}

	return fullPath
}

// WriteFiles writes a batch of files in one call, keyed by relative path.
func (f *Fixture) WriteFiles(files map[string]string) {
	f.t.Helper()
	for relPath, content := range files {
		f.WriteFile(relPath, content)
	}
}

// Remove deletes a file relative to the fixture base directory.
func (f *Fixture) Remove(relPath string) {
	f.t.Helper()
	if err := os.Remove(filepath.Join(f.baseDir, relPath)); err != nil {
		f.t.Fatalf("failed to remove %s: %v", relPath, err)
	}
}

// Exists returns true if the file or directory exists.
func (f *Fixture) Exists(relPath string) bool {
	f.t.Helper()
	_, err := os.Stat(filepath.Join(f.baseDir, relPath))
	return err == nil
}

// ReadFile reads and returns the content of a file.
func (f *Fixture) ReadFile(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	// #nosec G304 - fullPath is constructed from the test fixture base
	data, err := os.ReadFile(fullPath)
	if err != nil {
		f.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}

	return string(data)
}

// Names returns the sorted names of the regular files directly inside the
// fixture directory. A missing directory counts as empty.
func (f *Fixture) Names() []string {
	f.t.Helper()

	entries, err := os.ReadDir(f.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		f.t.Fatalf("failed to list %s: %v", f.baseDir, err)
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

// SourceFixture creates the source directory for this harness and points
// REBACKUP_SOURCE_DIR at it.
func (h *Harness) SourceFixture() *Fixture {
	h.t.Helper()

	dir := filepath.Join(h.homeDir, "source")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		h.t.Fatalf("failed to create source directory: %v", err)
	}
	h.SetEnv("REBACKUP_SOURCE_DIR", dir)

	return NewFixture(h.t, dir)
}

// DestFixture creates the destination directory for this harness and
// points REBACKUP_DEST_DIR at it.
func (h *Harness) DestFixture() *Fixture {
	h.t.Helper()

	dir := filepath.Join(h.homeDir, "dest")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		h.t.Fatalf("failed to create destination directory: %v", err)
	}
	h.SetEnv("REBACKUP_DEST_DIR", dir)

	return NewFixture(h.t, dir)
}

// MissingDestFixture points REBACKUP_DEST_DIR at a path that does not
// exist yet. The first mirror cycle is expected to create it.
func (h *Harness) MissingDestFixture() *Fixture {
	h.t.Helper()

	dir := filepath.Join(h.homeDir, "dest")
	h.SetEnv("REBACKUP_DEST_DIR", dir)

	return NewFixture(h.t, dir)
}

// EnableTrash turns on the quarantine bin under the harness home and
// returns a fixture for its directory.
func (h *Harness) EnableTrash() *Fixture {
	h.t.Helper()

	dir := filepath.Join(h.homeDir, "trash")
	h.SetEnv("REBACKUP_TRASH_ENABLED", "true")
	h.SetEnv("REBACKUP_TRASH_LOCATION", dir)

	return NewFixture(h.t, dir)
}

// TempFixture creates a fixture helper for a new temporary directory
// outside the harness home.
func (h *Harness) TempFixture() *Fixture {
	h.t.Helper()
	return NewFixture(h.t, h.t.TempDir())
}
