package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestStatusCommandTable(t *testing.T) {
	isolateConfig(t)

	src := t.TempDir()
	dst := t.TempDir()
	writeSourceFiles(t, src, map[string]string{"a.txt": "x", "b.txt": "y"})
	writeSourceFiles(t, dst, map[string]string{"b.txt": "y"})
	t.Setenv("REBACKUP_SOURCE_DIR", src)
	t.Setenv("REBACKUP_DEST_DIR", dst)

	out, err := runCapture(t, "rebackup", "status")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, want := range []string{
		"rebackup Status",
		"Configuration:",
		"Interval: 5 minute(s)",
		"Drift:",
		"Source files: 2",
		"Dest files:   1",
		"1 to copy, 0 to delete",
		"Trash:",
		"Disabled",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestStatusCommandJSON(t *testing.T) {
	isolateConfig(t)

	src := t.TempDir()
	dst := t.TempDir()
	writeSourceFiles(t, src, map[string]string{"a.txt": "x"})
	t.Setenv("REBACKUP_SOURCE_DIR", src)
	t.Setenv("REBACKUP_DEST_DIR", dst)

	out, err := runCapture(t, "rebackup", "status", "--json")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var status Status
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}

	if status.Source != src || status.Dest != dst {
		t.Errorf("source/dest = %q/%q, want %q/%q", status.Source, status.Dest, src, dst)
	}
	if status.SourceFiles != 1 || status.DestFiles != 0 {
		t.Errorf("file counts = %d/%d, want 1/0", status.SourceFiles, status.DestFiles)
	}
	if status.PendingCopies != 1 || status.PendingDeletes != 0 {
		t.Errorf("pending = %d/%d, want 1/0", status.PendingCopies, status.PendingDeletes)
	}
	if status.Trash != nil {
		t.Error("trash status should be omitted when quarantine is disabled")
	}
}

func TestStatusCommandWithTrash(t *testing.T) {
	isolateConfig(t)

	trashDir, _ := seedTrash(t, "counted")
	src := t.TempDir()
	writeSourceFiles(t, src, map[string]string{"a.txt": "x"})
	t.Setenv("REBACKUP_SOURCE_DIR", src)
	t.Setenv("REBACKUP_DEST_DIR", t.TempDir())

	out, err := runCapture(t, "rebackup", "status", "--json")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var status Status
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if status.Trash == nil {
		t.Fatal("expected trash status when quarantine is enabled")
	}
	if status.Trash.Location != trashDir {
		t.Errorf("trash location = %q, want %q", status.Trash.Location, trashDir)
	}
	if status.Trash.Entries != 1 {
		t.Errorf("trash entries = %d, want 1", status.Trash.Entries)
	}
	if status.Trash.TotalSize != int64(len("counted")) {
		t.Errorf("trash size = %d, want %d", status.Trash.TotalSize, len("counted"))
	}
	if status.Trash.Newest == nil {
		t.Error("expected a newest timestamp")
	}
}

func TestStatusCommandUnreachableSource(t *testing.T) {
	isolateConfig(t)

	t.Setenv("REBACKUP_SOURCE_DIR", filepath.Join(t.TempDir(), "missing"))
	t.Setenv("REBACKUP_DEST_DIR", t.TempDir())

	out, err := runCapture(t, "rebackup", "status", "--json")
	if err != nil {
		t.Fatalf("status must not fail on a missing source: %v", err)
	}

	var status Status
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !strings.Contains(status.Problem, "cannot list source") {
		t.Errorf("problem = %q, want listing problem", status.Problem)
	}
}
