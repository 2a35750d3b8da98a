package cli

import (
	"runtime"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	out, err := runCapture(t, "rebackup", "version")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, want := range []string{"rebackup version", "commit:", "built:", "go:", "platform:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output = %q, want substring %q", out, want)
		}
	}
}

func TestVersionCommandOutputFormat(t *testing.T) {
	out, err := runCapture(t, "rebackup", "version")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines of output, got %d: %q", len(lines), out)
	}

	if !strings.HasPrefix(lines[0], "rebackup version ") {
		t.Errorf("first line should start with 'rebackup version ', got %q", lines[0])
	}
	for i, line := range lines[1:] {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %d should be indented with 2 spaces, got %q", i+2, line)
		}
	}
}

func TestVersionCommandIncludesVariables(t *testing.T) {
	out, err := runCapture(t, "rebackup", "version")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, want := range []string{Version, Commit, BuildDate, runtime.Version(), runtime.GOOS + "/" + runtime.GOARCH} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got %q", want, out)
		}
	}
}

func TestVersionCommandDefinition(t *testing.T) {
	cmd := versionCommand()

	if cmd.Name != "version" {
		t.Errorf("command name = %q, want %q", cmd.Name, "version")
	}
	if cmd.Usage == "" {
		t.Error("command should have usage text")
	}
	if cmd.Action == nil {
		t.Error("command should have an action function")
	}
}
