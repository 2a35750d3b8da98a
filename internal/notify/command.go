package notify

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds a single notification command run.
const DefaultCommandTimeout = 10 * time.Second

// CommandNotifier runs an external program for every failure event, for
// example an audio alert or a desktop notification helper. The command
// string is split on whitespace into program and arguments; event details
// are passed through REBACKUP_EVENT_* environment variables.
type CommandNotifier struct {
	name    string
	args    []string
	timeout time.Duration
}

// NewCommandNotifier creates a command sink. A non-positive timeout uses
// DefaultCommandTimeout. Returns an error when the command string is empty.
func NewCommandNotifier(command string, timeout time.Duration) (*CommandNotifier, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("notify command is empty")
	}
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &CommandNotifier{
		name:    fields[0],
		args:    fields[1:],
		timeout: timeout,
	}, nil
}

// Notify runs the command, killing it when the timeout expires. The
// command's exit status is the only result; its output is captured and
// included in the error on failure.
func (n *CommandNotifier) Notify(ctx context.Context, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	// #nosec G204 - the command comes from the user's own config
	cmd := exec.CommandContext(ctx, n.name, n.args...)
	cmd.Env = append(os.Environ(),
		"REBACKUP_EVENT_SEVERITY="+string(event.Severity),
		"REBACKUP_EVENT_OP="+string(event.Op),
		"REBACKUP_EVENT_PATH="+event.Path,
		"REBACKUP_EVENT_ERROR="+errString(event.Err),
		"REBACKUP_EVENT_MESSAGE="+event.Message(),
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("notify command %q failed: %w: %s", n.name, err, msg)
		}
		return fmt.Errorf("notify command %q failed: %w", n.name, err)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
