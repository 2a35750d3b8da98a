// Package e2e provides the harness for end-to-end CLI tests: isolated
// environments, fixture directories, and output capture around cli.Run.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/izharus/re-backup/internal/cli"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the inferred exit code (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness runs CLI commands inside an isolated environment. All paths the
// application touches (config file, trash bin, source and destination
// fixtures) live under a per-test home directory.
type Harness struct {
	t       *testing.T
	homeDir string
	env     map[string]string
}

// NewHarness creates an isolated harness for one test. REBACKUP_HOME is
// pointed at a fresh temp directory, so the config file and the default
// trash location never touch the real user environment.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	homeDir := t.TempDir()

	h := &Harness{
		t:       t,
		homeDir: homeDir,
		env:     make(map[string]string),
	}

	h.SetEnv("HOME", homeDir)
	h.SetEnv("REBACKUP_HOME", homeDir)

	return h
}

// SetEnv sets an environment variable for commands run through this
// harness. It is restored when the test completes.
func (h *Harness) SetEnv(key, value string) {
	h.t.Helper()
	h.env[key] = value
	h.t.Setenv(key, value)
}

// HomeDir returns the isolated home directory for this harness.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// Run executes a CLI command with the given arguments and captures stdout.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()

	async := h.Start(context.Background(), args...)
	return async.Wait(2 * time.Minute)
}

// Async is a CLI command started in the background. Stdout stays captured
// until Wait is called, so the test must not print to os.Stdout while the
// command runs.
type Async struct {
	t        *testing.T
	restore  func()
	writer   *os.File
	buf      *bytes.Buffer
	copyDone chan struct{}
	copyErr  *error
	cmdErr   chan error
	finished bool
}

// Start launches a CLI command in its own goroutine and returns a handle.
// This is how the continuous loop is tested: start it, watch the
// filesystem, cancel the context, then Wait for the command to exit.
func (h *Harness) Start(ctx context.Context, args ...string) *Async {
	h.t.Helper()

	if len(args) == 0 || args[0] != "rebackup" {
		args = append([]string{"rebackup"}, args...)
	}

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Drain the pipe while the command runs. A command that writes more
	// than the pipe buffer would otherwise block until someone reads.
	buf := &bytes.Buffer{}
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(buf, stdoutR)
	}()

	cmdErr := make(chan error, 1)
	go func() {
		cmdErr <- cli.Run(ctx, args)
	}()

	async := &Async{
		t:        h.t,
		restore:  func() { os.Stdout = oldStdout },
		writer:   stdoutW,
		buf:      buf,
		copyDone: copyDone,
		copyErr:  &copyErr,
		cmdErr:   cmdErr,
	}

	// If Wait never runs (test bailed out early), put stdout back so the
	// remaining tests in the package are not left writing into the pipe.
	h.t.Cleanup(func() {
		if !async.finished {
			async.restore()
			_ = stdoutW.Close()
		}
	})

	return async
}

// Wait blocks until the command exits and returns its result. It fails
// the test if the command is still running after the timeout.
func (a *Async) Wait(timeout time.Duration) *Result {
	a.t.Helper()

	var runErr error
	select {
	case runErr = <-a.cmdErr:
	case <-time.After(timeout):
		a.finished = true
		a.restore()
		_ = a.writer.Close()
		a.t.Fatalf("command did not exit within %v", timeout)
	}

	a.finished = true
	if err := a.writer.Close(); err != nil {
		a.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	a.restore()

	<-a.copyDone
	if *a.copyErr != nil {
		a.t.Fatalf("failed to read captured stdout: %v", *a.copyErr)
	}

	exitCode := 0
	if runErr != nil {
		exitCode = 1
	}

	return &Result{
		Stdout:   a.buf.String(),
		Err:      runErr,
		ExitCode: exitCode,
	}
}
