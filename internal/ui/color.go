// Package ui provides color and style helpers for rebackup's terminal output.
package ui

import (
	"github.com/fatih/color"
)

// Sprint-style paint functions shared by the command implementations.
var (
	// Success renders green text for completed operations.
	Success = color.New(color.FgGreen).SprintFunc()
	// Error renders red text for failures.
	Error = color.New(color.FgRed).SprintFunc()
	// Warning renders yellow text for degraded but non-fatal states.
	Warning = color.New(color.FgYellow).SprintFunc()
	// Bold renders emphasized text for headings.
	Bold = color.New(color.Bold).SprintFunc()
	// Dim renders faint text for secondary detail.
	Dim = color.New(color.Faint).SprintFunc()
)

const (
	markSuccess = "✓"
	markError   = "✗"
	markWarning = "⚠"
)

func statusLine(paint func(...any) string, mark, msg string) string {
	if msg == "" {
		return paint(mark)
	}
	return paint(mark) + " " + msg
}

// StatusSuccess prefixes msg with a green checkmark.
func StatusSuccess(msg string) string {
	return statusLine(Success, markSuccess, msg)
}

// StatusError prefixes msg with a red cross.
func StatusError(msg string) string {
	return statusLine(Error, markError, msg)
}

// StatusWarning prefixes msg with a yellow warning sign.
func StatusWarning(msg string) string {
	return statusLine(Warning, markWarning, msg)
}

// DisableColors turns off colored output for pipes and --no-color runs.
func DisableColors() {
	color.NoColor = true
}

// EnableColors turns colored output back on.
func EnableColors() {
	color.NoColor = false
}

// IsColorEnabled reports whether colored output is active.
func IsColorEnabled() bool {
	return !color.NoColor
}
