// Package tui provides the interactive plan review built on Bubble Tea.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts a Bubble Tea program with the given model and options and
// returns the final model state.
func Run(model tea.Model, opts ...tea.ProgramOption) (tea.Model, error) {
	return tea.NewProgram(model, opts...).Run()
}
