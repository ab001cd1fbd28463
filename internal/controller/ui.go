// Package controller provides output adapters for displaying search results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "scour.dev/pkg/scour/internal/model"
	"scour.dev/pkg/scour/pkg/spill"
)

// ScopeInfo is the display-facing summary of a scope.
type ScopeInfo struct {
	Description    string
	Filter         string
	IncludeDerived bool
	RootCount      int
}

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeSearch StartMode = iota
	ModeList
)

// StartOption is a functional option for the Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithSearchMode sets the UI to search-result mode.
func WithSearchMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeSearch
	}
}

// WithListMode sets the UI to file-listing mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// UI defines the interface for displaying scope contents and search results.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for the UI to finish (user closes it)
	DisplayMatches(ctx context.Context, scope ScopeInfo, matches spill.Spill[m.Match], err error) error
	DisplayFileList(ctx context.Context, scope ScopeInfo, files []m.Path) error
}

// NewUI picks a TUI when stdout is a terminal and the caller did not ask for
// plain output, falling back to the simple printer otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether the file is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
