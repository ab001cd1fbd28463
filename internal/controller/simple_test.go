package controller

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "scour.dev/pkg/scour/internal/model"
	"scour.dev/pkg/scour/pkg/spill"
)

func newCapturedCommand() (*cobra.Command, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{Use: "test"}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	return cmd, buf
}

func matchSpill(t *testing.T, matches ...m.Match) spill.Spill[m.Match] {
	t.Helper()

	s, err := spill.New[m.Match]()
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	for _, match := range matches {
		require.NoError(t, s.Append(match))
	}

	return s
}

func TestSimpleUI_DisplayMatches(t *testing.T) {
	cmd, buf := newCapturedCommand()
	ui := NewSimpleUI(cmd)

	matches := matchSpill(t,
		m.Match{File: "/src/a.go", Line: 3, Column: 1, Text: "foo()"},
		m.Match{File: "/src/a.go", Line: 9, Column: 5, Text: "foo(bar)"},
		m.Match{File: "/src/b.go", Line: 1, Column: 1, Text: "foo"},
	)

	scope := ScopeInfo{Description: "'src'", Filter: "*.go"}

	err := ui.DisplayMatches(context.Background(), scope, matches, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "/src/a.go:3:1: foo()")
	assert.Contains(t, out, "/src/a.go:9:5: foo(bar)")
	assert.Contains(t, out, "/src/b.go:1:1: foo")
	assert.Contains(t, out, "Scope 'src'")
}

func TestSimpleUI_DisplayMatches_SearchError(t *testing.T) {
	cmd, buf := newCapturedCommand()
	ui := NewSimpleUI(cmd)

	matches := matchSpill(t)

	err := ui.DisplayMatches(context.Background(), ScopeInfo{}, matches, assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, buf.String(), "search error")
}

func TestSimpleUI_DisplayMatches_CancelledContext(t *testing.T) {
	cmd, buf := newCapturedCommand()
	ui := NewSimpleUI(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ui.DisplayMatches(ctx, ScopeInfo{}, matchSpill(t), nil)
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestSimpleUI_DisplayFileList(t *testing.T) {
	cmd, buf := newCapturedCommand()
	ui := NewSimpleUI(cmd)

	scope := ScopeInfo{Description: "workspace", Filter: "*"}
	files := []m.Path{"/ws/b.txt", "/ws/a.txt"}

	err := ui.DisplayFileList(context.Background(), scope, files)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Scope workspace (filter: *)")
	assert.Contains(t, out, "/ws/a.txt")
	assert.Contains(t, out, "/ws/b.txt")
	assert.Contains(t, out, "Total Files 2")
	// Sorted output.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("/ws/a.txt")), bytes.Index(buf.Bytes(), []byte("/ws/b.txt")))
}

func TestSimpleUI_StartAndWait(t *testing.T) {
	cmd, _ := newCapturedCommand()
	ui := NewSimpleUI(cmd)

	assert.NoError(t, ui.Start(context.Background(), WithSearchMode()))

	ui.Wait(context.Background())
	ui.Close(context.Background())
}

func TestNewUI(t *testing.T) {
	cmd, _ := newCapturedCommand()

	assert.IsType(t, &TUI{}, NewUI(cmd, true))
	assert.IsType(t, &SimpleUI{}, NewUI(cmd, false))
}
