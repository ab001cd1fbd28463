package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "scour.dev/pkg/scour/internal/model"
	"scour.dev/pkg/scour/pkg/spill"
)

// SimpleUI implements UI using the cobra command's writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayMatches prints every match as path:line:column followed by a
// per-file summary table.
func (s *SimpleUI) DisplayMatches(ctx context.Context, scope ScopeInfo, matches spill.Spill[m.Match], err error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err != nil {
		s.printf("search error: %v\n", err)
		return err
	}

	perFile := make(map[m.Path]int)

	rangeErr := matches.Range(func(_ uint64, match m.Match) error {
		perFile[match.File]++
		s.printf("%s:%d:%d: %s\n", match.File, match.Line, match.Column, match.Text)

		return nil
	})
	if rangeErr != nil {
		return fmt.Errorf("replay matches: %w", rangeErr)
	}

	s.printf("\n%s", renderMatchSummaryTable(scope, perFile, matches.Len()))

	return nil
}

// DisplayFileList prints the files contained in the scope as a table.
func (s *SimpleUI) DisplayFileList(ctx context.Context, scope ScopeInfo, files []m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := append([]m.Path(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT})

	for _, path := range sorted {
		table.Append([]string{string(path)})
	}

	table.SetFooter([]string{fmt.Sprintf("Total Files %d", len(sorted))})
	table.Render()

	s.printf("Scope %s (filter: %s)\n\n%s", scope.Description, scope.Filter, buf.String())

	return nil
}

func renderMatchSummaryTable(scope ScopeInfo, perFile map[m.Path]int, total uint64) string {
	paths := make([]m.Path, 0, len(perFile))
	for path := range perFile {
		paths = append(paths, path)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Path", "Matches"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, path := range paths {
		table.Append([]string{string(path), fmt.Sprintf("%d", perFile[path])})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Scope %s", scope.Description),
		fmt.Sprintf("%d", total),
	})

	table.Render()

	return buf.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
