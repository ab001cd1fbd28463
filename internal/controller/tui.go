package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	m "scour.dev/pkg/scour/internal/model"
	"scour.dev/pkg/scour/pkg/spill"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	footerStyle   = lipgloss.NewStyle().Faint(true)
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start initializes the UI.
func (p *TUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (p *TUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed. The pager programs below block inside
// the Display calls, so there is nothing left to wait for here.
func (p *TUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayMatches shows search results in a scrollable pager. Short result
// lists are printed directly without entering the alternate screen.
func (p *TUI) DisplayMatches(ctx context.Context, scope ScopeInfo, matches spill.Spill[m.Match], err error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err != nil {
		fmt.Fprintf(p.output, "search error: %v\n", err)
		return err
	}

	lines := make([]string, 0, matches.Len())

	rangeErr := matches.Range(func(_ uint64, match m.Match) error {
		location := locationStyle.Render(fmt.Sprintf("%s:%d:%d:", match.File, match.Line, match.Column))
		lines = append(lines, fmt.Sprintf("%s %s", location, match.Text))

		return nil
	})
	if rangeErr != nil {
		return fmt.Errorf("replay matches: %w", rangeErr)
	}

	header := headerStyle.Render(fmt.Sprintf("scour - %d match(es) in scope %s (filter: %s)",
		matches.Len(), scope.Description, scope.Filter))

	return p.page(header, lines)
}

// DisplayFileList shows the files contained in the scope.
func (p *TUI) DisplayFileList(ctx context.Context, scope ScopeInfo, files []m.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sorted := append([]m.Path(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	lines := make([]string, 0, len(sorted))
	for _, path := range sorted {
		lines = append(lines, string(path))
	}

	header := headerStyle.Render(fmt.Sprintf("scour - %d file(s) in scope %s (filter: %s)",
		len(sorted), scope.Description, scope.Filter))

	return p.page(header, lines)
}

// page prints header and lines directly when they fit the terminal, and
// otherwise hands them to a viewport-backed pager program.
func (p *TUI) page(header string, lines []string) error {
	width, height := p.terminalSize()

	if len(lines)+pagerChromeLines <= height || height == 0 {
		_, err := fmt.Fprintf(p.output, "%s\n%s\n", header, strings.Join(lines, "\n"))
		return err
	}

	model := newPagerModel(header, lines, width, height)

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run pager: %w", err)
	}

	return nil
}

func (p *TUI) terminalSize() (width, height int) {
	if f, ok := p.output.(*os.File); ok {
		w, h, err := term.GetSize(int(f.Fd()))
		if err == nil {
			return w, h
		}
	}

	return 0, 0
}

// pagerChromeLines is the number of lines reserved for the header and the
// key-help footer around the viewport.
const pagerChromeLines = 4

type pagerModel struct {
	header   string
	viewport viewport.Model
	ready    bool
}

func newPagerModel(header string, lines []string, width, height int) pagerModel {
	vp := viewport.New(width, max(height-pagerChromeLines, 1))
	vp.SetContent(strings.Join(lines, "\n"))

	return pagerModel{
		header:   header,
		viewport: vp,
		ready:    width > 0 && height > 0,
	}
}

func (pm pagerModel) Init() tea.Cmd {
	return nil
}

func (pm pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.viewport.Width = msg.Width
		pm.viewport.Height = max(msg.Height-pagerChromeLines, 1)
		pm.ready = true

		return pm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return pm, tea.Quit
		}
	}

	var cmd tea.Cmd
	pm.viewport, cmd = pm.viewport.Update(msg)

	return pm, cmd
}

func (pm pagerModel) View() string {
	if !pm.ready {
		return "loading..."
	}

	footer := footerStyle.Render(fmt.Sprintf("%3.f%% | ↑/↓: scroll | q: quit", pm.viewport.ScrollPercent()*100))

	return fmt.Sprintf("%s\n%s\n%s", pm.header, pm.viewport.View(), footer)
}
