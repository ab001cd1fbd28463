package domain

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"golang.org/x/sync/errgroup"

	"scour.dev/pkg/scour/internal/controller"
	m "scour.dev/pkg/scour/internal/model"
	"scour.dev/pkg/scour/pkg/spill"
)

// SearchArgs carries the query and execution knobs for one search run.
type SearchArgs struct {
	Query      string
	Regex      bool
	IgnoreCase bool
	Workers    int
}

// Searcher drives the traversal loop that feeds resources through a scope.
type Searcher interface {
	Search(ctx context.Context, scope *Scope, args SearchArgs) error
	ListFiles(ctx context.Context, scope *Scope) error
}

type searcher struct {
	fs ResourceFS
	ui controller.UI
}

// NewSearcher creates a Searcher wired to the given filesystem port and UI.
func NewSearcher(fs ResourceFS, ui controller.UI) Searcher {
	return &searcher{fs: fs, ui: ui}
}

// fileChannelBuffer bounds how far the walker can run ahead of the scan
// workers.
const fileChannelBuffer = 64

// Search walks the scope's roots, scans every contained file for the query
// and displays the collected matches.
func (s *searcher) Search(ctx context.Context, scope *Scope, args SearchArgs) error {
	query, err := compileQuery(args)
	if err != nil {
		return err
	}

	if err := s.ui.Start(ctx, controller.WithSearchMode()); err != nil {
		slog.Error("failed to start UI", "error", err)
		return err
	}

	defer s.ui.Close(ctx)

	matches, err := spill.New[m.Match]()
	if err != nil {
		return fmt.Errorf("create result spill: %w", err)
	}

	defer func() {
		if err := matches.Close(); err != nil {
			slog.Warn("failed to close result spill", "error", err)
		}
	}()

	searchErr := s.collectMatches(ctx, scope, query, args.Workers, matches)

	if err := s.ui.DisplayMatches(ctx, scopeInfo(scope), matches, searchErr); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	s.ui.Wait(ctx)

	return nil
}

// ListFiles walks the scope's roots and displays every contained file
// without scanning content.
func (s *searcher) ListFiles(ctx context.Context, scope *Scope) error {
	if err := s.ui.Start(ctx, controller.WithListMode()); err != nil {
		slog.Error("failed to start UI", "error", err)
		return err
	}

	defer s.ui.Close(ctx)

	var files []m.Path

	err := s.walkScope(ctx, scope, func(path m.Path) error {
		files = append(files, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	if err := s.ui.DisplayFileList(ctx, scopeInfo(scope), files); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	s.ui.Wait(ctx)

	return nil
}

// collectMatches runs the walker and scan workers as one errgroup and
// appends every hit to the spill.
func (s *searcher) collectMatches(ctx context.Context, scope *Scope, query *regexp.Regexp, workers int, matches spill.Spill[m.Match]) error {
	if workers < 1 {
		workers = 1
	}

	files := make(chan m.Path, fileChannelBuffer)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(files)

		return s.walkScope(groupCtx, scope, func(path m.Path) error {
			select {
			case <-groupCtx.Done():
				return groupCtx.Err()
			case files <- path:
				return nil
			}
		})
	})

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for {
				select {
				case <-groupCtx.Done():
					return groupCtx.Err()
				case path, ok := <-files:
					if !ok {
						return nil
					}

					if err := s.scanFile(path, query, matches); err != nil {
						return err
					}
				}
			}
		})
	}

	return group.Wait()
}

// walkScope visits each root, pruning rejected folders and emitting the
// paths of contained files.
func (s *searcher) walkScope(ctx context.Context, scope *Scope, emit func(path m.Path) error) error {
	for _, root := range scope.Roots() {
		err := s.fs.Walk(root, func(r Resource, err error) error {
			if err != nil {
				slog.Warn("skipping unreadable resource", "error", err)
				return nil
			}

			if err := ctx.Err(); err != nil {
				return err
			}

			if !scope.Contains(r) {
				if r.Kind() == m.KindFolder {
					return SkipChildren
				}

				return nil
			}

			if r.Kind() != m.KindFile {
				return nil
			}

			return emit(r.FullPath())
		})
		if err != nil {
			return fmt.Errorf("walk %s: %w", root.FullPath(), err)
		}
	}

	return nil
}

// scanFile reads one file and appends a Match per query hit. Unreadable and
// binary files are skipped, not failed: the scope decided the file is in
// range, but its content is not this search's concern.
func (s *searcher) scanFile(path m.Path, query *regexp.Regexp, matches spill.Spill[m.Match]) error {
	content, err := s.fs.ReadFile(path)
	if err != nil {
		slog.Warn("cannot read file", "path", path, "error", err)
		return nil
	}

	if isBinary(content) {
		return nil
	}

	for lineNumber, line := range splitLines(content) {
		loc := query.FindIndex(line)
		if loc == nil {
			continue
		}

		match := m.Match{
			File:   path,
			Line:   lineNumber + 1,
			Column: loc[0] + 1,
			Text:   string(line),
		}

		if err := matches.Append(match); err != nil {
			return fmt.Errorf("record match: %w", err)
		}
	}

	return nil
}

// compileQuery turns the query into a regexp, quoting it for literal
// searches.
func compileQuery(args SearchArgs) (*regexp.Regexp, error) {
	expr := args.Query
	if !args.Regex {
		expr = regexp.QuoteMeta(expr)
	}

	if args.IgnoreCase {
		expr = "(?i)" + expr
	}

	query, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	return query, nil
}

// binarySniffLen is how many leading bytes are checked for a NUL byte.
const binarySniffLen = 8000

func isBinary(content []byte) bool {
	limit := len(content)
	if limit > binarySniffLen {
		limit = binarySniffLen
	}

	return bytes.IndexByte(content[:limit], 0) >= 0
}

func splitLines(content []byte) [][]byte {
	lines := bytes.Split(content, []byte{'\n'})

	// A trailing newline produces an empty trailing element; drop it so
	// line counts match what editors report.
	if n := len(lines); n > 0 && len(lines[n-1]) == 0 {
		lines = lines[:n-1]
	}

	for i, line := range lines {
		lines[i] = bytes.TrimSuffix(line, []byte{'\r'})
	}

	return lines
}

func scopeInfo(scope *Scope) controller.ScopeInfo {
	return controller.ScopeInfo{
		Description:    scope.Description(),
		Filter:         scope.FilterDescription(),
		IncludeDerived: scope.IncludeDerived(),
		RootCount:      len(scope.Roots()),
	}
}
