package domain

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scour.dev/pkg/scour/internal/controller"
	m "scour.dev/pkg/scour/internal/model"
	"scour.dev/pkg/scour/pkg/spill"
)

// memFS is an in-memory ResourceFS. Folders are implied by file paths;
// derived detection is name-based like the local adapter's.
type memFS struct {
	files   map[string]string
	derived map[string]bool
}

func newMemFS(derivedNames ...string) *memFS {
	derived := make(map[string]bool, len(derivedNames))
	for _, name := range derivedNames {
		derived[name] = true
	}

	return &memFS{files: make(map[string]string), derived: derived}
}

func (f *memFS) add(filePath, content string) {
	f.files[filePath] = content
}

func (f *memFS) isFolder(p string) bool {
	prefix := strings.TrimSuffix(p, "/") + "/"
	for filePath := range f.files {
		if strings.HasPrefix(filePath, prefix) {
			return true
		}
	}

	return p == "/"
}

func (f *memFS) resource(p string) *memResource {
	kind := m.KindFile
	if f.isFolder(p) {
		kind = m.KindFolder
	}

	return &memResource{fs: f, path: p, kind: kind}
}

func (f *memFS) Resolve(p m.Path) (Resource, error) {
	cleaned := path.Clean(string(p))
	if _, ok := f.files[cleaned]; !ok && !f.isFolder(cleaned) {
		return nil, fmt.Errorf("no such resource: %s", cleaned)
	}

	return f.resource(cleaned), nil
}

func (f *memFS) children(dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	seen := make(map[string]bool)

	var names []string

	for filePath := range f.files {
		if !strings.HasPrefix(filePath, prefix) {
			continue
		}

		rest := strings.TrimPrefix(filePath, prefix)
		name := strings.SplitN(rest, "/", 2)[0]

		if !seen[name] {
			seen[name] = true

			names = append(names, name)
		}
	}

	sort.Strings(names)

	children := make([]string, 0, len(names))
	for _, name := range names {
		children = append(children, prefix+name)
	}

	return children
}

func (f *memFS) Walk(root Resource, fn WalkFunc) error {
	return f.walk(string(root.FullPath()), fn)
}

func (f *memFS) walk(p string, fn WalkFunc) error {
	r := f.resource(p)

	err := fn(r, nil)
	if errors.Is(err, SkipChildren) {
		return nil
	}

	if err != nil {
		return err
	}

	if r.Kind() != m.KindFolder {
		return nil
	}

	for _, child := range f.children(p) {
		if err := f.walk(child, fn); err != nil {
			return err
		}
	}

	return nil
}

func (f *memFS) ReadFile(p m.Path) ([]byte, error) {
	content, ok := f.files[string(p)]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", p)
	}

	return []byte(content), nil
}

type memResource struct {
	fs   *memFS
	path string
	kind m.Kind
}

func (r *memResource) FullPath() m.Path { return m.Path(r.path) }
func (r *memResource) Name() string     { return path.Base(r.path) }
func (r *memResource) Kind() m.Kind     { return r.kind }

func (r *memResource) Parent() Resource {
	parent := path.Dir(r.path)
	if parent == r.path {
		return nil
	}

	return &memResource{fs: r.fs, path: parent, kind: m.KindFolder}
}

func (r *memResource) IsDerived() bool {
	for p := r.path; p != "/" && p != "."; p = path.Dir(p) {
		if r.fs.derived[path.Base(p)] {
			return true
		}
	}

	return false
}

// recordingUI captures what the searcher hands to the display layer.
type recordingUI struct {
	scope      controller.ScopeInfo
	matches    []m.Match
	files      []m.Path
	displayErr error
}

func (u *recordingUI) Start(ctx context.Context, _ ...controller.StartOption) error { return ctx.Err() }
func (u *recordingUI) Close(context.Context)                                        {}
func (u *recordingUI) Wait(context.Context)                                         {}

func (u *recordingUI) DisplayMatches(_ context.Context, scope controller.ScopeInfo, matches spill.Spill[m.Match], err error) error {
	u.scope = scope
	u.displayErr = err

	if err != nil {
		return err
	}

	return matches.Range(func(_ uint64, match m.Match) error {
		u.matches = append(u.matches, match)
		return nil
	})
}

func (u *recordingUI) DisplayFileList(_ context.Context, scope controller.ScopeInfo, files []m.Path) error {
	u.scope = scope
	u.files = files

	return nil
}

func buildTestFS() *memFS {
	fs := newMemFS("build")
	fs.add("/ws/main.go", "package main\n\nfunc main() {}\n")
	fs.add("/ws/util.go", "package main\n// TODO tidy up\n")
	fs.add("/ws/README.md", "TODO write docs\n")
	fs.add("/ws/build/gen.go", "// TODO generated\n")
	fs.add("/ws/sub/deep.go", "// TODO deep\n")

	return fs
}

func matchedFiles(matches []m.Match) []string {
	files := make([]string, 0, len(matches))
	for _, match := range matches {
		files = append(files, string(match.File))
	}

	sort.Strings(files)

	return files
}

func TestSearcher_Search_LiteralQuery(t *testing.T) {
	fs := buildTestFS()
	ui := &recordingUI{}

	root, err := fs.Resolve("/ws")
	require.NoError(t, err)

	scope := NewScope([]Resource{root}, []string{"*.go"}, false, WithCaseSensitiveNames(true))

	searcher := NewSearcher(fs, ui)
	err = searcher.Search(context.Background(), scope, SearchArgs{Query: "TODO", Workers: 1})
	require.NoError(t, err)

	// README.md fails the name pattern; build/ is derived and pruned.
	assert.Equal(t, []string{"/ws/sub/deep.go", "/ws/util.go"}, matchedFiles(ui.matches))
}

func TestSearcher_Search_ReportsLineAndColumn(t *testing.T) {
	fs := newMemFS()
	fs.add("/ws/a.txt", "first line\n  needle here\n")

	ui := &recordingUI{}

	root, err := fs.Resolve("/ws")
	require.NoError(t, err)

	scope := NewScope([]Resource{root}, nil, false, WithCaseSensitiveNames(true))

	searcher := NewSearcher(fs, ui)
	err = searcher.Search(context.Background(), scope, SearchArgs{Query: "needle", Workers: 1})
	require.NoError(t, err)

	require.Len(t, ui.matches, 1)
	assert.Equal(t, m.Path("/ws/a.txt"), ui.matches[0].File)
	assert.Equal(t, 2, ui.matches[0].Line)
	assert.Equal(t, 3, ui.matches[0].Column)
	assert.Equal(t, "  needle here", ui.matches[0].Text)
}

func TestSearcher_Search_IncludeDerivedVisitsBuildOutput(t *testing.T) {
	fs := buildTestFS()
	ui := &recordingUI{}

	root, err := fs.Resolve("/ws")
	require.NoError(t, err)

	scope := NewScope([]Resource{root}, []string{"*.go"}, true, WithCaseSensitiveNames(true))

	searcher := NewSearcher(fs, ui)
	err = searcher.Search(context.Background(), scope, SearchArgs{Query: "TODO", Workers: 1})
	require.NoError(t, err)

	assert.Contains(t, matchedFiles(ui.matches), "/ws/build/gen.go")
}

func TestSearcher_Search_RegexAndIgnoreCase(t *testing.T) {
	fs := newMemFS()
	fs.add("/ws/a.txt", "Error: boom\nwarning: meh\n")

	ui := &recordingUI{}

	root, err := fs.Resolve("/ws")
	require.NoError(t, err)

	scope := NewScope([]Resource{root}, nil, false, WithCaseSensitiveNames(true))
	searcher := NewSearcher(fs, ui)

	err = searcher.Search(context.Background(), scope, SearchArgs{
		Query:      "^(error|warning):",
		Regex:      true,
		IgnoreCase: true,
		Workers:    1,
	})
	require.NoError(t, err)

	assert.Len(t, ui.matches, 2)
}

func TestSearcher_Search_InvalidRegexFailsFast(t *testing.T) {
	fs := newMemFS()
	ui := &recordingUI{}

	searcher := NewSearcher(fs, ui)
	scope := NewScope(nil, nil, false, WithCaseSensitiveNames(true))

	err := searcher.Search(context.Background(), scope, SearchArgs{Query: "(", Regex: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid query")
}

func TestSearcher_Search_SkipsBinaryFiles(t *testing.T) {
	fs := newMemFS()
	fs.add("/ws/data.bin", "TODO\x00binary")
	fs.add("/ws/text.txt", "TODO text")

	ui := &recordingUI{}

	root, err := fs.Resolve("/ws")
	require.NoError(t, err)

	scope := NewScope([]Resource{root}, nil, false, WithCaseSensitiveNames(true))

	searcher := NewSearcher(fs, ui)
	err = searcher.Search(context.Background(), scope, SearchArgs{Query: "TODO", Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"/ws/text.txt"}, matchedFiles(ui.matches))
}

func TestSearcher_Search_ParallelWorkersFindTheSameMatches(t *testing.T) {
	fs := newMemFS()
	for i := 0; i < 40; i++ {
		fs.add(fmt.Sprintf("/ws/f%02d.txt", i), "needle\n")
	}

	ui := &recordingUI{}

	root, err := fs.Resolve("/ws")
	require.NoError(t, err)

	scope := NewScope([]Resource{root}, nil, false, WithCaseSensitiveNames(true))

	searcher := NewSearcher(fs, ui)
	err = searcher.Search(context.Background(), scope, SearchArgs{Query: "needle", Workers: 4})
	require.NoError(t, err)

	assert.Len(t, ui.matches, 40)
}

func TestSearcher_Search_CancelledContext(t *testing.T) {
	fs := buildTestFS()
	ui := &recordingUI{}

	root, err := fs.Resolve("/ws")
	require.NoError(t, err)

	scope := NewScope([]Resource{root}, nil, false, WithCaseSensitiveNames(true))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	searcher := NewSearcher(fs, ui)
	err = searcher.Search(ctx, scope, SearchArgs{Query: "TODO", Workers: 1})
	require.Error(t, err)
}

func TestSearcher_ListFiles(t *testing.T) {
	fs := buildTestFS()
	ui := &recordingUI{}

	root, err := fs.Resolve("/ws")
	require.NoError(t, err)

	scope := NewScope([]Resource{root}, []string{"*.go"}, false, WithCaseSensitiveNames(true))

	searcher := NewSearcher(fs, ui)
	err = searcher.ListFiles(context.Background(), scope)
	require.NoError(t, err)

	files := make([]string, 0, len(ui.files))
	for _, f := range ui.files {
		files = append(files, string(f))
	}

	sort.Strings(files)

	assert.Equal(t, []string{"/ws/main.go", "/ws/sub/deep.go", "/ws/util.go"}, files)
	assert.Equal(t, "'ws'", ui.scope.Description)
	assert.Equal(t, "*.go", ui.scope.Filter)
}

func TestCompileQuery(t *testing.T) {
	t.Run("literal queries are quoted", func(t *testing.T) {
		query, err := compileQuery(SearchArgs{Query: "a.b"})
		require.NoError(t, err)

		assert.True(t, query.MatchString("a.b"))
		assert.False(t, query.MatchString("axb"))
	})

	t.Run("regex queries are compiled as-is", func(t *testing.T) {
		query, err := compileQuery(SearchArgs{Query: "a.b", Regex: true})
		require.NoError(t, err)

		assert.True(t, query.MatchString("axb"))
	})
}

func TestIsBinary(t *testing.T) {
	assert.True(t, isBinary([]byte("abc\x00def")))
	assert.False(t, isBinary([]byte("plain text")))
	assert.False(t, isBinary(nil))
}

func TestSplitLines(t *testing.T) {
	lines := splitLines([]byte("one\r\ntwo\nthree\n"))

	require.Len(t, lines, 3)
	assert.Equal(t, "one", string(lines[0]))
	assert.Equal(t, "two", string(lines[1]))
	assert.Equal(t, "three", string(lines[2]))
}
