package domain

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	m "scour.dev/pkg/scour/internal/model"
)

// Scope decides whether a resource takes part in a search. It combines a
// deduplicated set of root resources, optional file-name glob patterns and
// a flag controlling whether derived resources are visited.
//
// A Scope is immutable after construction; the compiled name matcher is the
// only lazily initialized field.
type Scope struct {
	description      string
	roots            []Resource
	fileNamePatterns []string
	includeDerived   bool
	workingSets      []WorkingSet

	caseSensitive bool

	matcherOnce sync.Once
	matcher     *regexp.Regexp
	matcherErr  error
}

// ScopeOption adjusts scope construction.
type ScopeOption func(*Scope)

// WithCaseSensitiveNames overrides the per-process filesystem probe when the
// caller already knows how the host filesystem treats name casing.
func WithCaseSensitiveNames(sensitive bool) ScopeOption {
	return func(s *Scope) {
		s.caseSensitive = sensitive
	}
}

// NewScope returns a scope for the given root resources. Redundant roots are
// removed: a root nested inside another root is dropped, and the broader
// root always wins regardless of input order.
func NewScope(roots []Resource, fileNamePatterns []string, includeDerived bool, options ...ScopeOption) *Scope {
	deduped := removeRedundantRoots(roots, includeDerived)
	return newScope(describeRoots(roots), deduped, nil, fileNamePatterns, includeDerived, options)
}

// NewWorkspaceScope returns a scope covering the entire workspace rooted at
// workspaceRoot.
func NewWorkspaceScope(workspaceRoot Resource, fileNamePatterns []string, includeDerived bool, options ...ScopeOption) *Scope {
	return newScope("workspace", []Resource{workspaceRoot}, nil, fileNamePatterns, includeDerived, options)
}

// NewWorkingSetScope returns a scope for the given working sets. An empty
// aggregate set expands to the whole workspace so a freshly created
// aggregate does not silently match nothing.
func NewWorkingSetScope(sets []WorkingSet, workspaceRoot Resource, fileNamePatterns []string, includeDerived bool, options ...ScopeOption) *Scope {
	description := fmt.Sprintf("working sets %s", describeWorkingSets(sets))
	roots := workingSetRoots(sets, workspaceRoot, includeDerived)

	return newScope(description, roots, sets, fileNamePatterns, includeDerived, options)
}

func newScope(description string, roots []Resource, sets []WorkingSet, fileNamePatterns []string, includeDerived bool, options []ScopeOption) *Scope {
	s := &Scope{
		description:      description,
		roots:            roots,
		fileNamePatterns: fileNamePatterns,
		includeDerived:   includeDerived,
		workingSets:      sets,
		caseSensitive:    CaseSensitiveNames(),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// Contains reports whether the resource belongs to the scope. Containers are
// accepted structurally; the file-name patterns apply to leaves only.
// Descent into children is the traversal engine's job, not the scope's.
func (s *Scope) Contains(r Resource) bool {
	if r == nil {
		return false
	}

	if !s.includeDerived && r.IsDerived() {
		// All resources in a derived folder count as derived.
		return false
	}

	if r.Kind() == m.KindFile {
		return s.matchesName(r.Name())
	}

	return true
}

// Roots returns the deduplicated root resources of the scope.
func (s *Scope) Roots() []Resource {
	return s.roots
}

// FileNamePatterns returns the configured glob patterns, or nil when every
// file name matches.
func (s *Scope) FileNamePatterns() []string {
	return s.fileNamePatterns
}

// WorkingSets returns the working sets the scope was built from, or nil.
func (s *Scope) WorkingSets() []WorkingSet {
	return s.workingSets
}

// IncludeDerived reports whether derived resources are part of the scope.
func (s *Scope) IncludeDerived() bool {
	return s.includeDerived
}

// Description returns the human-readable scope description.
func (s *Scope) Description() string {
	return s.description
}

// FilterDescription returns a short rendering of the file-name patterns.
func (s *Scope) FilterDescription() string {
	if len(s.fileNamePatterns) == 0 {
		return "*"
	}

	patterns := append([]string(nil), s.fileNamePatterns...)
	sort.Strings(patterns)

	return strings.Join(patterns, ", ")
}

// matchesName lazily compiles the OR-combined pattern matcher and applies it
// to a leaf name. The sync.Once guard makes concurrent first use install
// exactly one matcher.
func (s *Scope) matchesName(name string) bool {
	s.matcherOnce.Do(func() {
		s.matcher, s.matcherErr = compileNamePatterns(s.fileNamePatterns, s.caseSensitive)
	})

	if s.matcherErr != nil {
		slog.Error("file name patterns failed to compile", "patterns", s.fileNamePatterns, "error", s.matcherErr)
		return false
	}

	return s.matcher.MatchString(name)
}

// removeRedundantRoots drops candidates covered by an already accepted root
// and evicts accepted roots subsumed by a broader candidate. Derived
// candidates are discarded entirely unless derived inclusion was requested.
func removeRedundantRoots(roots []Resource, includeDerived bool) []Resource {
	accepted := make([]Resource, 0, len(roots))

	for _, r := range roots {
		accepted = addRoot(accepted, r, includeDerived)
	}

	return accepted
}

func addRoot(accepted []Resource, candidate Resource, includeDerived bool) []Resource {
	if candidate == nil {
		return accepted
	}

	if !includeDerived && inDerivedTree(candidate) {
		return accepted
	}

	path := candidate.FullPath()

	for i := len(accepted) - 1; i >= 0; i-- {
		other := accepted[i].FullPath()

		if isPathPrefix(other, path) {
			// Already covered by a broader root.
			return accepted
		}

		if isPathPrefix(path, other) {
			// Subsumed by the candidate.
			accepted = append(accepted[:i], accepted[i+1:]...)
		}
	}

	return append(accepted, candidate)
}

// inDerivedTree walks up to the tree root looking for a derived marker.
func inDerivedTree(r Resource) bool {
	for cur := r; cur != nil; cur = cur.Parent() {
		if cur.IsDerived() {
			return true
		}
	}

	return false
}

// isPathPrefix reports whether ancestor equals path or contains it as a
// segment-aligned prefix: "/a" covers "/a/b" but not "/ab".
func isPathPrefix(ancestor, path m.Path) bool {
	a := filepath.Clean(string(ancestor))
	p := filepath.Clean(string(path))

	if a == p {
		return true
	}

	if !strings.HasSuffix(a, string(filepath.Separator)) {
		a += string(filepath.Separator)
	}

	return strings.HasPrefix(p, a)
}

// workingSetRoots expands working sets into a deduplicated root list.
func workingSetRoots(sets []WorkingSet, workspaceRoot Resource, includeDerived bool) []Resource {
	roots := make([]Resource, 0)

	for _, ws := range sets {
		if ws.IsAggregate() && ws.IsEmpty() {
			// An empty aggregate set means "everything", not "nothing".
			return []Resource{workspaceRoot}
		}

		for _, element := range ws.Elements() {
			roots = addRoot(roots, element, includeDerived)
		}
	}

	return roots
}

const maxDescribedRoots = 3

// describeRoots quotes the first few root names, mirroring how search
// dialogs summarize a scope.
func describeRoots(roots []Resource) string {
	var b strings.Builder

	n := len(roots)
	if n > maxDescribedRoots {
		n = maxDescribedRoots
	}

	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(&b, "'%s'", roots[i].Name())
	}

	if len(roots) > n {
		b.WriteString("...")
	}

	return b.String()
}

func describeWorkingSets(sets []WorkingSet) string {
	names := make([]string, 0, len(sets))
	for _, ws := range sets {
		names = append(names, fmt.Sprintf("'%s'", ws.Name()))
	}

	return strings.Join(names, ", ")
}
