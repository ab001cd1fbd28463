package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// translateGlob converts a single file-name glob into a regular expression
// fragment. Only '*' and '?' carry meaning; every other rune matches
// literally.
func translateGlob(pattern string) string {
	var b strings.Builder

	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	return b.String()
}

// compileNamePatterns builds a single OR-combined matcher for the given
// glob patterns. A nil or empty pattern list matches every name.
func compileNamePatterns(patterns []string, caseSensitive bool) (*regexp.Regexp, error) {
	parts := make([]string, 0, len(patterns))

	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		parts = append(parts, translateGlob(p))
	}

	if len(parts) == 0 {
		return regexp.MustCompile(".*"), nil
	}

	expr := "^(" + strings.Join(parts, "|") + ")$"
	if !caseSensitive {
		expr = "(?i)" + expr
	}

	matcher, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid file name pattern %q: %w", strings.Join(patterns, ", "), err)
	}

	return matcher, nil
}

// ValidateNamePatterns compiles the given glob patterns eagerly so malformed
// input fails before any traversal starts.
func ValidateNamePatterns(patterns []string) error {
	_, err := compileNamePatterns(patterns, true)
	return err
}

var (
	caseProbeOnce   sync.Once
	caseSensitiveFS bool
)

// CaseSensitiveNames reports whether the filesystem backing the temp
// directory distinguishes names differing only in case. The probe runs once
// per process; scopes pick the result up at construction time.
func CaseSensitiveNames() bool {
	caseProbeOnce.Do(func() {
		caseSensitiveFS = probeCaseSensitivity()
	})

	return caseSensitiveFS
}

// probeCaseSensitivity creates a mixed-case temp file and stats the
// case-swapped name. On a case-insensitive filesystem both names resolve to
// the same file.
func probeCaseSensitivity() bool {
	f, err := os.CreateTemp("", "ScourCase*")
	if err != nil {
		// Nothing to probe against; assume the POSIX default.
		return true
	}

	name := f.Name()
	_ = f.Close()

	defer func() { _ = os.Remove(name) }()

	swapped := filepath.Join(filepath.Dir(name), strings.ToLower(filepath.Base(name)))
	if swapped == name {
		swapped = filepath.Join(filepath.Dir(name), strings.ToUpper(filepath.Base(name)))
	}

	_, err = os.Stat(swapped)

	return err != nil
}
