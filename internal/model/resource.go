// Package model defines the data structures shared across scour.
package model

// Path represents a file system path.
type Path string

// Kind distinguishes leaf files from container folders.
type Kind int

const (
	// KindFile is a leaf resource whose name is subject to pattern matching.
	KindFile Kind = iota
	// KindFolder is a container resource; traversal descends into it.
	KindFolder
)

// WorkingSet is a named, user-curated group of root paths. An aggregate set
// is computed rather than manually assembled.
type WorkingSet struct {
	Name      string `yaml:"name"`
	Elements  []Path `yaml:"elements"`
	Aggregate bool   `yaml:"aggregate,omitempty"`
}
