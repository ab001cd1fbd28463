// Package domain holds the scope filtering and search logic of scour.
package domain

import (
	"errors"

	m "scour.dev/pkg/scour/internal/model"
)

// Resource is the narrow view of a file or folder that scope filtering
// needs. Adapters map their own filesystem abstraction onto it.
type Resource interface {
	// FullPath returns the cleaned absolute path of the resource.
	FullPath() m.Path

	// Name returns the last path segment.
	Name() string

	// Kind reports whether the resource is a leaf file or a container.
	Kind() m.Kind

	// Parent returns the containing resource, or nil at the tree root.
	Parent() Resource

	// IsDerived reports whether the resource is a build artifact or lives
	// inside one.
	IsDerived() bool
}

// WorkingSet is a named group of resources used to seed a scope.
type WorkingSet interface {
	Name() string
	Elements() []Resource

	// IsAggregate reports whether the set is computed rather than
	// user-assembled.
	IsAggregate() bool
	IsEmpty() bool
}

// SkipChildren can be returned from a WalkFunc to prune a folder's subtree.
var SkipChildren = errors.New("skip children")

// WalkFunc is the callback invoked for every resource a Walk visits. When
// the walker failed to read an entry it passes the error through and the
// callback decides whether to continue.
type WalkFunc func(r Resource, err error) error

// ResourceFS abstracts the filesystem traversal the searcher relies on, so
// scope logic can be exercised against fakes.
type ResourceFS interface {
	// Resolve turns a path into a Resource, following the adapter's notion
	// of absolute paths and derived markers.
	Resolve(path m.Path) (Resource, error)

	// Walk visits root and every resource below it in depth-first order.
	Walk(root Resource, fn WalkFunc) error

	// ReadFile loads a file's contents.
	ReadFile(path m.Path) ([]byte, error)
}
