// Package adapter contains filesystem and persistence adapters for scour.
package adapter

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"scour.dev/pkg/scour/internal/domain"
	m "scour.dev/pkg/scour/internal/model"
)

// DefaultDerivedNames are the folder names treated as build output when no
// configuration overrides them.
var DefaultDerivedNames = []string{
	"build", "dist", "target", "out", "bin", "obj", "node_modules", ".gradle",
}

// LocalResourceFS maps the local filesystem onto the domain's resource
// view. A resource is derived when its own name, or any ancestor's name, is
// in the derived-name set.
type LocalResourceFS struct {
	derivedNames map[string]struct{}
}

// NewLocalResourceFS constructs a LocalResourceFS. A nil derivedNames slice
// selects DefaultDerivedNames; an empty one disables derived detection.
func NewLocalResourceFS(derivedNames []string) *LocalResourceFS {
	if derivedNames == nil {
		derivedNames = DefaultDerivedNames
	}

	names := make(map[string]struct{}, len(derivedNames))
	for _, name := range derivedNames {
		names[name] = struct{}{}
	}

	return &LocalResourceFS{derivedNames: names}
}

// Resolve turns a path into a Resource rooted in the real filesystem.
func (a *LocalResourceFS) Resolve(path m.Path) (domain.Resource, error) {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	kind := m.KindFile
	if info.IsDir() {
		kind = m.KindFolder
	}

	return &localResource{fs: a, path: abs, kind: kind}, nil
}

// Walk visits root and everything below it. A SkipChildren result from fn
// prunes the subtree of the current folder.
func (a *LocalResourceFS) Walk(root domain.Resource, fn domain.WalkFunc) error {
	return filepath.WalkDir(string(root.FullPath()), func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fn(nil, err)
		}

		kind := m.KindFile
		if entry.IsDir() {
			kind = m.KindFolder
		}

		err = fn(&localResource{fs: a, path: path, kind: kind}, nil)
		if errors.Is(err, domain.SkipChildren) {
			if entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		return err
	})
}

// ReadFile loads file contents from disk.
func (a *LocalResourceFS) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

func (a *LocalResourceFS) nameIsDerived(name string) bool {
	_, ok := a.derivedNames[name]
	return ok
}

// localResource implements domain.Resource over a cleaned absolute path.
type localResource struct {
	fs   *LocalResourceFS
	path string
	kind m.Kind
}

func (r *localResource) FullPath() m.Path {
	return m.Path(r.path)
}

func (r *localResource) Name() string {
	return filepath.Base(r.path)
}

func (r *localResource) Kind() m.Kind {
	return r.kind
}

func (r *localResource) Parent() domain.Resource {
	parent := filepath.Dir(r.path)
	if parent == r.path {
		return nil
	}

	return &localResource{fs: r.fs, path: parent, kind: m.KindFolder}
}

// IsDerived reports whether the resource's own name or any ancestor segment
// is marked derived, so files inside a build folder inherit the flag.
func (r *localResource) IsDerived() bool {
	for cur := domain.Resource(r); cur != nil; cur = cur.Parent() {
		if r.fs.nameIsDerived(cur.Name()) {
			return true
		}
	}

	return false
}
