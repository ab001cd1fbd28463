package adapter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"scour.dev/pkg/scour/internal/domain"
	m "scour.dev/pkg/scour/internal/model"
)

// WorkingSetStore persists named working sets between runs.
type WorkingSetStore interface {
	Load() ([]m.WorkingSet, error)
	Save(sets []m.WorkingSet) error
}

const worksetFileVersion = 1

// worksetFile is the on-disk layout of the working-set store.
type worksetFile struct {
	Version int            `yaml:"version"`
	Sets    []m.WorkingSet `yaml:"working_sets"`
}

// YAMLWorkingSetStore keeps working sets in a single YAML file.
type YAMLWorkingSetStore struct {
	path m.Path
}

// NewYAMLWorkingSetStore creates a store backed by the file at path.
func NewYAMLWorkingSetStore(path m.Path) *YAMLWorkingSetStore {
	return &YAMLWorkingSetStore{path: path}
}

// Load reads all working sets. A missing file is an empty store, not an
// error.
func (s *YAMLWorkingSetStore) Load() ([]m.WorkingSet, error) {
	content, err := os.ReadFile(string(s.path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read working sets: %w", err)
	}

	var file worksetFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parse working sets: %w", err)
	}

	return file.Sets, nil
}

// Save writes all working sets, replacing the previous contents.
func (s *YAMLWorkingSetStore) Save(sets []m.WorkingSet) error {
	content, err := yaml.Marshal(worksetFile{Version: worksetFileVersion, Sets: sets})
	if err != nil {
		return fmt.Errorf("encode working sets: %w", err)
	}

	if err := os.WriteFile(string(s.path), content, 0o644); err != nil {
		return fmt.Errorf("write working sets: %w", err)
	}

	return nil
}

// WorkingSetView adapts a stored working set to the domain interface,
// resolving element paths through the filesystem. Elements that no longer
// exist are skipped.
func (a *LocalResourceFS) WorkingSetView(ws m.WorkingSet) domain.WorkingSet {
	return &worksetView{fs: a, ws: ws}
}

type worksetView struct {
	fs *LocalResourceFS
	ws m.WorkingSet
}

func (v *worksetView) Name() string {
	return v.ws.Name
}

func (v *worksetView) Elements() []domain.Resource {
	elements := make([]domain.Resource, 0, len(v.ws.Elements))

	for _, path := range v.ws.Elements {
		r, err := v.fs.Resolve(path)
		if err != nil {
			continue
		}

		elements = append(elements, r)
	}

	return elements
}

func (v *worksetView) IsAggregate() bool {
	return v.ws.Aggregate
}

func (v *worksetView) IsEmpty() bool {
	return len(v.ws.Elements) == 0
}
