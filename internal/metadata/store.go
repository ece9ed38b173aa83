package metadata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/spf13/afero"
)

// Store persists Records at their layout location.
type Store struct {
	fs     afero.Fs
	layout *paths.Layout
}

// NewStore returns a Store over the layout's filesystem.
func NewStore(layout *paths.Layout) *Store {
	return &Store{fs: layout.Fs(), layout: layout}
}

// Read loads the record for name. A missing file yields (nil, nil); a file
// that exists but does not parse yields ErrMalformed.
func (s *Store) Read(name string) (*Record, error) {
	path := s.layout.MetadataPath(name)
	data, err := afero.ReadFile(s.fs, path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata %s: %w", path, err)
	}
	rec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Write stores rec under rec.Name, replacing any previous record.
func (s *Store) Write(rec *Record) error {
	path := s.layout.MetadataPath(rec.Name)
	if err := s.fs.MkdirAll(filepath.Dir(path), paths.DirPermNormal); err != nil {
		return fmt.Errorf("creating storage directory for metadata: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, rec.Marshal(), paths.FilePermNormal); err != nil {
		return fmt.Errorf("writing metadata %s: %w", path, err)
	}
	return nil
}
