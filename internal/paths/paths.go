package paths

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Directory and file name constants for the storage convention.
const (
	BackupsDir   = "backups"
	MetadataFile = ".project-info"
	ClaudeDir    = ".claude"
	ClaudeMD     = "CLAUDE.md"
	SettingsFile = "settings.json"
	TemplateMeta = "template.yaml"
	BackupPrefix = "backup-"
)

// Permission constants.
const (
	DirPermNormal  os.FileMode = 0755
	FilePermNormal os.FileMode = 0644
)

// Layout resolves paths inside one storage root.
type Layout struct {
	fs   afero.Fs
	root string
}

// NewLayout returns a Layout rooted at storageRoot on fsys.
func NewLayout(fsys afero.Fs, storageRoot string) *Layout {
	return &Layout{fs: fsys, root: filepath.Clean(storageRoot)}
}

// Fs returns the filesystem the layout checks against.
func (l *Layout) Fs() afero.Fs { return l.fs }

// StorageRoot returns the directory holding every project storage tree.
func (l *Layout) StorageRoot() string { return l.root }

// ProjectDir returns storage/<name>.
func (l *Layout) ProjectDir(name string) string {
	return filepath.Join(l.root, name)
}

// BackupsDir returns storage/<name>/backups.
func (l *Layout) BackupsDir(name string) string {
	return filepath.Join(l.root, name, BackupsDir)
}

// MetadataPath returns storage/<name>/.project-info.
func (l *Layout) MetadataPath(name string) string {
	return filepath.Join(l.root, name, MetadataFile)
}

// ClaudeMDPath returns storage/<name>/CLAUDE.md.
func (l *Layout) ClaudeMDPath(name string) string {
	return filepath.Join(l.root, name, ClaudeMD)
}

// SettingsPath returns storage/<name>/settings.json.
func (l *Layout) SettingsPath(name string) string {
	return filepath.Join(l.root, name, SettingsFile)
}

// Exists reports whether path exists. Stat errors other than not-exist are
// treated as existing so callers surface them on the next real operation.
func (l *Layout) Exists(path string) bool {
	_, err := l.fs.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

// EnsureDir creates path and any missing parents.
func (l *Layout) EnsureDir(path string) error {
	if info, err := l.fs.Stat(path); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists but is not a directory", path)
	}
	if err := l.fs.MkdirAll(path, DirPermNormal); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}
