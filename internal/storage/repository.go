package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cpm-labs/cpm/internal/logging"
	"github.com/cpm-labs/cpm/internal/metadata"
	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/cpm-labs/cpm/internal/template"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// defaultSettings is written when a project has no settings.json of its own.
const defaultSettings = `{
  "permissions": {
    "allow": [],
    "deny": []
  }
}
`

// Repository creates, updates, backs up and deletes project storage trees.
type Repository struct {
	fs     afero.Fs
	layout *paths.Layout
	meta   *metadata.Store
	logger *zap.Logger

	// Now returns the current time. Tests replace it for stable timestamps.
	Now func() time.Time
}

// NewRepository returns a Repository over layout.
func NewRepository(layout *paths.Layout, logger *zap.Logger) *Repository {
	return &Repository{
		fs:     layout.Fs(),
		layout: layout,
		meta:   metadata.NewStore(layout),
		logger: logging.OrNop(logger),
		Now:    time.Now,
	}
}

// Layout returns the storage layout the repository writes to.
func (r *Repository) Layout() *paths.Layout { return r.layout }

// ProjectExists reports whether a storage tree exists for name.
func (r *Repository) ProjectExists(name string) bool {
	info, err := r.fs.Stat(r.layout.ProjectDir(name))
	return err == nil && info.IsDir()
}

// CreateProject seeds the storage tree for name from tmpl and writes a fresh
// record. Files already present in storage are kept.
func (r *Repository) CreateProject(name, projectPath string, tmpl *template.Template) (*metadata.Record, error) {
	if err := paths.ValidateName(name); err != nil {
		return nil, err
	}
	dir := r.layout.ProjectDir(name)
	if err := r.layout.EnsureDir(dir); err != nil {
		return nil, err
	}

	n, err := copyTree(r.fs, tmpl.Path, dir, copyOptions{skip: skipTemplateFiles})
	if err != nil {
		return nil, fmt.Errorf("copying template %s: %w", tmpl.Name, err)
	}
	r.logger.Info("seeded storage from template",
		zap.String("project", name), zap.String("template", tmpl.Name), zap.Int("files", n))

	now := r.now()
	rec := &metadata.Record{
		Name:            name,
		Path:            projectPath,
		ProjectType:     tmpl.Name,
		TemplateVersion: tmpl.Version(),
		SetupDate:       now,
		LastUpdate:      now,
	}
	if err := r.meta.Write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CreateProjectFromExisting adopts the .claude directory (and root CLAUDE.md)
// of the work tree at projectPath. Without local content, default settings
// are synthesized. Storage always ends up with a CLAUDE.md.
func (r *Repository) CreateProjectFromExisting(name, projectPath string) (*metadata.Record, error) {
	if err := paths.ValidateName(name); err != nil {
		return nil, err
	}
	dir := r.layout.ProjectDir(name)
	if err := r.layout.EnsureDir(dir); err != nil {
		return nil, err
	}

	rootMD := filepath.Join(projectPath, paths.ClaudeMD)
	if info, err := r.fs.Stat(rootMD); err == nil && info.Mode().IsRegular() {
		if _, err := copyFile(r.fs, rootMD, r.layout.ClaudeMDPath(name), false); err != nil {
			return nil, err
		}
	}

	local := filepath.Join(projectPath, paths.ClaudeDir)
	if info, err := r.fs.Stat(local); err == nil && info.IsDir() {
		n, err := copyTree(r.fs, local, dir, copyOptions{})
		if err != nil {
			return nil, fmt.Errorf("copying existing %s: %w", local, err)
		}
		r.logger.Info("adopted existing configuration",
			zap.String("project", name), zap.String("from", local), zap.Int("files", n))
	} else {
		if err := r.WriteDefaultSettings(name); err != nil {
			return nil, err
		}
	}

	if err := r.EnsureClaudeMD(name); err != nil {
		return nil, err
	}

	now := r.now()
	rec := &metadata.Record{
		Name:            name,
		Path:            projectPath,
		ProjectType:     metadata.TypeExisting,
		TemplateVersion: metadata.VersionNone,
		SetupDate:       now,
		LastUpdate:      now,
	}
	if err := r.meta.Write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateProject backs up the storage tree, copies tmpl over it and merges
// CLAUDE.md. The backup is always taken and a failure to take it aborts the
// update.
func (r *Repository) UpdateProject(name string, tmpl *template.Template) (*Backup, error) {
	if !r.ProjectExists(name) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}

	backup, err := r.CreateBackup(name)
	if err != nil {
		return nil, fmt.Errorf("backing up before update: %w", err)
	}

	dir := r.layout.ProjectDir(name)
	_, err = copyTree(r.fs, tmpl.Path, dir, copyOptions{
		overwrite: true,
		skip: func(rel string, isDir bool) bool {
			return rel == paths.ClaudeMD || skipTemplateFiles(rel, isDir)
		},
	})
	if err != nil {
		return backup, fmt.Errorf("applying template %s: %w", tmpl.Name, err)
	}

	src := filepath.Join(tmpl.Path, paths.ClaudeMD)
	if _, err := r.fs.Stat(src); err == nil {
		if err := mergeClaudeFile(r.fs, src, r.layout.ClaudeMDPath(name)); err != nil {
			return backup, err
		}
	}

	rec, err := r.meta.Read(name)
	if err != nil {
		if !errors.Is(err, metadata.ErrMalformed) {
			return backup, err
		}
		r.logger.Warn("rewriting malformed metadata", zap.String("project", name), zap.Error(err))
		rec = nil
	}
	now := r.now()
	if rec == nil {
		rec = &metadata.Record{Name: name, SetupDate: now}
	}
	rec.ProjectType = tmpl.Name
	rec.TemplateVersion = tmpl.Version()
	rec.LastUpdate = now
	if err := r.meta.Write(rec); err != nil {
		return backup, err
	}

	r.logger.Info("updated project",
		zap.String("project", name), zap.String("template", tmpl.Name),
		zap.String("version", tmpl.Version()), zap.String("backup", backup.Name))
	return backup, nil
}

// DeleteProject removes the storage tree for name, backups included.
func (r *Repository) DeleteProject(name string) error {
	if !r.ProjectExists(name) {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	dir := r.layout.ProjectDir(name)
	if err := r.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	r.logger.Info("deleted project storage", zap.String("project", name))
	return nil
}

// RemoveProject is an alias for DeleteProject.
func (r *Repository) RemoveProject(name string) error {
	return r.DeleteProject(name)
}

// ListProjects returns the names of all storage trees, sorted. A missing
// storage root yields an empty list.
func (r *Repository) ListProjects() ([]string, error) {
	entries, err := afero.ReadDir(r.fs, r.layout.StorageRoot())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing storage: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// GetProjectInfo returns the metadata record for name, or nil if the
// storage tree has none.
func (r *Repository) GetProjectInfo(name string) (*metadata.Record, error) {
	return r.meta.Read(name)
}

// EnsureStorage creates the storage directory for name if it is missing.
func (r *Repository) EnsureStorage(name string) error {
	return r.layout.EnsureDir(r.layout.ProjectDir(name))
}

// WriteDefaultSettings writes settings.json with empty permission lists
// unless one already exists.
func (r *Repository) WriteDefaultSettings(name string) error {
	path := r.layout.SettingsPath(name)
	if r.layout.Exists(path) {
		return nil
	}
	if err := r.EnsureStorage(name); err != nil {
		return err
	}
	if err := afero.WriteFile(r.fs, path, []byte(defaultSettings), paths.FilePermNormal); err != nil {
		return fmt.Errorf("writing default settings: %w", err)
	}
	return nil
}

// EnsureClaudeMD writes a placeholder CLAUDE.md into storage unless one
// already exists.
func (r *Repository) EnsureClaudeMD(name string) error {
	path := r.layout.ClaudeMDPath(name)
	if r.layout.Exists(path) {
		return nil
	}
	if err := r.EnsureStorage(name); err != nil {
		return err
	}
	body := fmt.Sprintf("# %s\n\n## Project-Specific\n\nAdd project-specific instructions for Claude here.\n", name)
	if err := afero.WriteFile(r.fs, path, []byte(body), paths.FilePermNormal); err != nil {
		return fmt.Errorf("writing placeholder CLAUDE.md: %w", err)
	}
	return nil
}

func (r *Repository) now() time.Time {
	return r.Now().Truncate(time.Second)
}
