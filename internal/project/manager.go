package project

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cpm-labs/cpm/internal/doctor"
	"github.com/cpm-labs/cpm/internal/linker"
	"github.com/cpm-labs/cpm/internal/logging"
	"github.com/cpm-labs/cpm/internal/metadata"
	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/cpm-labs/cpm/internal/platform"
	"github.com/cpm-labs/cpm/internal/retention"
	"github.com/cpm-labs/cpm/internal/storage"
	"github.com/cpm-labs/cpm/internal/template"
	"go.uber.org/zap"
)

// ErrNoRecord is returned when a storage tree has no metadata, so its work
// tree cannot be located.
var ErrNoRecord = errors.New("project has no metadata")

// Options configures a Manager.
type Options struct {
	StorageRoot   string
	TemplatesRoot string
	// Concurrency bounds batch operations. Values below 1 mean 1.
	Concurrency int
}

// Manager runs project level operations.
type Manager struct {
	repo      *storage.Repository
	links     *linker.Synchronizer
	templates *template.Loader
	pruner    *retention.Pruner
	validator *doctor.Validator
	logger    *zap.Logger

	Concurrency int
}

// New wires a Manager over fsys.
func New(fsys platform.LinkFs, opts Options, logger *zap.Logger) *Manager {
	logger = logging.OrNop(logger)
	layout := paths.NewLayout(fsys, opts.StorageRoot)
	repo := storage.NewRepository(layout, logger.Named("storage"))
	links := linker.NewSynchronizer(fsys, layout, logger.Named("linker"))
	return &Manager{
		repo:        repo,
		links:       links,
		templates:   template.NewLoader(fsys, opts.TemplatesRoot, logger.Named("template")),
		pruner:      retention.NewPruner(layout, logger.Named("retention")),
		validator:   doctor.NewValidator(layout, links, repo, logger.Named("doctor")),
		logger:      logger,
		Concurrency: opts.Concurrency,
	}
}

func (m *Manager) Repository() *storage.Repository { return m.repo }
func (m *Manager) Linker() *linker.Synchronizer     { return m.links }
func (m *Manager) Templates() *template.Loader      { return m.templates }
func (m *Manager) Validator() *doctor.Validator     { return m.validator }

func (m *Manager) concurrency() int {
	if m.Concurrency < 1 {
		return 1
	}
	return m.Concurrency
}

// SetupResult describes a newly managed project.
type SetupResult struct {
	Record *metadata.Record
	Sync   *linker.SyncResult
}

// Setup creates storage for name and links projectPath to it. An empty
// templateName or "existing" adopts the work tree's current configuration.
func (m *Manager) Setup(name, projectPath, templateName string) (*SetupResult, error) {
	if err := paths.ValidateName(name); err != nil {
		return nil, err
	}
	projectPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}
	if m.repo.ProjectExists(name) {
		return nil, fmt.Errorf("%w: %s", storage.ErrProjectExists, name)
	}

	var rec *metadata.Record
	if templateName == "" || templateName == metadata.TypeExisting {
		rec, err = m.repo.CreateProjectFromExisting(name, projectPath)
	} else {
		tmpl, loadErr := m.templates.Load(templateName)
		if loadErr != nil {
			return nil, loadErr
		}
		rec, err = m.repo.CreateProject(name, projectPath, tmpl)
	}
	if err != nil {
		return nil, err
	}

	res := &SetupResult{Record: rec}
	res.Sync, err = m.links.CreateProjectSymlinks(projectPath, name)
	if err != nil {
		return res, fmt.Errorf("linking %s: %w", projectPath, err)
	}
	m.logger.Info("project set up", zap.String("project", name), zap.String("path", projectPath),
		zap.String("type", rec.ProjectType))
	return res, nil
}

// Record returns the metadata of name. A storage tree without metadata
// yields ErrNoRecord.
func (m *Manager) Record(name string) (*metadata.Record, error) {
	if !m.repo.ProjectExists(name) {
		return nil, errNotFound(name)
	}
	rec, err := m.repo.GetProjectInfo(name)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRecord, name)
	}
	return rec, nil
}

// FindByPath returns the record of the project whose work tree is path.
func (m *Manager) FindByPath(path string) (*metadata.Record, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	names, err := m.repo.ListProjects()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		rec, err := m.repo.GetProjectInfo(name)
		if err != nil {
			m.logger.Warn("reading metadata", zap.String("project", name), zap.Error(err))
			continue
		}
		if rec != nil && rec.Path != "" && filepath.Clean(rec.Path) == abs {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: no project is linked at %s", storage.ErrProjectNotFound, abs)
}

// Link recreates the symlinks of name at its recorded work tree.
func (m *Manager) Link(name string) (*linker.SyncResult, error) {
	rec, err := m.Record(name)
	if err != nil {
		return nil, err
	}
	return m.links.CreateProjectSymlinks(rec.Path, name)
}

// Unlink removes the symlinks at projectPath, leaving storage intact.
func (m *Manager) Unlink(projectPath string) ([]string, error) {
	return m.links.RemoveProjectSymlinks(projectPath)
}

// Backup snapshots the storage tree of name.
func (m *Manager) Backup(name string) (*storage.Backup, error) {
	return m.repo.CreateBackup(name)
}

// Remove unlinks the recorded work tree of name, if any, and deletes its
// storage tree.
func (m *Manager) Remove(name string) error {
	if !m.repo.ProjectExists(name) {
		return errNotFound(name)
	}
	rec, err := m.repo.GetProjectInfo(name)
	if err != nil {
		m.logger.Warn("reading metadata before removal", zap.String("project", name), zap.Error(err))
	}
	if rec != nil && rec.Path != "" {
		if _, err := m.links.RemoveProjectSymlinks(rec.Path); err != nil {
			m.logger.Warn("removing symlinks", zap.String("project", name), zap.Error(err))
		}
	}
	return m.repo.DeleteProject(name)
}

func errNotFound(name string) error {
	return fmt.Errorf("%w: %s", storage.ErrProjectNotFound, name)
}
