package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cpm-labs/cpm/internal/linker"
	"github.com/cpm-labs/cpm/internal/logging"
	"github.com/cpm-labs/cpm/internal/metadata"
	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/cpm-labs/cpm/internal/platform"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// EssentialFiles must exist in every storage tree.
var EssentialFiles = []string{paths.SettingsFile}

// Linker is the part of the symlink synchronizer the validator uses.
type Linker interface {
	Status(projectPath, name string) linker.Status
	CreateProjectSymlinks(projectPath, name string) (*linker.SyncResult, error)
}

// Storage is the part of the storage repository used for repairs.
type Storage interface {
	EnsureStorage(name string) error
	EnsureClaudeMD(name string) error
	WriteDefaultSettings(name string) error
}

// Validator checks and repairs managed projects.
type Validator struct {
	fs      afero.Fs
	layout  *paths.Layout
	meta    *metadata.Store
	links   Linker
	storage Storage
	logger  *zap.Logger

	// Access reports whether a directory is readable and writable. It must
	// not modify the directory.
	Access func(dir string) error
}

// NewValidator returns a Validator over layout.
func NewValidator(layout *paths.Layout, links Linker, storage Storage, logger *zap.Logger) *Validator {
	return &Validator{
		fs:      layout.Fs(),
		layout:  layout,
		meta:    metadata.NewStore(layout),
		links:   links,
		storage: storage,
		logger:  logging.OrNop(logger),
		Access:  accessFor(layout.Fs()),
	}
}

// accessFor asks the OS on a real filesystem and falls back to the owner
// write bit elsewhere.
func accessFor(fsys afero.Fs) func(string) error {
	if _, ok := fsys.(*afero.OsFs); ok {
		return platform.CheckAccess
	}
	return func(dir string) error {
		info, err := fsys.Stat(dir)
		if err != nil {
			return err
		}
		if info.Mode().Perm()&0o200 == 0 {
			return &os.PathError{Op: "access", Path: dir, Err: os.ErrPermission}
		}
		return nil
	}
}

// Validate runs every check for project name linked at projectPath. It never
// modifies anything.
func (v *Validator) Validate(projectPath, name string) *Report {
	r := &Report{Project: name, ProjectPath: projectPath}

	if info, err := v.fs.Stat(projectPath); err != nil || !info.IsDir() {
		r.add(SeverityError, CategoryStorage, projectPath, "project directory does not exist", false)
		return r
	}
	if !platform.IsSymlinkSupported() {
		r.add(SeverityError, CategoryPermission, projectPath,
			"this system cannot create symlinks; enable Developer Mode or run as Administrator", false)
	}

	storageOK := v.checkStorageDir(r, name)
	v.checkLinks(r, projectPath, name)
	v.checkStorageContents(r, name, storageOK)

	v.logger.Debug("validated project", zap.String("project", name), zap.Int("issues", len(r.Issues)))
	return r
}

// ValidateStorage runs the storage checks of name alone, for projects whose
// work tree is unknown because their metadata is missing or unreadable.
func (v *Validator) ValidateStorage(name string) *Report {
	r := &Report{Project: name}
	storageOK := v.checkStorageDir(r, name)
	v.checkStorageContents(r, name, storageOK)

	v.logger.Debug("validated storage", zap.String("project", name), zap.Int("issues", len(r.Issues)))
	return r
}

func (v *Validator) checkStorageDir(r *Report, name string) bool {
	dir := v.layout.ProjectDir(name)
	if v.layout.Exists(dir) {
		return true
	}
	r.add(SeverityError, CategoryStorage, dir, "storage directory does not exist", true)
	return false
}

// checkStorageContents always checks the essential files; access and
// metadata need the directory itself.
func (v *Validator) checkStorageContents(r *Report, name string, storageOK bool) {
	v.checkEssentialFiles(r, name)
	if !storageOK {
		return
	}
	v.checkAccess(r, v.layout.ProjectDir(name))
	v.checkMetadata(r, name)
}

func (v *Validator) checkLinks(r *Report, projectPath, name string) {
	st := v.links.Status(projectPath, name)

	dir := st.ClaudeDir
	switch dir.State {
	case linker.StateAbsent:
		r.add(SeverityError, CategorySymlink, dir.Path, ".claude symlink is missing", true)
	case linker.StateForeign:
		r.add(SeverityError, CategorySymlink, dir.Path, ".claude is a real file or directory, not a symlink", true)
	case linker.StateStale:
		if dir.Target == dir.Want {
			r.add(SeverityError, CategorySymlink, dir.Path,
				fmt.Sprintf(".claude target %q does not exist", dir.Target), true)
			break
		}
		r.add(SeverityError, CategorySymlink, dir.Path,
			fmt.Sprintf(".claude points to %q instead of %q", dir.Target, dir.Want), true)
	}

	md := filepath.Join(projectPath, paths.ClaudeMD)
	if _, err := v.fs.Stat(md); err != nil {
		r.add(SeverityWarning, CategorySymlink, md, "CLAUDE.md is missing or its target does not exist", true)
	}
}

func (v *Validator) checkEssentialFiles(r *Report, name string) {
	for _, f := range EssentialFiles {
		p := filepath.Join(v.layout.ProjectDir(name), f)
		if !v.layout.Exists(p) {
			r.add(SeverityWarning, CategoryTemplate, p, f+" is missing from storage", true)
		}
	}
}

// checkAccess verifies the storage directory can be listed and written.
func (v *Validator) checkAccess(r *Report, dir string) {
	if _, err := afero.ReadDir(v.fs, dir); err != nil {
		r.add(SeverityError, CategoryPermission, dir, fmt.Sprintf("storage directory is not readable: %v", err), false)
		return
	}
	if err := v.Access(dir); err != nil {
		r.add(SeverityError, CategoryPermission, dir, fmt.Sprintf("storage directory is not writable: %v", err), false)
	}
}

func (v *Validator) checkMetadata(r *Report, name string) {
	path := v.layout.MetadataPath(name)
	rec, err := v.meta.Read(name)
	switch {
	case err != nil:
		r.add(SeverityWarning, CategoryStorage, path, fmt.Sprintf("project metadata is unreadable: %v", err), false)
	case rec == nil:
		r.add(SeverityInfo, CategoryStorage, path, "project metadata is missing", false)
	}
}

// Repair attempts every fixable issue of report independently and tallies
// the outcome.
func (v *Validator) Repair(report *Report) RepairResult {
	var res RepairResult
	for _, issue := range report.Fixable() {
		res.Attempted++
		if err := v.fix(report, issue); err != nil {
			res.Failed++
			v.logger.Warn("repair failed",
				zap.String("project", report.Project), zap.String("category", string(issue.Category)),
				zap.String("path", issue.Path), zap.Error(err))
			continue
		}
		res.Fixed++
	}
	return res
}

func (v *Validator) fix(report *Report, issue Issue) error {
	switch issue.Category {
	case CategorySymlink:
		if report.ProjectPath == "" {
			return fmt.Errorf("work tree of %s is unknown", report.Project)
		}
		if filepath.Base(issue.Path) == paths.ClaudeMD {
			if err := v.storage.EnsureClaudeMD(report.Project); err != nil {
				return err
			}
		}
		_, err := v.links.CreateProjectSymlinks(report.ProjectPath, report.Project)
		return err
	case CategoryStorage:
		return v.storage.EnsureStorage(report.Project)
	case CategoryTemplate:
		return v.storage.WriteDefaultSettings(report.Project)
	default:
		return fmt.Errorf("no repair for %s issues", issue.Category)
	}
}
