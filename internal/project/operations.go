package project

import (
	"github.com/cpm-labs/cpm/internal/doctor"
	"github.com/cpm-labs/cpm/internal/linker"
	"github.com/cpm-labs/cpm/internal/metadata"
	"github.com/cpm-labs/cpm/internal/retention"
	"github.com/cpm-labs/cpm/internal/template"
	"go.uber.org/zap"
)

// UpdateOutcome describes what Update did to one project.
type UpdateOutcome struct {
	Template string
	From     string
	To       string
	Backup   string
	Skipped  bool
	Reason   string
}

// Update applies the latest version of the project's template. A project
// already on that version is skipped unless force is set. Projects adopted
// from existing content have no template and are always skipped.
func (m *Manager) Update(name string, force bool) (*UpdateOutcome, error) {
	rec, err := m.Record(name)
	if err != nil {
		return nil, err
	}
	out := &UpdateOutcome{Template: rec.ProjectType, From: rec.TemplateVersion}

	if rec.ProjectType == metadata.TypeExisting {
		out.Skipped, out.Reason = true, "adopted from existing configuration, no template"
		return out, nil
	}

	tmpl, err := m.templates.Load(rec.ProjectType)
	if err != nil {
		return nil, err
	}
	out.To = tmpl.Version()
	if !force && !template.IsNewer(tmpl.Version(), rec.TemplateVersion) {
		out.Skipped, out.Reason = true, "already up to date"
		return out, nil
	}

	backup, err := m.repo.UpdateProject(name, tmpl)
	if err != nil {
		return nil, err
	}
	out.Backup = backup.Name
	return out, nil
}

// UpdateAll runs Update for every project.
func (m *Manager) UpdateAll(force bool) (*BatchResult[*UpdateOutcome], error) {
	names, err := m.repo.ListProjects()
	if err != nil {
		return nil, err
	}
	return runBatch(m, "update", names, func(name string) (*UpdateOutcome, error) {
		return m.Update(name, force)
	}), nil
}

// Validate checks project name at its recorded work tree. Without a usable
// record the work tree is unknown, so only storage is checked and the
// metadata problem is part of the report.
func (m *Manager) Validate(name string) (*doctor.Report, error) {
	if !m.repo.ProjectExists(name) {
		return nil, errNotFound(name)
	}
	rec, err := m.repo.GetProjectInfo(name)
	if err != nil {
		m.logger.Debug("validating storage only", zap.String("project", name), zap.Error(err))
	}
	if rec == nil || rec.Path == "" {
		return m.validator.ValidateStorage(name), nil
	}
	return m.validator.Validate(rec.Path, name), nil
}

// ValidateAll runs Validate for every project.
func (m *Manager) ValidateAll() (*BatchResult[*doctor.Report], error) {
	names, err := m.repo.ListProjects()
	if err != nil {
		return nil, err
	}
	return runBatch(m, "validate", names, m.Validate), nil
}

// Cleanup prunes the backups of project name.
func (m *Manager) Cleanup(name string, policy retention.Policy, dryRun bool) (*retention.Report, error) {
	if !m.repo.ProjectExists(name) {
		return nil, errNotFound(name)
	}
	return m.pruner.Prune(name, policy, dryRun)
}

// CleanupAll runs Cleanup for every project.
func (m *Manager) CleanupAll(policy retention.Policy, dryRun bool) (*BatchResult[*retention.Report], error) {
	names, err := m.repo.ListProjects()
	if err != nil {
		return nil, err
	}
	return runBatch(m, "cleanup", names, func(name string) (*retention.Report, error) {
		return m.Cleanup(name, policy, dryRun)
	}), nil
}

// Summary is one row of List.
type Summary struct {
	Name   string
	Record *metadata.Record // nil when metadata is missing
	Linked bool
}

// List summarizes every project.
func (m *Manager) List() ([]Summary, error) {
	names, err := m.repo.ListProjects()
	if err != nil {
		return nil, err
	}
	res := runBatch(m, "list", names, func(name string) (Summary, error) {
		s := Summary{Name: name}
		rec, err := m.repo.GetProjectInfo(name)
		if err != nil {
			return s, err
		}
		s.Record = rec
		if rec != nil && rec.Path != "" {
			s.Linked = m.links.ValidateSymlinks(rec.Path)
		}
		return s, nil
	})
	out := make([]Summary, 0, len(res.Items))
	for _, it := range res.Items {
		out = append(out, it.Value)
	}
	return out, nil
}

// Info is the detailed view of one project.
type Info struct {
	Name       string
	StorageDir string
	Record     *metadata.Record
	Links      *linker.Status
	Backups    []retention.Backup
}

// Describe gathers Info for name. Missing metadata is not an error.
func (m *Manager) Describe(name string) (*Info, error) {
	if !m.repo.ProjectExists(name) {
		return nil, errNotFound(name)
	}
	info := &Info{Name: name, StorageDir: m.repo.Layout().ProjectDir(name)}

	rec, err := m.repo.GetProjectInfo(name)
	if err != nil {
		return nil, err
	}
	info.Record = rec
	if rec != nil && rec.Path != "" {
		st := m.links.Status(rec.Path, name)
		info.Links = &st
	}

	info.Backups, err = m.pruner.ListBackups(name)
	if err != nil {
		return nil, err
	}
	return info, nil
}
