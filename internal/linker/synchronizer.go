package linker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cpm-labs/cpm/internal/logging"
	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/cpm-labs/cpm/internal/platform"
	"go.uber.org/zap"
)

// Synchronizer manages the symlink pair of each project.
type Synchronizer struct {
	fs     platform.LinkFs
	layout *paths.Layout
	logger *zap.Logger

	// Now stamps the names of foreign entries moved aside.
	Now func() time.Time
}

// NewSynchronizer returns a Synchronizer linking work trees into layout's
// storage root. fsys must support symlinks; in production it is afero.OsFs.
func NewSynchronizer(fsys platform.LinkFs, layout *paths.Layout, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{fs: fsys, layout: layout, logger: logging.OrNop(logger), Now: time.Now}
}

// wantedLink is a link path and the absolute storage path it should reach.
type wantedLink struct {
	path   string
	target string
}

func (s *Synchronizer) wanted(projectPath, name string) []wantedLink {
	return []wantedLink{
		{path: filepath.Join(projectPath, paths.ClaudeDir), target: s.layout.ProjectDir(name)},
		{path: filepath.Join(projectPath, paths.ClaudeMD), target: s.layout.ClaudeMDPath(name)},
	}
}

// CreateProjectSymlinks points the project's .claude and CLAUDE.md at the
// storage tree for name. Links already carrying the right target are left
// alone, stale links are recreated and real files or directories are renamed
// to <path>.backup-<epoch-millis> first. Both links are attempted even if one
// fails; the errors are joined.
func (s *Synchronizer) CreateProjectSymlinks(projectPath, name string) (*SyncResult, error) {
	result := &SyncResult{}
	var errs []error
	for _, ln := range s.wanted(projectPath, name) {
		if err := s.ensureLink(ln, result); err != nil {
			errs = append(errs, err)
		}
	}
	return result, errors.Join(errs...)
}

func (s *Synchronizer) ensureLink(ln wantedLink, result *SyncResult) error {
	want, err := platform.RelativeTarget(ln.path, ln.target)
	if err != nil {
		return err
	}

	link := s.inspect(ln.path, want, ln.target)
	switch link.State {
	case StateValid, StateStale:
		if link.Target == want {
			result.Kept = append(result.Kept, ln.path)
			return nil
		}
		if _, err := platform.RemoveSymlink(s.fs, ln.path); err != nil {
			return err
		}
		result.Replaced = append(result.Replaced, ln.path)
	case StateForeign:
		aside := ln.path + ".backup-" + strconv.FormatInt(s.Now().UnixMilli(), 10)
		if err := s.fs.Rename(ln.path, aside); err != nil {
			return fmt.Errorf("moving aside %s: %w", ln.path, err)
		}
		s.logger.Info("moved existing entry aside", zap.String("path", ln.path), zap.String("to", aside))
		result.MovedAside = append(result.MovedAside, aside)
		result.Created = append(result.Created, ln.path)
	default:
		result.Created = append(result.Created, ln.path)
	}

	if err := s.fs.MkdirAll(filepath.Dir(ln.path), paths.DirPermNormal); err != nil {
		return fmt.Errorf("creating parent of %s: %w", ln.path, err)
	}
	if err := platform.CreateSymlink(s.fs, want, ln.path); err != nil {
		var perr *platform.PermissionError
		if errors.As(err, &perr) {
			return perr
		}
		return fmt.Errorf("linking %s: %w", ln.path, err)
	}
	s.logger.Debug("linked", zap.String("path", ln.path), zap.String("target", want))
	return nil
}

// RemoveProjectSymlinks unlinks the project's .claude and CLAUDE.md when they
// are symlinks. Real files and directories are not touched. It returns the
// paths removed.
func (s *Synchronizer) RemoveProjectSymlinks(projectPath string) ([]string, error) {
	var removed []string
	var errs []error
	for _, p := range []string{
		filepath.Join(projectPath, paths.ClaudeDir),
		filepath.Join(projectPath, paths.ClaudeMD),
	} {
		ok, err := platform.RemoveSymlink(s.fs, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			removed = append(removed, p)
		}
	}
	return removed, errors.Join(errs...)
}

// ValidateSymlinks reports whether both links exist as symlinks and both
// resolve to existing targets.
func (s *Synchronizer) ValidateSymlinks(projectPath string) bool {
	for _, p := range []string{
		filepath.Join(projectPath, paths.ClaudeDir),
		filepath.Join(projectPath, paths.ClaudeMD),
	} {
		if !platform.IsSymlink(s.fs, p) {
			return false
		}
		if _, err := s.fs.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// GetSymlinkTarget returns the raw, unresolved target of the symlink at
// path. The bool is false when path is not a readable symlink.
func (s *Synchronizer) GetSymlinkTarget(path string) (string, bool) {
	if !platform.IsSymlink(s.fs, path) {
		return "", false
	}
	target, err := platform.ReadSymlinkTarget(s.fs, path)
	if err != nil {
		return "", false
	}
	return target, true
}

// Status inspects both links of the project without changing anything.
func (s *Synchronizer) Status(projectPath, name string) Status {
	all := s.wanted(projectPath, name)
	links := make([]Link, len(all))
	for i, ln := range all {
		want, err := platform.RelativeTarget(ln.path, ln.target)
		if err != nil {
			want = filepath.ToSlash(ln.target)
		}
		links[i] = s.inspect(ln.path, want, ln.target)
	}
	return Status{ClaudeDir: links[0], ClaudeMD: links[1]}
}

// inspect classifies path. A symlink is valid when it resolves and its
// target text, taken relative to the link's directory, names abs.
func (s *Synchronizer) inspect(path, want, abs string) Link {
	link := Link{Path: path, Want: want}

	info, _, err := s.fs.LstatIfPossible(path)
	if err != nil {
		link.State = StateAbsent
		return link
	}
	if info.Mode()&os.ModeSymlink == 0 {
		link.State = StateForeign
		return link
	}

	link.Target, _ = platform.ReadSymlinkTarget(s.fs, path)
	link.State = StateStale
	if _, err := s.fs.Stat(path); err != nil {
		return link
	}
	if resolvesTo(path, link.Target, abs) {
		link.State = StateValid
	}
	return link
}

func resolvesTo(linkPath, raw, abs string) bool {
	target := filepath.FromSlash(raw)
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(linkPath), target)
	}
	return filepath.Clean(target) == filepath.Clean(abs)
}
