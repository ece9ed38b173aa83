package retention

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cpm-labs/cpm/internal/logging"
	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Policy selects backups for deletion.
type Policy struct {
	// Days is the age threshold; only backups strictly older are candidates.
	Days int
	// Keep exempts this many most recent backups. Zero exempts none.
	Keep int
}

// Backup is one snapshot directory found under a project's backups/.
type Backup struct {
	Name        string
	Path        string
	Time        time.Time
	FromModTime bool // Time came from the directory mtime, not the name
	Age         int  // whole days
	Size        int64
}

// Report summarizes a pruning run.
type Report struct {
	Project     string
	Policy      Policy
	DryRun      bool
	Scanned     int
	Candidates  []Backup
	Deleted     int
	Failed      int
	BytesFreed  int64
	SpaceToFree int64
}

func (r *Report) String() string {
	if r.DryRun {
		return fmt.Sprintf("%s: would delete %d of %d backups (%s)",
			r.Project, len(r.Candidates), r.Scanned, humanize.Bytes(uint64(r.SpaceToFree)))
	}
	s := fmt.Sprintf("%s: deleted %d of %d backups, freed %s",
		r.Project, r.Deleted, r.Scanned, humanize.Bytes(uint64(r.BytesFreed)))
	if r.Failed > 0 {
		s += fmt.Sprintf(" (%d failed)", r.Failed)
	}
	return s
}

// Pruner lists and deletes backups of projects under a storage layout.
type Pruner struct {
	fs     afero.Fs
	layout *paths.Layout
	logger *zap.Logger

	// Now is the reference time for ages.
	Now func() time.Time
}

// NewPruner returns a Pruner over layout.
func NewPruner(layout *paths.Layout, logger *zap.Logger) *Pruner {
	return &Pruner{fs: layout.Fs(), layout: layout, logger: logging.OrNop(logger), Now: time.Now}
}

// ListBackups returns the snapshots of project name in directory listing
// order. A project without a backups directory has none.
func (p *Pruner) ListBackups(name string) ([]Backup, error) {
	dir := p.layout.BackupsDir(name)
	entries, err := afero.ReadDir(p.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing backups of %s: %w", name, err)
	}

	now := p.Now()
	var backups []Backup
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), paths.BackupPrefix) {
			continue
		}
		b := Backup{Name: e.Name(), Path: filepath.Join(dir, e.Name())}
		if t, ok := paths.ParseBackupName(e.Name()); ok {
			b.Time = t
		} else {
			b.Time = e.ModTime()
			b.FromModTime = true
		}
		b.Age = ageInDays(now, b.Time)
		b.Size, err = dirSize(p.fs, b.Path)
		if err != nil {
			p.logger.Warn("sizing backup", zap.String("path", b.Path), zap.Error(err))
		}
		backups = append(backups, b)
	}
	return backups, nil
}

// SelectCandidates returns the backups older than policy.Days that are not
// among the policy.Keep most recent, in the order given. Recency ties keep
// the input order.
func SelectCandidates(backups []Backup, policy Policy) []Backup {
	exempt := make(map[int]bool)
	if policy.Keep > 0 {
		order := make([]int, len(backups))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return backups[order[a]].Time.After(backups[order[b]].Time)
		})
		for i := 0; i < policy.Keep && i < len(order); i++ {
			exempt[order[i]] = true
		}
	}

	var out []Backup
	for i, b := range backups {
		if b.Age > policy.Days && !exempt[i] {
			out = append(out, b)
		}
	}
	return out
}

// Prune deletes the candidates selected by policy from project name. One
// failed deletion does not stop the others; the report counts only what was
// actually removed. With dryRun nothing is deleted.
func (p *Pruner) Prune(name string, policy Policy, dryRun bool) (*Report, error) {
	if policy.Days < 0 {
		return nil, fmt.Errorf("retention days must not be negative, got %d", policy.Days)
	}

	backups, err := p.ListBackups(name)
	if err != nil {
		return nil, err
	}

	report := &Report{Project: name, Policy: policy, DryRun: dryRun, Scanned: len(backups)}
	report.Candidates = SelectCandidates(backups, policy)
	for _, b := range report.Candidates {
		report.SpaceToFree += b.Size
	}
	if dryRun {
		return report, nil
	}

	for _, b := range report.Candidates {
		if err := p.fs.RemoveAll(b.Path); err != nil {
			report.Failed++
			p.logger.Warn("deleting backup", zap.String("project", name), zap.String("backup", b.Name), zap.Error(err))
			continue
		}
		report.Deleted++
		report.BytesFreed += b.Size
		p.logger.Debug("deleted backup", zap.String("project", name), zap.String("backup", b.Name), zap.Int("age_days", b.Age))
	}
	return report, nil
}

func ageInDays(now, t time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

func dirSize(fsys afero.Fs, root string) (int64, error) {
	var size int64
	err := afero.Walk(fsys, root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
