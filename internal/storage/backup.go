package storage

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cpm-labs/cpm/internal/paths"
	"go.uber.org/zap"
)

// Backup is a snapshot taken by CreateBackup.
type Backup struct {
	Name      string
	Path      string
	CreatedAt time.Time
}

// CreateBackup copies the storage tree for name, minus its backups
// directory, into backups/backup-<timestamp>. Two backups within the same
// second share a directory; the later copy overwrites the earlier files.
func (r *Repository) CreateBackup(name string) (*Backup, error) {
	if !r.ProjectExists(name) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}

	at := r.now()
	b := &Backup{Name: paths.BackupName(at), CreatedAt: at}
	b.Path = filepath.Join(r.layout.BackupsDir(name), b.Name)

	n, err := copyTree(r.fs, r.layout.ProjectDir(name), b.Path, copyOptions{
		overwrite: true,
		skip: func(rel string, isDir bool) bool {
			return isDir && rel == paths.BackupsDir
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating backup %s: %w", b.Name, err)
	}

	r.logger.Info("created backup", zap.String("project", name), zap.String("backup", b.Name), zap.Int("files", n))
	return b, nil
}
