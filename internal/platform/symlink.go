package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// LinkFs is a filesystem that can create and inspect symbolic links.
// afero.OsFs satisfies it.
type LinkFs interface {
	afero.Fs
	afero.Symlinker
}

// CreateSymlink creates link pointing to target. Permission failures are
// returned as *PermissionError with an actionable hint; anything else is
// returned unchanged.
func CreateSymlink(fsys LinkFs, target, link string) error {
	if err := fsys.SymlinkIfPossible(target, link); err != nil {
		if IsPermission(err) {
			return &PermissionError{Op: "symlink", Path: link, Err: err}
		}
		return err
	}
	return nil
}

// RemoveSymlink removes path only if it is a symlink. The bool reports
// whether anything was removed.
func RemoveSymlink(fsys LinkFs, path string) (bool, error) {
	if !IsSymlink(fsys, path) {
		return false, nil
	}
	if err := fsys.Remove(path); err != nil {
		return false, fmt.Errorf("removing symlink %s: %w", path, err)
	}
	return true, nil
}

// IsSymlink reports whether path itself is a symbolic link.
func IsSymlink(fsys LinkFs, path string) bool {
	info, _, err := fsys.LstatIfPossible(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// ReadSymlinkTarget returns the raw, unresolved target of a symlink.
func ReadSymlinkTarget(fsys LinkFs, path string) (string, error) {
	return fsys.ReadlinkIfPossible(path)
}

// RelativeTarget computes the target text for a link at linkPath pointing to
// target, relative to the link's parent directory, with forward slashes.
func RelativeTarget(linkPath, target string) (string, error) {
	rel, err := filepath.Rel(filepath.Dir(linkPath), target)
	if err != nil {
		return "", fmt.Errorf("computing relative target for %s: %w", linkPath, err)
	}
	return filepath.ToSlash(rel), nil
}

// IsSymlinkSupported returns true if the current platform supports native symlinks.
// On Windows this attempts a test symlink to check developer mode.
func IsSymlinkSupported() bool {
	if runtime.GOOS != "windows" {
		return true
	}

	link := filepath.Join(os.TempDir(), ".cpm-symlink-test")
	defer os.Remove(link)

	return os.Symlink(os.TempDir(), link) == nil
}

// PermissionError reports an operation refused by the OS for lack of
// privileges.
type PermissionError struct {
	Op   string
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s %s: permission denied (%v). %s", e.Op, e.Path, e.Err, e.Hint())
}

func (e *PermissionError) Unwrap() error { return e.Err }

// Hint returns the remediation shown to the user.
func (e *PermissionError) Hint() string {
	if runtime.GOOS == "windows" {
		return "Enable Developer Mode or run the terminal as Administrator to create symlinks."
	}
	return "Check ownership of the project directory or re-run with elevated privileges (sudo)."
}

// IsPermission reports whether err is an EACCES/EPERM class error.
func IsPermission(err error) bool {
	return errors.Is(err, os.ErrPermission)
}
