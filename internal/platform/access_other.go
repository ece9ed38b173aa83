//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package platform

import "os"

// CheckAccess reports whether path exists and is not marked read-only.
func CheckAccess(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm()&0o200 == 0 {
		return &os.PathError{Op: "access", Path: path, Err: os.ErrPermission}
	}
	return nil
}
