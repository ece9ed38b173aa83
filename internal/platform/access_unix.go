//go:build linux || darwin || freebsd || netbsd || openbsd

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// CheckAccess reports whether the current process may read and write path.
// It asks the kernel and leaves path untouched.
func CheckAccess(path string) error {
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return &os.PathError{Op: "access", Path: path, Err: err}
	}
	return nil
}
