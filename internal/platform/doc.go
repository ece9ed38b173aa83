// Package platform provides the low-level filesystem operations the linker
// builds on: symlink creation, removal and inspection over an afero
// filesystem, relative link targets, permission-error classification, and
// permission bits.
package platform
