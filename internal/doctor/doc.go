// Package doctor runs read-only health checks over a managed project and
// optionally repairs the fixable findings by calling back into the storage
// repository and the symlink synchronizer.
package doctor
