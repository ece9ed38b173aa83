// Package paths derives the canonical locations inside the central storage
// tree (project directories, backups, metadata) and validates project names.
// All existence checks go through an afero filesystem so callers can swap in
// an in-memory filesystem for tests.
package paths
