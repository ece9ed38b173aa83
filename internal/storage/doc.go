// Package storage owns the per-project storage trees under the storage root.
// It seeds trees from templates or from a work tree's existing .claude
// content, merges template upgrades into them (preserving the custom section
// of CLAUDE.md), takes timestamped backups, and records provenance through
// the metadata store.
package storage
