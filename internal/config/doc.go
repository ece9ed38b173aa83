// Package config manages user-level settings stored at ~/.cpm/config.yaml.
// It resolves the storage and template roots, retention defaults, batch
// concurrency, and logging options, with CPM_* environment overrides.
package config
