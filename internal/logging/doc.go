// Package logging builds the zap logger shared by the storage, linker,
// retention, and doctor packages from the configured level and format.
package logging
