// Package cli defines the Cobra command tree for the cpm CLI. Each file in
// this package registers one top-level command (init, link, update, doctor,
// etc.) with the root command. Commands delegate to internal/project for the
// work and only handle flag parsing, output formatting and confirmation.
package cli
