// Package template loads the named, versioned bundles of default
// configuration files used to seed and update project storage trees. Each
// template is a directory holding a template.yaml descriptor (validated
// against an embedded JSON schema) next to its seed files.
package template
