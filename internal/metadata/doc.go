// Package metadata reads and writes the per-project provenance record kept
// inside each storage tree as newline-delimited KEY=VALUE pairs.
package metadata
