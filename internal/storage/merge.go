package storage

import (
	"fmt"
	"os"
	"strings"

	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/spf13/afero"
)

// customMarkers start the user-authored part of a CLAUDE.md. Matching is a
// plain substring search over the whole file, so a marker inside a code
// fence also counts.
var customMarkers = []string{
	"## Project-Specific",
	"# Custom",
	"## Custom Configuration",
}

// MergeClaudeMD returns the fresh template body followed by the custom
// section of old, if old has one. Without a marker fresh is returned as is.
func MergeClaudeMD(old, fresh string) string {
	custom, ok := customSection(old)
	if !ok {
		return fresh
	}
	return fresh + "\n\n" + custom
}

// customSection returns old from the earliest marker occurrence to the end.
// When two markers start at the same offset the one listed first wins.
func customSection(old string) (string, bool) {
	at := -1
	for _, marker := range customMarkers {
		if i := strings.Index(old, marker); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	if at < 0 {
		return "", false
	}
	return old[at:], true
}

// mergeClaudeFile merges the template CLAUDE.md at src into dst. A missing
// dst receives src verbatim.
func mergeClaudeFile(fsys afero.Fs, src, dst string) error {
	fresh, err := afero.ReadFile(fsys, src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	old, err := afero.ReadFile(fsys, dst)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading %s: %w", dst, err)
		}
		return afero.WriteFile(fsys, dst, fresh, paths.FilePermNormal)
	}

	merged := MergeClaudeMD(string(old), string(fresh))
	if err := afero.WriteFile(fsys, dst, []byte(merged), paths.FilePermNormal); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
