package template

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions compares two version strings using semver.
// Returns -1 if a < b, 0 if equal, 1 if a > b. A leading "v" is tolerated.
func CompareVersions(a, b string) (int, error) {
	av, err := parseSemver(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := parseSemver(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

// IsNewer reports whether candidate is newer than current. A current version
// that does not parse (such as "none" for adopted projects) counts as older
// than any parsable candidate.
func IsNewer(candidate, current string) bool {
	cv, err := parseSemver(candidate)
	if err != nil {
		return false
	}
	cur, err := parseSemver(current)
	if err != nil {
		return true
	}
	return cv.GreaterThan(cur)
}

func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	return semver.NewVersion(version)
}
