package paths

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidName is returned for project names outside the slug grammar.
var ErrInvalidName = errors.New("invalid project name")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateName checks that name is a lowercase slug (letters, digits, single
// hyphens between them).
func ValidateName(name string) error {
	if !slugPattern.MatchString(name) {
		return fmt.Errorf("%w %q: use lowercase letters, digits and hyphens (e.g. my-app)", ErrInvalidName, name)
	}
	return nil
}

// Slugify derives a project name from an arbitrary string such as a
// directory basename. Diacritics are stripped and every run of other
// characters collapses to a single hyphen.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
