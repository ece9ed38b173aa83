package metadata

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Keys written to the metadata file, in file order.
const (
	KeyName            = "PROJECT_NAME"
	KeyPath            = "PROJECT_PATH"
	KeyType            = "PROJECT_TYPE"
	KeyTemplateVersion = "TEMPLATE_VERSION"
	KeySetupDate       = "SETUP_DATE"
	KeyLastUpdate      = "LAST_UPDATE"
)

// Project types and versions recorded for projects adopted from existing content.
const (
	TypeExisting    = "existing"
	VersionNone     = "none"
	timestampFormat = time.RFC3339
)

var orderedKeys = []string{KeyName, KeyPath, KeyType, KeyTemplateVersion, KeySetupDate, KeyLastUpdate}

// ErrMalformed is returned when a metadata file exists but cannot be parsed
// into a complete Record.
var ErrMalformed = errors.New("malformed project metadata")

// Record describes where a storage tree came from.
type Record struct {
	Name            string
	Path            string
	ProjectType     string
	TemplateVersion string
	SetupDate       time.Time
	LastUpdate      time.Time
}

// Fields returns the record as the raw KEY -> VALUE map written to disk.
func (r *Record) Fields() map[string]string {
	return map[string]string{
		KeyName:            r.Name,
		KeyPath:            r.Path,
		KeyType:            r.ProjectType,
		KeyTemplateVersion: r.TemplateVersion,
		KeySetupDate:       formatTime(r.SetupDate),
		KeyLastUpdate:      formatTime(r.LastUpdate),
	}
}

// CamelFields returns the record keyed by camel-cased names, e.g.
// PROJECT_TYPE -> projectType.
func (r *Record) CamelFields() map[string]string {
	raw := r.Fields()
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[CamelKey(k)] = v
	}
	return out
}

// CamelKey converts an upper snake-case key to lower camel case.
func CamelKey(key string) string {
	title := cases.Title(language.Und)
	parts := strings.Split(strings.ToLower(key), "_")
	for i := 1; i < len(parts); i++ {
		parts[i] = title.String(parts[i])
	}
	return strings.Join(parts, "")
}

// Marshal renders the record in file order.
func (r *Record) Marshal() []byte {
	fields := r.Fields()
	var buf bytes.Buffer
	for _, k := range orderedKeys {
		fmt.Fprintf(&buf, "%s=%s\n", k, fields[k])
	}
	return buf.Bytes()
}

// Parse decodes a metadata file. Blank lines and lines starting with # are
// skipped, unknown keys are ignored. Every known key must be present and the
// timestamps must be RFC3339. Values are taken verbatim after the first '='.
func Parse(data []byte) (*Record, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("%w: line %q has no '='", ErrMalformed, trimmed)
		}
		values[strings.TrimSpace(key)] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	for _, k := range orderedKeys {
		if _, ok := values[k]; !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformed, k)
		}
	}
	if values[KeyName] == "" {
		return nil, fmt.Errorf("%w: empty %s", ErrMalformed, KeyName)
	}

	setup, err := parseTime(KeySetupDate, values[KeySetupDate])
	if err != nil {
		return nil, err
	}
	last, err := parseTime(KeyLastUpdate, values[KeyLastUpdate])
	if err != nil {
		return nil, err
	}

	return &Record{
		Name:            values[KeyName],
		Path:            values[KeyPath],
		ProjectType:     values[KeyType],
		TemplateVersion: values[KeyTemplateVersion],
		SetupDate:       setup,
		LastUpdate:      last,
	}, nil
}

func parseTime(key, value string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q is not RFC3339", ErrMalformed, key, value)
	}
	return t.UTC(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timestampFormat)
}
