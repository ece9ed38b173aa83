package metadata

import (
	"errors"
	"testing"
	"time"

	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *Record {
	return &Record{
		Name:            "web-app",
		Path:            "/home/dev/web-app",
		ProjectType:     "react",
		TemplateVersion: "1.2.0",
		SetupDate:       time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		LastUpdate:      time.Date(2026, 4, 2, 18, 5, 7, 0, time.UTC),
	}
}

func TestMarshalFormat(t *testing.T) {
	got := string(sampleRecord().Marshal())
	want := "PROJECT_NAME=web-app\n" +
		"PROJECT_PATH=/home/dev/web-app\n" +
		"PROJECT_TYPE=react\n" +
		"TEMPLATE_VERSION=1.2.0\n" +
		"SETUP_DATE=2026-03-01T09:30:00Z\n" +
		"LAST_UPDATE=2026-04-02T18:05:07Z\n"
	assert.Equal(t, want, got)
}

func TestStoreRoundTrip(t *testing.T) {
	layout := paths.NewLayout(afero.NewMemMapFs(), "/storage")
	store := NewStore(layout)

	rec := sampleRecord()
	require.NoError(t, store.Write(rec))

	got, err := store.Read("web-app")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Fields(), got.Fields())
	assert.True(t, rec.SetupDate.Equal(got.SetupDate))
}

func TestStoreRoundTripKeepsValueWhitespace(t *testing.T) {
	layout := paths.NewLayout(afero.NewMemMapFs(), "/storage")
	store := NewStore(layout)

	rec := sampleRecord()
	rec.Path = "  /home/dev/odd path \t"
	require.NoError(t, store.Write(rec))

	got, err := store.Read("web-app")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Fields(), got.Fields())
}

func TestParseCRLF(t *testing.T) {
	data := []byte("PROJECT_NAME=api\r\nPROJECT_PATH=/srv/api\r\nPROJECT_TYPE=existing\r\n" +
		"TEMPLATE_VERSION=none\r\nSETUP_DATE=2026-01-01T00:00:00Z\r\nLAST_UPDATE=2026-01-02T00:00:00Z\r\n")
	rec, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "/srv/api", rec.Path)
	assert.Equal(t, VersionNone, rec.TemplateVersion)
}

func TestStoreReadMissing(t *testing.T) {
	store := NewStore(paths.NewLayout(afero.NewMemMapFs(), "/storage"))

	rec, err := store.Read("ghost")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestStoreReadMalformed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	layout := paths.NewLayout(fsys, "/storage")
	require.NoError(t, afero.WriteFile(fsys, layout.MetadataPath("bad"), []byte("PROJECT_NAME=bad\n"), 0644))

	_, err := NewStore(layout).Read("bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestParseSkipsCommentsAndUnknownKeys(t *testing.T) {
	data := []byte(`# written by cpm
PROJECT_NAME=api
PROJECT_PATH=
PROJECT_TYPE=existing

TEMPLATE_VERSION=none
SETUP_DATE=2026-01-01T00:00:00Z
LAST_UPDATE=2026-01-02T00:00:00Z
EXTRA=ignored
`)
	rec, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "api", rec.Name)
	assert.Equal(t, "", rec.Path)
	assert.Equal(t, TypeExisting, rec.ProjectType)
	assert.Equal(t, VersionNone, rec.TemplateVersion)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"no equals":     "PROJECT_NAME web\n",
		"missing keys":  "PROJECT_NAME=web\nPROJECT_TYPE=react\n",
		"bad timestamp": "PROJECT_NAME=web\nPROJECT_PATH=/x\nPROJECT_TYPE=t\nTEMPLATE_VERSION=1\nSETUP_DATE=yesterday\nLAST_UPDATE=2026-01-01T00:00:00Z\n",
		"empty name":    "PROJECT_NAME=\nPROJECT_PATH=/x\nPROJECT_TYPE=t\nTEMPLATE_VERSION=1\nSETUP_DATE=2026-01-01T00:00:00Z\nLAST_UPDATE=2026-01-01T00:00:00Z\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestCamelFields(t *testing.T) {
	fields := sampleRecord().CamelFields()
	assert.Equal(t, "react", fields["projectType"])
	assert.Equal(t, "1.2.0", fields["templateVersion"])
	assert.Equal(t, "web-app", fields["projectName"])
	assert.Equal(t, "2026-03-01T09:30:00Z", fields["setupDate"])
	assert.Len(t, fields, 6)
}

func TestCamelKey(t *testing.T) {
	assert.Equal(t, "projectType", CamelKey("PROJECT_TYPE"))
	assert.Equal(t, "lastUpdate", CamelKey("LAST_UPDATE"))
	assert.Equal(t, "name", CamelKey("NAME"))
}
