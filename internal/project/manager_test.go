package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cpm-labs/cpm/internal/doctor"
	"github.com/cpm-labs/cpm/internal/metadata"
	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/cpm-labs/cpm/internal/retention"
	"github.com/cpm-labs/cpm/internal/storage"
	"github.com/cpm-labs/cpm/internal/template"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	m         *Manager
	root      string
	templates string
}

func newHarness(t *testing.T, concurrency int) harness {
	t.Helper()
	root := t.TempDir()
	h := harness{root: root, templates: filepath.Join(root, "templates")}
	h.m = New(&afero.OsFs{}, Options{
		StorageRoot:   filepath.Join(root, "storage"),
		TemplatesRoot: h.templates,
		Concurrency:   concurrency,
	}, nil)
	h.writeTemplate(t, "web", "1.0.0", "# Web\n")
	return h
}

func (h harness) writeTemplate(t *testing.T, name, version, body string) {
	t.Helper()
	dir := filepath.Join(h.templates, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "template.yaml"),
		[]byte(fmt.Sprintf("name: %s\nversion: %q\n", name, version)), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CLAUDE.md"), []byte(body), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte(`{"v":"`+version+`"}`), 0644))
}

func (h harness) workTree(t *testing.T, name string) string {
	t.Helper()
	dir := filepath.Join(h.root, "work", name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	return dir
}

func TestSetupFromTemplate(t *testing.T) {
	h := newHarness(t, 1)
	work := h.workTree(t, "shop")

	res, err := h.m.Setup("shop", work, "web")
	require.NoError(t, err)
	assert.Equal(t, "web", res.Record.ProjectType)
	assert.Equal(t, "1.0.0", res.Record.TemplateVersion)
	assert.Len(t, res.Sync.Created, 2)
	assert.True(t, h.m.Linker().ValidateSymlinks(work))

	data, err := os.ReadFile(filepath.Join(work, "CLAUDE.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Web\n", string(data))
}

func TestSetupFromExisting(t *testing.T) {
	h := newHarness(t, 1)
	work := h.workTree(t, "legacy")
	require.NoError(t, os.MkdirAll(filepath.Join(work, ".claude"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(work, ".claude", "settings.json"), []byte(`{}`), 0644))

	res, err := h.m.Setup("legacy", work, "")
	require.NoError(t, err)
	assert.Equal(t, metadata.TypeExisting, res.Record.ProjectType)
	assert.Len(t, res.Sync.MovedAside, 1)

	data, err := os.ReadFile(filepath.Join(work, ".claude", "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestSetupErrors(t *testing.T) {
	h := newHarness(t, 1)
	work := h.workTree(t, "shop")

	_, err := h.m.Setup("Shop!", work, "web")
	assert.True(t, errors.Is(err, paths.ErrInvalidName))

	_, err = h.m.Setup("shop", work, "missing")
	assert.True(t, errors.Is(err, template.ErrTemplateNotFound))

	_, err = h.m.Setup("shop", work, "web")
	require.NoError(t, err)
	_, err = h.m.Setup("shop", work, "web")
	assert.True(t, errors.Is(err, storage.ErrProjectExists))
}

func TestFindByPath(t *testing.T) {
	h := newHarness(t, 1)
	work := h.workTree(t, "shop")
	_, err := h.m.Setup("shop", work, "web")
	require.NoError(t, err)

	rec, err := h.m.FindByPath(work + string(filepath.Separator))
	require.NoError(t, err)
	assert.Equal(t, "shop", rec.Name)

	_, err = h.m.FindByPath(h.root)
	assert.True(t, errors.Is(err, storage.ErrProjectNotFound))
}

func TestUpdateRespectsVersions(t *testing.T) {
	h := newHarness(t, 1)
	work := h.workTree(t, "shop")
	_, err := h.m.Setup("shop", work, "web")
	require.NoError(t, err)

	out, err := h.m.Update("shop", false)
	require.NoError(t, err)
	assert.True(t, out.Skipped)

	out, err = h.m.Update("shop", true)
	require.NoError(t, err)
	assert.False(t, out.Skipped)
	assert.NotEmpty(t, out.Backup)

	h.writeTemplate(t, "web", "1.1.0", "# Web 1.1\n")
	out, err = h.m.Update("shop", false)
	require.NoError(t, err)
	assert.False(t, out.Skipped)
	assert.Equal(t, "1.0.0", out.From)
	assert.Equal(t, "1.1.0", out.To)

	data, err := os.ReadFile(filepath.Join(work, "CLAUDE.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Web 1.1\n", string(data))
}

func TestUpdateAllOrderAndSkips(t *testing.T) {
	h := newHarness(t, 4)
	for _, n := range []string{"delta", "alpha", "charlie"} {
		_, err := h.m.Setup(n, h.workTree(t, n), "web")
		require.NoError(t, err)
	}
	_, err := h.m.Setup("bravo", h.workTree(t, "bravo"), "existing")
	require.NoError(t, err)
	h.writeTemplate(t, "web", "2.0.0", "# Web 2\n")

	res, err := h.m.UpdateAll(false)
	require.NoError(t, err)
	require.Len(t, res.Items, 4)

	var order []string
	for _, it := range res.Items {
		order = append(order, it.Name)
		require.NoError(t, it.Err)
	}
	assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta"}, order)
	assert.True(t, res.Items[1].Value.Skipped)
	assert.False(t, res.Items[0].Value.Skipped)
	assert.Equal(t, 4, res.Succeeded())
}

func TestUpdateAllCollectsFailures(t *testing.T) {
	h := newHarness(t, 1)
	_, err := h.m.Setup("alpha", h.workTree(t, "alpha"), "web")
	require.NoError(t, err)
	_, err = h.m.Setup("beta", h.workTree(t, "beta"), "web")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(h.root, "storage", "alpha", ".project-info")))

	res, err := h.m.UpdateAll(true)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed())
	assert.True(t, errors.Is(res.Items[0].Err, ErrNoRecord))
	assert.NoError(t, res.Items[1].Err)
}

func TestValidateAll(t *testing.T) {
	h := newHarness(t, 2)
	good := h.workTree(t, "good")
	bad := h.workTree(t, "bad")
	_, err := h.m.Setup("good", good, "web")
	require.NoError(t, err)
	_, err = h.m.Setup("bad", bad, "web")
	require.NoError(t, err)
	_, err = h.m.Unlink(bad)
	require.NoError(t, err)

	res, err := h.m.ValidateAll()
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "bad", res.Items[0].Name)
	assert.False(t, res.Items[0].Value.Healthy())
	assert.True(t, res.Items[1].Value.Healthy())
}

func TestValidateWithoutMetadata(t *testing.T) {
	h := newHarness(t, 2)
	_, err := h.m.Setup("app", h.workTree(t, "app"), "web")
	require.NoError(t, err)
	_, err = h.m.Setup("api", h.workTree(t, "api"), "web")
	require.NoError(t, err)
	layout := h.m.Repository().Layout()
	require.NoError(t, os.Remove(layout.MetadataPath("app")))

	report, err := h.m.Validate("app")
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, doctor.SeverityInfo, report.Issues[0].Severity)
	assert.Equal(t, layout.MetadataPath("app"), report.Issues[0].Path)
	assert.True(t, report.Healthy())

	res, err := h.m.ValidateAll()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded())

	_, err = h.m.Validate("ghost")
	assert.True(t, errors.Is(err, storage.ErrProjectNotFound))
}

func TestCleanupAll(t *testing.T) {
	h := newHarness(t, 1)
	_, err := h.m.Setup("shop", h.workTree(t, "shop"), "web")
	require.NoError(t, err)
	_, err = h.m.Backup("shop")
	require.NoError(t, err)

	res, err := h.m.CleanupAll(retention.Policy{Days: 30}, false)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.Items[0].Value.Scanned)
	assert.Equal(t, 0, res.Items[0].Value.Deleted)

	_, err = h.m.Cleanup("ghost", retention.Policy{Days: 30}, true)
	assert.True(t, errors.Is(err, storage.ErrProjectNotFound))
}

func TestRemoveUnlinksAndDeletes(t *testing.T) {
	h := newHarness(t, 1)
	work := h.workTree(t, "shop")
	_, err := h.m.Setup("shop", work, "web")
	require.NoError(t, err)

	require.NoError(t, h.m.Remove("shop"))
	assert.False(t, h.m.Repository().ProjectExists("shop"))
	_, err = os.Lstat(filepath.Join(work, ".claude"))
	assert.True(t, os.IsNotExist(err))

	assert.True(t, errors.Is(h.m.Remove("shop"), storage.ErrProjectNotFound))
}

func TestListAndDescribe(t *testing.T) {
	h := newHarness(t, 1)
	work := h.workTree(t, "shop")
	_, err := h.m.Setup("shop", work, "web")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(h.root, "storage", "orphan"), 0755))

	list, err := h.m.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "orphan", list[0].Name)
	assert.Nil(t, list[0].Record)
	assert.True(t, list[1].Linked)

	info, err := h.m.Describe("shop")
	require.NoError(t, err)
	require.NotNil(t, info.Links)
	assert.True(t, info.Links.Managed())
	assert.Empty(t, info.Backups)

	orphan, err := h.m.Describe("orphan")
	require.NoError(t, err)
	assert.Nil(t, orphan.Record)
	assert.Nil(t, orphan.Links)
}

func TestLink(t *testing.T) {
	h := newHarness(t, 1)
	work := h.workTree(t, "shop")
	_, err := h.m.Setup("shop", work, "web")
	require.NoError(t, err)
	_, err = h.m.Unlink(work)
	require.NoError(t, err)

	res, err := h.m.Link("shop")
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)
	assert.True(t, h.m.Linker().ValidateSymlinks(work))
}
