package template

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/cpm-labs/cpm/internal/logging"
	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"
)

//go:embed builtin
var builtinFS embed.FS

const builtinRoot = "builtin"

// Loader discovers templates under a root directory.
type Loader struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger
}

// NewLoader returns a Loader for templates stored under root on fsys.
func NewLoader(fsys afero.Fs, root string, logger *zap.Logger) *Loader {
	return &Loader{fs: fsys, root: filepath.Clean(root), logger: logging.OrNop(logger)}
}

// Root returns the templates directory.
func (l *Loader) Root() string { return l.root }

// Load reads and validates the template called name.
func (l *Loader) Load(name string) (*Template, error) {
	dir := filepath.Join(l.root, name)
	metaPath := filepath.Join(dir, paths.TemplateMeta)

	data, err := afero.ReadFile(l.fs, metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("reading %s: %w", metaPath, err)
	}

	result, err := ValidateMeta(data)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", metaPath, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("invalid template %s: %s", name, result.Error())
	}

	var meta Meta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", metaPath, err)
	}
	if meta.Name != name {
		l.logger.Warn("template name differs from directory",
			zap.String("dir", name), zap.String("declared", meta.Name))
	}

	return &Template{Name: name, Path: dir, Meta: meta}, nil
}

// List returns every valid template, sorted by name. Directories that fail
// to load are skipped and logged.
func (l *Loader) List() ([]*Template, error) {
	entries, err := afero.ReadDir(l.fs, l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading templates directory: %w", err)
	}

	var templates []*Template
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		t, err := l.Load(e.Name())
		if err != nil {
			l.logger.Warn("skipping template", zap.String("name", e.Name()), zap.Error(err))
			continue
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// InstallBuiltins copies the embedded templates into the templates root.
// Existing files are left untouched. It returns the number of files written.
func (l *Loader) InstallBuiltins() (int, error) {
	written := 0
	err := fs.WalkDir(builtinFS, builtinRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(builtinRoot, filepath.FromSlash(p))
		if err != nil {
			return err
		}
		dst := filepath.Join(l.root, rel)

		if d.IsDir() {
			return l.fs.MkdirAll(dst, paths.DirPermNormal)
		}
		if _, err := l.fs.Stat(dst); err == nil {
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		data, err := builtinFS.ReadFile(path.Clean(p))
		if err != nil {
			return err
		}
		if err := afero.WriteFile(l.fs, dst, data, paths.FilePermNormal); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}
		written++
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("installing built-in templates: %w", err)
	}
	l.logger.Debug("installed built-in templates", zap.Int("files", written), zap.String("root", l.root))
	return written, nil
}
