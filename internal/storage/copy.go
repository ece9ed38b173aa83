package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cpm-labs/cpm/internal/paths"
	"github.com/cpm-labs/cpm/internal/platform"
	"github.com/spf13/afero"
)

// templateExcluded are names never copied out of a template directory.
var templateExcluded = map[string]bool{
	paths.TemplateMeta: true,
	".git":             true,
	".DS_Store":        true,
}

// copyOptions controls copyTree.
type copyOptions struct {
	// overwrite replaces existing destination files; otherwise they are kept.
	overwrite bool
	// skip reports whether the entry at rel (slash separated, relative to
	// the source root) is left out. Skipped directories are not descended.
	skip func(rel string, isDir bool) bool
}

// copyTree recursively copies src into dst on fsys. Symlinks and other
// special files are skipped. It returns the number of files written.
func copyTree(fsys afero.Fs, src, dst string, opts copyOptions) (int, error) {
	return copyDir(fsys, src, dst, "", opts)
}

func copyDir(fsys afero.Fs, src, dst, rel string, opts copyOptions) (int, error) {
	if err := fsys.MkdirAll(dst, paths.DirPermNormal); err != nil {
		return 0, fmt.Errorf("creating %s: %w", dst, err)
	}

	entries, err := afero.ReadDir(fsys, src)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", src, err)
	}

	written := 0
	for _, entry := range entries {
		entryRel := entry.Name()
		if rel != "" {
			entryRel = rel + "/" + entry.Name()
		}
		if opts.skip != nil && opts.skip(entryRel, entry.IsDir()) {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.IsDir():
			n, err := copyDir(fsys, srcPath, dstPath, entryRel, opts)
			written += n
			if err != nil {
				return written, err
			}
		case entry.Mode().IsRegular():
			ok, err := copyFile(fsys, srcPath, dstPath, opts.overwrite)
			if err != nil {
				return written, err
			}
			if ok {
				written++
			}
		}
	}
	return written, nil
}

// copyFile copies a single file, preserving permissions. When overwrite is
// false an existing dst is left alone and false is returned.
func copyFile(fsys afero.Fs, src, dst string, overwrite bool) (bool, error) {
	if !overwrite {
		if _, err := fsys.Stat(dst); err == nil {
			return false, nil
		} else if !os.IsNotExist(err) {
			return false, fmt.Errorf("checking %s: %w", dst, err)
		}
	}

	data, err := afero.ReadFile(fsys, src)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", src, err)
	}
	info, err := fsys.Stat(src)
	if err != nil {
		return false, err
	}
	if err := afero.WriteFile(fsys, dst, data, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", dst, err)
	}
	// WriteFile only applies the mode to new files.
	if err := platform.Chmod(fsys, dst, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("setting mode of %s: %w", dst, err)
	}
	return true, nil
}

// skipTemplateFiles leaves out template metadata and VCS noise at any depth.
func skipTemplateFiles(rel string, _ bool) bool {
	return templateExcluded[filepath.Base(filepath.FromSlash(rel))]
}
