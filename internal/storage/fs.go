package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/learnclj/internal/models"
)

// DefaultExt is the extension of content files.
const DefaultExt = ".md"

// FS implements Provider on top of an fs.FS.
type FS struct {
	fsys fs.FS
	root string // absolute directory when backed by the OS, empty otherwise
	ext  string
}

// NewFS creates a provider rooted at the given directory.
// The directory must already exist.
func NewFS(root, ext string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	f := New(os.DirFS(abs), ext)
	f.root = abs
	return f, nil
}

// New wraps any fs.FS, such as an fstest.MapFS or an embed.FS.
func New(fsys fs.FS, ext string) *FS {
	if ext == "" {
		ext = DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &FS{fsys: fsys, ext: ext}
}

// Root returns the absolute directory backing the provider, or "" for
// in-memory file systems.
func (f *FS) Root() string { return f.root }

// Ext returns the content file extension.
func (f *FS) Ext() string { return f.ext }

// cleanPath validates a relative path and rejects anything that would
// escape the root.
func cleanPath(rel string) (string, error) {
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	cleaned := path.Clean(rel)
	if !fs.ValidPath(cleaned) || cleaned == "." {
		return "", fmt.Errorf("storage: path escapes content root: %s", rel)
	}
	return cleaned, nil
}

// List walks the root and returns metadata for every content file.
// Hidden files and directories are skipped.
func (f *FS) List() ([]models.FileMeta, error) {
	var out []models.FileMeta
	err := fs.WalkDir(f.fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), f.ext) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, models.FileMeta{
			Path:      p,
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a content file. A missing file yields an
// error matching fs.ErrNotExist.
func (f *FS) Read(p string) ([]byte, error) {
	cleaned, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(f.fsys, cleaned)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", p, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("storage: read %s: %w", p, err)
	}
	return data, nil
}
