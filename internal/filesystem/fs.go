package filesystem

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FS is the retrying filesystem used by the aggregator, the catalog and the
// tagging service. Paths are given in normalized (forward slash) form.
type FS struct {
	fs     afero.Fs
	config RetryConfig
}

// New wraps an afero filesystem.
func New(fs afero.Fs, config RetryConfig) *FS {
	return &FS{fs: fs, config: config}
}

// NewOS returns an FS backed by the host filesystem.
func NewOS(config RetryConfig) *FS {
	return New(afero.NewOsFs(), config)
}

// Stat follows symlinks and returns the target's info.
func (f *FS) Stat(path string) (os.FileInfo, error) {
	return withRetry("stat", path, f.config, func() (os.FileInfo, error) {
		return f.fs.Stat(path)
	})
}

// ReadDir lists the direct children of a directory, sorted by name. Entries
// describe the link itself for symlinks; callers Stat them to follow.
func (f *FS) ReadDir(path string) ([]os.FileInfo, error) {
	return withRetry("readdir", path, f.config, func() ([]os.FileInfo, error) {
		return afero.ReadDir(f.fs, path)
	})
}

// Exists reports whether path currently exists. Any stat error counts as absent.
func (f *FS) Exists(path string) bool {
	_, err := f.Stat(path)
	return err == nil
}

// RealPath resolves every symlink in path. Filesystems without symlink
// support return the path unchanged.
func (f *FS) RealPath(path string) (string, error) {
	if _, ok := f.fs.(*afero.OsFs); !ok {
		return path, nil
	}
	return withRetry("realpath", path, f.config, func() (string, error) {
		resolved, err := filepath.EvalSymlinks(filepath.FromSlash(path))
		if err != nil {
			return "", err
		}
		return Normalize(resolved), nil
	})
}
