package aggregator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-tagger/internal/mediatypes"
)

type mapTags map[string][]string

func (m mapTags) GetTags(_ context.Context, path string) ([]string, error) {
	return m[path], nil
}

type failingTags struct{}

func (failingTags) GetTags(context.Context, string) ([]string, error) {
	return nil, errors.New("store unavailable")
}

func names(entries []mediatypes.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestListDirectoryHidesFoldersWithoutVideos(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/lib/nothing/readme.txt", 10, t0)
	writeFile(t, mem, "/lib/deep/one/two/three.mp4", 4242, t1)
	writeFile(t, mem, "/lib/clip.mov", 7, t2)
	writeFile(t, mem, "/lib/cover.jpg", 7, t2)

	for _, workers := range []int{0, 3} {
		entries, err := newAggregator(mem, workers).ListDirectory(context.Background(), "/lib", mapTags{
			"/lib/clip.mov": {"x"},
		})
		require.NoError(t, err)
		require.Equal(t, []string{"clip.mov", "deep"}, names(entries), "workers=%d", workers)

		clip := entries[0]
		assert.Equal(t, mediatypes.FileTypeVideo, clip.Type)
		assert.Equal(t, "/lib/clip.mov", clip.Path)
		assert.Equal(t, int64(7), clip.Size)
		assert.Equal(t, []string{"x"}, clip.Tags)

		deep := entries[1]
		assert.True(t, deep.IsDir())
		assert.Equal(t, int64(4242), deep.Size)
		assert.True(t, deep.ModTime.Equal(t1))
	}
}

func TestListDirectoryUntaggedVideoHasEmptyTags(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/lib/a.mp4", 1, t0)

	entries, err := newAggregator(mem, 0).ListDirectory(context.Background(), "/lib", mapTags{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotNil(t, entries[0].Tags)
	assert.Empty(t, entries[0].Tags)
}

func TestListDirectorySkipsUnstatableVideo(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/lib/a.mp4", 1, t0)
	writeFile(t, mem, "/lib/b.mp4", 1, t0)
	fs := &failingFs{Fs: mem, fail: map[string]bool{"/lib/a.mp4": true}}

	entries, err := newAggregator(fs, 0).ListDirectory(context.Background(), "/lib", mapTags{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.mp4"}, names(entries))
}

func TestListDirectoryMissingDirIsEmpty(t *testing.T) {
	entries, err := newAggregator(afero.NewMemMapFs(), 0).ListDirectory(context.Background(), "/nope", mapTags{})
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestListDirectoryPropagatesStoreErrors(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFile(t, mem, "/lib/a.mp4", 1, t0)

	_, err := newAggregator(mem, 2).ListDirectory(context.Background(), "/lib", failingTags{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
}

func TestListDirectoryShowsSymlinkedFolders(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := t.TempDir()
	osfs := afero.NewOsFs()
	writeFile(t, osfs, filepath.Join(root, "store", "a.mp4"), 10, t1)
	lib := filepath.Join(root, "lib")
	require.NoError(t, osfs.MkdirAll(lib, 0o755))
	require.NoError(t, os.Symlink(filepath.Join(root, "store"), filepath.Join(lib, "linked")))
	require.NoError(t, os.Symlink(lib, filepath.Join(lib, "self")))

	entries, err := newAggregator(osfs, 2).ListDirectory(context.Background(), filepath.ToSlash(lib), mapTags{})
	require.NoError(t, err)
	require.Equal(t, []string{"linked"}, names(entries))
	assert.Equal(t, mediatypes.FileTypeFolder, entries[0].Type)
	assert.Equal(t, int64(10), entries[0].Size)
	assert.True(t, entries[0].ModTime.Equal(t1))
}
