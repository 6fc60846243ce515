package tagging

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"video-tagger/internal/boltstore"
	"video-tagger/internal/catalog"
	"video-tagger/internal/filesystem"
	"video-tagger/internal/mediatypes"
)

type env struct {
	mem     afero.Fs
	catalog *catalog.Catalog
	tags    *catalog.TagIndex
	svc     *Service
}

func newEnvAt(t require.TestingT, dbPath string) (*env, func()) {
	store, err := boltstore.Open(dbPath)
	require.NoError(t, err)

	mem := afero.NewMemMapFs()
	fsys := filesystem.New(mem, filesystem.DefaultRetryConfig())
	cat := catalog.New(store, fsys)
	tags := catalog.NewTagIndex(store)
	return &env{mem: mem, catalog: cat, tags: tags, svc: NewService(cat, tags, fsys)},
		func() { _ = store.Close() }
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e, closeFn := newEnvAt(t, filepath.Join(t.TempDir(), "videotags.bolt"))
	t.Cleanup(closeFn)
	return e
}

func (e *env) writeFile(t require.TestingT, path string, size int) {
	require.NoError(t, e.mem.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(e.mem, path, make([]byte, size), 0o644))
}

func (e *env) count(t require.TestingT, tag string) int {
	rec, err := e.tags.Get(context.Background(), tag)
	if errors.Is(err, mediatypes.ErrRecordNotFound) {
		return 0
	}
	require.NoError(t, err)
	return rec.Count
}

func TestEndToEndScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.writeFile(t, "/v/a.mp4", 5000)
	e.writeFile(t, "/v/b.mp4", 10)

	_, err := e.svc.AddOrUpdateTags(ctx, "/v/a.mp4", []string{"x", "y"}, Append)
	require.NoError(t, err)

	rec, err := e.catalog.Get(ctx, "/v/a.mp4")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, rec.Tags)
	assert.Equal(t, int64(5000), rec.Size)
	assert.Equal(t, "a.mp4", rec.Name)
	assert.Equal(t, 1, e.count(t, "x"))
	assert.Equal(t, 1, e.count(t, "y"))

	_, err = e.svc.AddOrUpdateTags(ctx, "/v/b.mp4", []string{"x"}, Append)
	require.NoError(t, err)
	assert.Equal(t, 2, e.count(t, "x"))

	require.NoError(t, e.svc.RemoveAllTags(ctx, "/v/a.mp4"))
	assert.Equal(t, 1, e.count(t, "x"))
	_, err = e.tags.Get(ctx, "y")
	assert.ErrorIs(t, err, mediatypes.ErrRecordNotFound)
	_, err = e.catalog.Get(ctx, "/v/a.mp4")
	assert.ErrorIs(t, err, mediatypes.ErrRecordNotFound)
}

func TestAddToMissingFile(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.AddOrUpdateTags(context.Background(), "/v/missing.mp4", []string{"x"}, Append)
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrFileNotFound)

	var nf *catalog.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "/v/missing.mp4", nf.Path)
	assert.Zero(t, e.count(t, "x"))
}

func TestAddToDirectory(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.mem.MkdirAll("/v/dir", 0o755))

	_, err := e.svc.AddOrUpdateTags(context.Background(), "/v/dir", []string{"x"}, Append)
	assert.ErrorIs(t, err, ErrIsDirectory)
}

func TestIdempotentRetagging(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.writeFile(t, "/v/a.mp4", 1)

	for range 2 {
		_, err := e.svc.AddOrUpdateTags(ctx, "/v/a.mp4", []string{"t"}, Append)
		require.NoError(t, err)
	}

	tags, err := e.svc.GetTagsForFile(ctx, "/v/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, []string{"t"}, tags)
	assert.Equal(t, 1, e.count(t, "t"))
}

func TestReplaceWithSameSetKeepsCounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.writeFile(t, "/v/a.mp4", 1)

	_, err := e.svc.AddOrUpdateTags(ctx, "/v/a.mp4", []string{"a", "b"}, Append)
	require.NoError(t, err)
	_, err = e.svc.AddOrUpdateTags(ctx, "/v/a.mp4", []string{"b", "a"}, Replace)
	require.NoError(t, err)

	assert.Equal(t, 1, e.count(t, "a"))
	assert.Equal(t, 1, e.count(t, "b"))
}

func TestReplaceAdjustsCounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.writeFile(t, "/v/a.mp4", 1)
	e.writeFile(t, "/v/b.mp4", 1)

	_, err := e.svc.AddOrUpdateTags(ctx, "/v/a.mp4", []string{"a", "b"}, Append)
	require.NoError(t, err)
	_, err = e.svc.AddOrUpdateTags(ctx, "/v/b.mp4", []string{"a"}, Append)
	require.NoError(t, err)

	got, err := e.svc.AddOrUpdateTags(ctx, "/v/a.mp4", []string{"b", "c"}, Replace)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, got)

	assert.Equal(t, 1, e.count(t, "a"))
	assert.Equal(t, 1, e.count(t, "b"))
	assert.Equal(t, 1, e.count(t, "c"))
}

func TestReplaceWithEmptyRemovesRecord(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.writeFile(t, "/v/a.mp4", 1)

	_, err := e.svc.AddOrUpdateTags(ctx, "/v/a.mp4", []string{"x"}, Append)
	require.NoError(t, err)

	got, err := e.svc.AddOrUpdateTags(ctx, "/v/a.mp4", []string{"  ", ""}, Replace)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = e.catalog.Get(ctx, "/v/a.mp4")
	assert.ErrorIs(t, err, mediatypes.ErrRecordNotFound)
	assert.Zero(t, e.count(t, "x"))
}

func TestRemoveAllTagsUntracked(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.svc.RemoveAllTags(context.Background(), "/v/never.mp4"))
}

func TestRemoveAllTagsOnVanishedFile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.writeFile(t, "/v/a.mp4", 1)

	_, err := e.svc.AddOrUpdateTags(ctx, "/v/a.mp4", []string{"x"}, Append)
	require.NoError(t, err)
	require.NoError(t, e.mem.Remove("/v/a.mp4"))

	require.NoError(t, e.svc.RemoveAllTags(ctx, "/v/a.mp4"))
	assert.Zero(t, e.count(t, "x"))
}

func TestSeparatorStylesShareRecord(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.writeFile(t, "/v/sub/a.mp4", 1)

	_, err := e.svc.AddOrUpdateTags(ctx, "/v/sub/a.mp4", []string{"x"}, Append)
	require.NoError(t, err)
	_, err = e.svc.AddOrUpdateTags(ctx, `\v\sub\.\a.mp4`, []string{"x"}, Append)
	require.NoError(t, err)

	assert.Equal(t, 1, e.count(t, "x"))
}

// TestTagCountInvariant drives random tagging sequences and checks that every
// tag's count equals the number of records referencing it.
func TestTagCountInvariant(t *testing.T) {
	dir := t.TempDir()
	files := []string{"/v/0.mp4", "/v/1.mp4", "/v/2.mp4", "/v/3.mp4"}
	pool := []string{"a", "b", "c", "d", "e"}
	iteration := 0

	rapid.Check(t, func(rt *rapid.T) {
		iteration++
		e, closeFn := newEnvAt(rt, filepath.Join(dir, fmt.Sprintf("%d.bolt", iteration)))
		defer closeFn()
		ctx := context.Background()
		for _, f := range files {
			e.writeFile(rt, f, 1)
		}

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for range steps {
			file := rapid.SampledFrom(files).Draw(rt, "file")
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0, 1:
				tags := rapid.SliceOfN(rapid.SampledFrom(pool), 0, 4).Draw(rt, "tags")
				mode := Mode(rapid.IntRange(0, 1).Draw(rt, "mode"))
				_, err := e.svc.AddOrUpdateTags(ctx, file, tags, mode)
				require.NoError(rt, err)
			case 2:
				require.NoError(rt, e.svc.RemoveAllTags(ctx, file))
			}

			refs := map[string]int{}
			for _, f := range files {
				rec, err := e.catalog.Get(ctx, f)
				if errors.Is(err, mediatypes.ErrRecordNotFound) {
					continue
				}
				require.NoError(rt, err)
				require.NotEmpty(rt, rec.Tags, "no tagged-but-empty records")
				for _, tag := range rec.Tags {
					refs[tag]++
				}
			}
			for _, tag := range pool {
				if got := e.count(rt, tag); got != refs[tag] {
					rt.Fatalf("count(%q) = %d, want %d", tag, got, refs[tag])
				}
			}
		}
	})
}
