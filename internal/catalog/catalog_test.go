package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-tagger/internal/boltstore"
	"video-tagger/internal/filesystem"
	"video-tagger/internal/mediatypes"
)

type fixture struct {
	store   *boltstore.Store
	mem     afero.Fs
	catalog *Catalog
	tags    *TagIndex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := boltstore.Open(filepath.Join(t.TempDir(), "videotags.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	mem := afero.NewMemMapFs()
	fsys := filesystem.New(mem, filesystem.DefaultRetryConfig())
	return &fixture{
		store:   store,
		mem:     mem,
		catalog: New(store, fsys),
		tags:    NewTagIndex(store),
	}
}

func (f *fixture) writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, f.mem.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(f.mem, path, make([]byte, size), 0o644))
}

func (f *fixture) upsert(t *testing.T, path string, tags ...string) {
	t.Helper()
	require.NoError(t, f.catalog.Upsert(context.Background(), mediatypes.FileRecord{
		Path:             path,
		Size:             1,
		LastModifiedTime: time.Now(),
		Tags:             tags,
	}))
}

func TestUpsertNormalizesKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.upsert(t, `/v/sub/../a.mp4`, "x", "x", "y")

	rec, err := f.catalog.Get(ctx, "/v//a.mp4")
	require.NoError(t, err)
	assert.Equal(t, "/v/a.mp4", rec.Path)
	assert.Equal(t, "a.mp4", rec.Name)
	assert.Equal(t, []string{"x", "y"}, rec.Tags)
}

func TestGetTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tags, err := f.catalog.GetTags(ctx, "/v/never.mp4")
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)

	f.upsert(t, "/v/a.mp4", "x")
	tags, err = f.catalog.GetTags(ctx, "/v/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, tags)
}

func TestFindByAllTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.writeFile(t, "/v/1.mp4", 10)
	f.writeFile(t, "/v/2.mp4", 10)
	f.upsert(t, "/v/1.mp4", "a", "b")
	f.upsert(t, "/v/2.mp4", "a")

	both, err := f.catalog.FindByAllTags(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "/v/1.mp4", both[0].Path)

	onlyA, err := f.catalog.FindByAllTags(ctx, []string{"a", "a"})
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)

	none, err := f.catalog.FindByAllTags(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStaleRecordsFilteredNotDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.writeFile(t, "/v/a.mp4", 10)
	f.writeFile(t, "/v/b.mp4", 10)
	f.upsert(t, "/v/a.mp4", "x")
	f.upsert(t, "/v/b.mp4", "x")

	require.NoError(t, f.mem.Remove("/v/a.mp4"))

	byTag, err := f.catalog.FindByTag(ctx, "x")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "/v/b.mp4", byTag[0].Path)

	byAll, err := f.catalog.FindByAllTags(ctx, []string{"x"})
	require.NoError(t, err)
	assert.Len(t, byAll, 1)

	rec, err := f.catalog.Get(ctx, "/v/a.mp4")
	require.NoError(t, err, "stale record stays retrievable")
	assert.Equal(t, []string{"x"}, rec.Tags)

	paths, err := f.catalog.Paths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/v/a.mp4", "/v/b.mp4"}, paths)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.upsert(t, "/v/a.mp4", "x")
	require.NoError(t, f.catalog.Delete(ctx, "/v/./a.mp4"))

	_, err := f.catalog.Get(ctx, "/v/a.mp4")
	assert.ErrorIs(t, err, mediatypes.ErrRecordNotFound)

	n, err := f.catalog.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStoreErrorWrapping(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Close())

	_, err := f.catalog.FindByTag(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsStoreError(err))

	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "find by tag", se.Op)
}

func TestNotFoundError(t *testing.T) {
	err := error(&NotFoundError{Path: "/v/a.mp4"})
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.Equal(t, "file not found: /v/a.mp4", err.Error())
	assert.False(t, IsStoreError(err))
}

func TestStatsProvider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.upsert(t, "/v/a.mp4", "x")
	require.NoError(t, f.tags.Increment(ctx, "x"))

	stats, err := StatsProvider{Catalog: f.catalog, Tags: f.tags}.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVideos)
	assert.Equal(t, 1, stats.TotalTags)
}
