// Package storetest holds behaviour tests shared by every catalog.Store
// backend.
package storetest

import (
	"context"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-tagger/internal/catalog"
	"video-tagger/internal/mediatypes"
)

// Factory returns a fresh, empty store. The test owns closing it.
type Factory func(t *testing.T) catalog.Store

// Run exercises the full catalog.Store contract against newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("GetMissingVideo", func(t *testing.T) { testGetMissingVideo(t, newStore(t)) })
	t.Run("UpsertReplacesFully", func(t *testing.T) { testUpsertReplacesFully(t, newStore(t)) })
	t.Run("DeleteVideo", func(t *testing.T) { testDeleteVideo(t, newStore(t)) })
	t.Run("VideosWithTag", func(t *testing.T) { testVideosWithTag(t, newStore(t)) })
	t.Run("VideosWithAllTags", func(t *testing.T) { testVideosWithAllTags(t, newStore(t)) })
	t.Run("IncrementDecrementEvict", func(t *testing.T) { testIncrementDecrementEvict(t, newStore(t)) })
	t.Run("TopTagsOrdering", func(t *testing.T) { testTopTagsOrdering(t, newStore(t)) })
	t.Run("PrefixAndContainment", func(t *testing.T) { testPrefixAndContainment(t, newStore(t)) })
}

func record(p string, size int64, tags ...string) mediatypes.FileRecord {
	return mediatypes.FileRecord{
		Path:             p,
		Name:             path.Base(p),
		Size:             size,
		LastModifiedTime: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Tags:             tags,
	}
}

func paths(recs []mediatypes.FileRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Path)
	}
	return out
}

func tagNames(recs []mediatypes.TagRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

func testGetMissingVideo(t *testing.T, s catalog.Store) {
	defer s.Close()

	_, err := s.GetVideo(context.Background(), "/v/none.mp4")
	assert.ErrorIs(t, err, mediatypes.ErrRecordNotFound)

	_, err = s.GetTag(context.Background(), "none")
	assert.ErrorIs(t, err, mediatypes.ErrRecordNotFound)
}

func testUpsertReplacesFully(t *testing.T, s catalog.Store) {
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.UpsertVideo(ctx, record("/v/a.mp4", 100, "x", "y")))
	require.NoError(t, s.UpsertVideo(ctx, record("/v/a.mp4", 200, "z")))

	got, err := s.GetVideo(ctx, "/v/a.mp4")
	require.NoError(t, err)
	assert.Equal(t, int64(200), got.Size)
	assert.Equal(t, []string{"z"}, got.Tags)
	assert.True(t, got.LastModifiedTime.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))

	n, err := s.CountVideos(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	withX, err := s.VideosWithTag(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, withX)
}

func testDeleteVideo(t *testing.T, s catalog.Store) {
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.UpsertVideo(ctx, record("/v/a.mp4", 1, "x")))
	require.NoError(t, s.DeleteVideo(ctx, "/v/a.mp4"))
	require.NoError(t, s.DeleteVideo(ctx, "/v/a.mp4"))

	_, err := s.GetVideo(ctx, "/v/a.mp4")
	assert.ErrorIs(t, err, mediatypes.ErrRecordNotFound)

	withX, err := s.VideosWithTag(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, withX)

	all, err := s.VideoPaths(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testVideosWithTag(t *testing.T, s catalog.Store) {
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.UpsertVideo(ctx, record("/v/b.mp4", 1, "x")))
	require.NoError(t, s.UpsertVideo(ctx, record("/v/a.mp4", 1, "x", "y")))
	require.NoError(t, s.UpsertVideo(ctx, record("/v/c.mp4", 1, "y")))

	got, err := s.VideosWithTag(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"/v/a.mp4", "/v/b.mp4"}, paths(got))
	assert.ElementsMatch(t, []string{"x", "y"}, got[0].Tags)

	none, err := s.VideosWithTag(ctx, "X")
	require.NoError(t, err)
	assert.Empty(t, none, "tag identity is case-sensitive")

	all, err := s.VideoPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/v/a.mp4", "/v/b.mp4", "/v/c.mp4"}, all)
}

func testVideosWithAllTags(t *testing.T, s catalog.Store) {
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.UpsertVideo(ctx, record("/v/1.mp4", 1, "a", "b")))
	require.NoError(t, s.UpsertVideo(ctx, record("/v/2.mp4", 1, "a")))

	both, err := s.VideosWithAllTags(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/v/1.mp4"}, paths(both))

	onlyA, err := s.VideosWithAllTags(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/v/1.mp4", "/v/2.mp4"}, paths(onlyA))

	missing, err := s.VideosWithAllTags(ctx, []string{"a", "zzz"})
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func testIncrementDecrementEvict(t *testing.T, s catalog.Store) {
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.IncrementTag(ctx, "x"))
	require.NoError(t, s.IncrementTag(ctx, "x"))

	rec, err := s.GetTag(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Count)

	evicted, err := s.DecrementTag(ctx, "x")
	require.NoError(t, err)
	assert.False(t, evicted)

	evicted, err = s.DecrementTag(ctx, "x")
	require.NoError(t, err)
	assert.True(t, evicted)

	_, err = s.GetTag(ctx, "x")
	assert.ErrorIs(t, err, mediatypes.ErrRecordNotFound)

	evicted, err = s.DecrementTag(ctx, "never")
	require.NoError(t, err)
	assert.False(t, evicted)
	_, err = s.GetTag(ctx, "never")
	assert.ErrorIs(t, err, mediatypes.ErrRecordNotFound)

	require.NoError(t, s.IncrementTag(ctx, "x"))
	rec, err = s.GetTag(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count, "re-created tag starts fresh")

	n, err := s.CountTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func seedTags(t *testing.T, s catalog.Store, counts map[string]int) {
	t.Helper()
	for name, n := range counts {
		for range n {
			require.NoError(t, s.IncrementTag(context.Background(), name))
		}
	}
}

func testTopTagsOrdering(t *testing.T, s catalog.Store) {
	defer s.Close()
	ctx := context.Background()

	seedTags(t, s, map[string]int{"b": 2, "a": 2, "c": 5, "d": 1})

	top, err := s.TopTags(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, tagNames(top))
	assert.Equal(t, 5, top[0].Count)

	all, err := s.TopTags(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b", "d"}, tagNames(all))

	again, err := s.TopTags(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, all, again)
}

func testPrefixAndContainment(t *testing.T, s catalog.Store) {
	defer s.Close()
	ctx := context.Background()

	seedTags(t, s, map[string]int{"cat": 5, "category": 3, "dog": 9, "Catalog": 4, "bobcat": 7, "wildcat": 1})

	prefix, err := s.TagsWithPrefix(ctx, "CAT", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "Catalog", "category"}, tagNames(prefix))

	limited, err := s.TagsWithPrefix(ctx, "cat", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "Catalog"}, tagNames(limited))

	contains, err := s.TagsContaining(ctx, "cat", []string{"cat", "Catalog", "category"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"bobcat", "wildcat"}, tagNames(contains))

	none, err := s.TagsWithPrefix(ctx, "zebra", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
