package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-tagger/internal/mediatypes"
)

func seed(t *testing.T, ti *TagIndex, counts map[string]int) {
	t.Helper()
	for name, n := range counts {
		for range n {
			require.NoError(t, ti.Increment(context.Background(), name))
		}
	}
}

func TestSearchSimilarRanking(t *testing.T) {
	f := newFixture(t)
	seed(t, f.tags, map[string]int{"cat": 5, "category": 3, "dog": 9})

	got, err := f.tags.SearchSimilar(context.Background(), "cat", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "category"}, got)
}

func TestSearchSimilarPrefixBeforeContainment(t *testing.T) {
	f := newFixture(t)
	seed(t, f.tags, map[string]int{"cat": 1, "bobcat": 9, "Catnip": 2, "wildcat": 4, "dog": 3})
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"prefix then contains", "cat", 10, []string{"Catnip", "cat", "bobcat", "wildcat"}},
		{"case-insensitive", "CAT", 10, []string{"Catnip", "cat", "bobcat", "wildcat"}},
		{"limit filled by prefix", "cat", 2, []string{"Catnip", "cat"}},
		{"limit spills into contains", "cat", 3, []string{"Catnip", "cat", "bobcat"}},
		{"no limit", "cat", 0, []string{"Catnip", "cat", "bobcat", "wildcat"}},
		{"no match", "zebra", 10, []string{}},
		{"empty query is top n", "", 2, []string{"bobcat", "wildcat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.tags.SearchSimilar(ctx, tt.query, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopNStableAndEvicted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seed(t, f.tags, map[string]int{"a": 3, "b": 3, "c": 1})

	first, err := f.tags.TopN(ctx, 10)
	require.NoError(t, err)
	second, err := f.tags.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []mediatypes.TagRecord{{Name: "a", Count: 3}, {Name: "b", Count: 3}, {Name: "c", Count: 1}}, first)

	require.NoError(t, f.tags.Decrement(ctx, "c"))

	top, err := f.tags.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	suggestions, err := f.tags.SearchSimilar(ctx, "c", 10)
	require.NoError(t, err)
	assert.Empty(t, suggestions)

	_, err = f.tags.Get(ctx, "c")
	assert.ErrorIs(t, err, mediatypes.ErrRecordNotFound)

	require.NoError(t, f.tags.Increment(ctx, "c"))
	rec, err := f.tags.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
}

func TestTopNEmpty(t *testing.T) {
	f := newFixture(t)

	top, err := f.tags.TopN(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, top)
	assert.Empty(t, top)
}
