package catalog

import (
	"context"
	"errors"

	"video-tagger/internal/logging"
	"video-tagger/internal/mediatypes"
	"video-tagger/internal/metrics"
)

// TagIndex tracks how many catalog records reference each tag.
type TagIndex struct {
	store TagStore
}

// NewTagIndex creates a TagIndex over store.
func NewTagIndex(store TagStore) *TagIndex {
	return &TagIndex{store: store}
}

// Increment creates tag with count 1 or adds one to its count.
func (ti *TagIndex) Increment(ctx context.Context, tag string) error {
	if err := ti.store.IncrementTag(ctx, tag); err != nil {
		return storeErr("increment tag", err)
	}
	metrics.TagIndexMutations.WithLabelValues("increment").Inc()
	return nil
}

// Decrement subtracts one from tag's count and evicts it at zero or below.
func (ti *TagIndex) Decrement(ctx context.Context, tag string) error {
	evicted, err := ti.store.DecrementTag(ctx, tag)
	if err != nil {
		return storeErr("decrement tag", err)
	}
	metrics.TagIndexMutations.WithLabelValues("decrement").Inc()
	if evicted {
		metrics.TagIndexMutations.WithLabelValues("evict").Inc()
		logging.Debug("Evicted tag %q", tag)
	}
	return nil
}

// Get returns the record for tag, or mediatypes.ErrRecordNotFound.
func (ti *TagIndex) Get(ctx context.Context, tag string) (mediatypes.TagRecord, error) {
	rec, err := ti.store.GetTag(ctx, tag)
	if err != nil {
		if errors.Is(err, mediatypes.ErrRecordNotFound) {
			return mediatypes.TagRecord{}, err
		}
		return mediatypes.TagRecord{}, storeErr("get tag", err)
	}
	return rec, nil
}

// TopN returns up to limit tags ordered by count descending, ties by name.
func (ti *TagIndex) TopN(ctx context.Context, limit int) ([]mediatypes.TagRecord, error) {
	recs, err := ti.store.TopTags(ctx, limit)
	if err != nil {
		return nil, storeErr("top tags", err)
	}
	if recs == nil {
		recs = []mediatypes.TagRecord{}
	}
	return recs, nil
}

// SearchSimilar suggests up to limit tag names for query. Tags starting with
// query come first, then tags merely containing it, each group ordered by
// count descending. Matching ignores case. An empty query returns TopN.
func (ti *TagIndex) SearchSimilar(ctx context.Context, query string, limit int) ([]string, error) {
	if query == "" {
		top, err := ti.TopN(ctx, limit)
		if err != nil {
			return nil, err
		}
		return names(top), nil
	}

	prefix, err := ti.store.TagsWithPrefix(ctx, query, limit)
	if err != nil {
		return nil, storeErr("search tags by prefix", err)
	}
	result := names(prefix)

	remaining := limit - len(result)
	if limit > 0 && remaining <= 0 {
		return result, nil
	}
	if limit <= 0 {
		remaining = 0
	}

	contains, err := ti.store.TagsContaining(ctx, query, result, remaining)
	if err != nil {
		return nil, storeErr("search tags by substring", err)
	}
	return append(result, names(contains)...), nil
}

// Count returns the number of live tags.
func (ti *TagIndex) Count(ctx context.Context) (int, error) {
	n, err := ti.store.CountTags(ctx)
	if err != nil {
		return 0, storeErr("count tags", err)
	}
	return n, nil
}

func names(recs []mediatypes.TagRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}
