package catalog

import (
	"context"
	"errors"

	"video-tagger/internal/filesystem"
	"video-tagger/internal/mediatypes"
)

// Catalog maps normalized paths to tagged file records.
type Catalog struct {
	store VideoStore
	fs    *filesystem.FS
}

// New creates a Catalog. fs is consulted at query time to drop records whose
// files have vanished.
func New(store VideoStore, fs *filesystem.FS) *Catalog {
	return &Catalog{store: store, fs: fs}
}

// Upsert writes rec in full under its normalized path.
func (c *Catalog) Upsert(ctx context.Context, rec mediatypes.FileRecord) error {
	rec.Path = filesystem.Normalize(rec.Path)
	if rec.Name == "" {
		rec.Name = filesystem.Base(rec.Path)
	}
	rec.Tags = dedupe(rec.Tags)
	return storeErr("upsert", c.store.UpsertVideo(ctx, rec))
}

// Get returns the record for path, or mediatypes.ErrRecordNotFound. Stale
// records are returned as stored.
func (c *Catalog) Get(ctx context.Context, path string) (mediatypes.FileRecord, error) {
	rec, err := c.store.GetVideo(ctx, filesystem.Normalize(path))
	if err != nil {
		if errors.Is(err, mediatypes.ErrRecordNotFound) {
			return mediatypes.FileRecord{}, err
		}
		return mediatypes.FileRecord{}, storeErr("get", err)
	}
	return rec, nil
}

// GetTags returns the tags of path, or an empty slice if it was never tagged.
func (c *Catalog) GetTags(ctx context.Context, path string) ([]string, error) {
	rec, err := c.Get(ctx, path)
	if errors.Is(err, mediatypes.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if rec.Tags == nil {
		return []string{}, nil
	}
	return rec.Tags, nil
}

// FindByTag returns records carrying tag whose files still exist.
func (c *Catalog) FindByTag(ctx context.Context, tag string) ([]mediatypes.FileRecord, error) {
	recs, err := c.store.VideosWithTag(ctx, tag)
	if err != nil {
		return nil, storeErr("find by tag", err)
	}
	return c.live(recs), nil
}

// FindByAllTags returns records carrying every tag in tags whose files still
// exist. An empty tag set matches nothing.
func (c *Catalog) FindByAllTags(ctx context.Context, tags []string) ([]mediatypes.FileRecord, error) {
	tags = dedupe(tags)
	if len(tags) == 0 {
		return []mediatypes.FileRecord{}, nil
	}
	recs, err := c.store.VideosWithAllTags(ctx, tags)
	if err != nil {
		return nil, storeErr("find by all tags", err)
	}
	return c.live(recs), nil
}

// Delete removes the record for path. Deleting an absent record is not an error.
func (c *Catalog) Delete(ctx context.Context, path string) error {
	return storeErr("delete", c.store.DeleteVideo(ctx, filesystem.Normalize(path)))
}

// Paths returns every catalog key, stale ones included.
func (c *Catalog) Paths(ctx context.Context) ([]string, error) {
	paths, err := c.store.VideoPaths(ctx)
	if err != nil {
		return nil, storeErr("list paths", err)
	}
	return paths, nil
}

// Count returns the number of records.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	n, err := c.store.CountVideos(ctx)
	if err != nil {
		return 0, storeErr("count", err)
	}
	return n, nil
}

// live filters out records whose file is gone. The existence check is made
// on every call and nothing is removed from the store.
func (c *Catalog) live(recs []mediatypes.FileRecord) []mediatypes.FileRecord {
	out := make([]mediatypes.FileRecord, 0, len(recs))
	for _, rec := range recs {
		if c.fs.Exists(rec.Path) {
			out = append(out, rec)
		}
	}
	return out
}

func dedupe(tags []string) []string {
	if tags == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
