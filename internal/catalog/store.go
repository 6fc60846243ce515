package catalog

import (
	"context"

	"video-tagger/internal/mediatypes"
)

// VideoStore persists FileRecords keyed by normalized path. Paths passed in
// are already normalized. GetVideo returns mediatypes.ErrRecordNotFound when
// no record exists.
type VideoStore interface {
	GetVideo(ctx context.Context, path string) (mediatypes.FileRecord, error)
	// UpsertVideo replaces the record for rec.Path, tags included.
	UpsertVideo(ctx context.Context, rec mediatypes.FileRecord) error
	DeleteVideo(ctx context.Context, path string) error
	VideosWithTag(ctx context.Context, tag string) ([]mediatypes.FileRecord, error)
	// VideosWithAllTags returns records carrying every tag in tags. tags is
	// non-empty and free of duplicates.
	VideosWithAllTags(ctx context.Context, tags []string) ([]mediatypes.FileRecord, error)
	VideoPaths(ctx context.Context) ([]string, error)
	CountVideos(ctx context.Context) (int, error)
}

// TagStore persists tag usage counts. Ordering for every listing method is
// count descending, then name ascending. A limit <= 0 means no limit.
// Matching in TagsWithPrefix and TagsContaining is case-insensitive.
type TagStore interface {
	IncrementTag(ctx context.Context, name string) error
	// DecrementTag lowers the count and deletes the tag when it reaches zero
	// or below. Decrementing an unknown tag is a no-op.
	DecrementTag(ctx context.Context, name string) (evicted bool, err error)
	GetTag(ctx context.Context, name string) (mediatypes.TagRecord, error)
	TopTags(ctx context.Context, limit int) ([]mediatypes.TagRecord, error)
	TagsWithPrefix(ctx context.Context, prefix string, limit int) ([]mediatypes.TagRecord, error)
	TagsContaining(ctx context.Context, substr string, exclude []string, limit int) ([]mediatypes.TagRecord, error)
	CountTags(ctx context.Context) (int, error)
}

// Store is a complete catalog backend.
type Store interface {
	VideoStore
	TagStore
	Close() error
}
