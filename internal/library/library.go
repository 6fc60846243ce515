package library

import (
	"context"
	"time"

	"video-tagger/internal/aggregator"
	"video-tagger/internal/catalog"
	"video-tagger/internal/filesystem"
	"video-tagger/internal/logging"
	"video-tagger/internal/mediatypes"
	"video-tagger/internal/metrics"
	"video-tagger/internal/tagging"
)

// Default limits used when callers pass 0.
const (
	DefaultTopTags     = 50
	DefaultSuggestions = 10
)

// Library bundles the catalog, tag index, tagging service and aggregator.
type Library struct {
	catalog    *catalog.Catalog
	tags       *catalog.TagIndex
	tagging    *tagging.Service
	aggregator *aggregator.Aggregator
	fs         *filesystem.FS
}

// Options configures New.
type Options struct {
	// Workers bounds concurrent subtree aggregation. 0 is sequential.
	Workers int
}

// New wires a Library over store and fs.
func New(store catalog.Store, fs *filesystem.FS, opts Options) *Library {
	cat := catalog.New(store, fs)
	tags := catalog.NewTagIndex(store)
	return &Library{
		catalog:    cat,
		tags:       tags,
		tagging:    tagging.NewService(cat, tags, fs),
		aggregator: aggregator.New(fs, aggregator.Config{Workers: opts.Workers}),
		fs:         fs,
	}
}

// Stats returns a metrics.StatsProvider over this library.
func (l *Library) Stats() metrics.StatsProvider {
	return catalog.StatsProvider{Catalog: l.catalog, Tags: l.tags}
}

// ListDirectory lists video-bearing folders and video files in dir.
func (l *Library) ListDirectory(ctx context.Context, dir string) ([]mediatypes.Entry, error) {
	return l.aggregator.ListDirectory(ctx, dir, l.catalog)
}

// Aggregate returns the video totals of the tree at dir.
func (l *Library) Aggregate(ctx context.Context, dir string) aggregator.Result {
	return l.aggregator.Aggregate(ctx, dir)
}

// AddOrUpdateTags tags the file at path and returns its resulting tags.
func (l *Library) AddOrUpdateTags(ctx context.Context, path string, tags []string, mode tagging.Mode) ([]string, error) {
	return l.tagging.AddOrUpdateTags(ctx, path, tags, mode)
}

// RemoveAllTags untags path and drops its record.
func (l *Library) RemoveAllTags(ctx context.Context, path string) error {
	return l.tagging.RemoveAllTags(ctx, path)
}

// GetTagsForFile returns the tags of path, empty if untagged.
func (l *Library) GetTagsForFile(ctx context.Context, path string) ([]string, error) {
	return l.tagging.GetTagsForFile(ctx, path)
}

// FindByTag returns existing files carrying tag.
func (l *Library) FindByTag(ctx context.Context, tag string) ([]mediatypes.FileRecord, error) {
	return l.catalog.FindByTag(ctx, tag)
}

// FindByAllTags returns existing files carrying every tag. No tags, no results.
func (l *Library) FindByAllTags(ctx context.Context, tags []string) ([]mediatypes.FileRecord, error) {
	return l.catalog.FindByAllTags(ctx, tags)
}

// TopTags returns the most used tags. limit 0 uses DefaultTopTags.
func (l *Library) TopTags(ctx context.Context, limit int) ([]mediatypes.TagRecord, error) {
	if limit == 0 {
		limit = DefaultTopTags
	}
	return l.tags.TopN(ctx, limit)
}

// SearchSimilarTags suggests tag names for query. limit 0 uses DefaultSuggestions.
func (l *Library) SearchSimilarTags(ctx context.Context, query string, limit int) ([]string, error) {
	if limit == 0 {
		limit = DefaultSuggestions
	}
	return l.tags.SearchSimilar(ctx, query, limit)
}

// GetTag returns one tag's record, or mediatypes.ErrRecordNotFound.
func (l *Library) GetTag(ctx context.Context, name string) (mediatypes.TagRecord, error) {
	return l.tags.Get(ctx, name)
}

// GetFile returns the catalog record for path, or mediatypes.ErrRecordNotFound.
func (l *Library) GetFile(ctx context.Context, path string) (mediatypes.FileRecord, error) {
	return l.catalog.Get(ctx, path)
}

// PruneReport summarizes a PruneStale run.
type PruneReport struct {
	Checked  int           `json:"checked"`
	Removed  []string      `json:"removed"`
	Duration time.Duration `json:"duration"`
}

// PruneStale removes catalog records whose files no longer exist, keeping tag
// counts consistent. Queries already hide such records; this reclaims them.
func (l *Library) PruneStale(ctx context.Context) (PruneReport, error) {
	start := time.Now()
	report := PruneReport{Removed: []string{}}

	paths, err := l.catalog.Paths(ctx)
	if err != nil {
		return report, err
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++
		if l.fs.Exists(p) {
			continue
		}
		if err := l.tagging.RemoveAllTags(ctx, p); err != nil {
			return report, err
		}
		report.Removed = append(report.Removed, p)
		metrics.PruneRemovedTotal.Inc()
	}

	report.Duration = time.Since(start)
	logging.Info("Pruned %d stale records of %d in %v", len(report.Removed), report.Checked, report.Duration)
	return report, nil
}
