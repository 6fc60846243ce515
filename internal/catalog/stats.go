package catalog

import (
	"context"

	"video-tagger/internal/metrics"
)

// StatsProvider reports catalog totals for the metrics collector.
type StatsProvider struct {
	Catalog *Catalog
	Tags    *TagIndex
}

// GetStats implements metrics.StatsProvider.
func (p StatsProvider) GetStats(ctx context.Context) (metrics.Stats, error) {
	videos, err := p.Catalog.Count(ctx)
	if err != nil {
		return metrics.Stats{}, err
	}
	tags, err := p.Tags.Count(ctx)
	if err != nil {
		return metrics.Stats{}, err
	}
	return metrics.Stats{TotalVideos: videos, TotalTags: tags}, nil
}
