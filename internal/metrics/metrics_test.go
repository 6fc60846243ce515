package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockStatsProvider struct {
	stats Stats
	err   error
}

func (m *mockStatsProvider) GetStats(_ context.Context) (Stats, error) {
	return m.stats, m.err
}

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"DBQueryTotal", DBQueryTotal},
		{"DBQueryDuration", DBQueryDuration},
		{"CatalogVideosTotal", CatalogVideosTotal},
		{"CatalogTagsTotal", CatalogTagsTotal},
		{"TagMutationsTotal", TagMutationsTotal},
		{"AggregateDuration", AggregateDuration},
		{"AggregateSkippedEntries", AggregateSkippedEntries},
		{"TagIndexMutations", TagIndexMutations},
		{"FilesystemOperationDuration", FilesystemOperationDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestCollectUpdatesCatalogGauges(t *testing.T) {
	provider := &mockStatsProvider{stats: Stats{TotalVideos: 12, TotalTags: 4}}
	c := NewCollector(provider, "", time.Hour)

	c.collect()

	if got := testutil.ToFloat64(CatalogVideosTotal); got != 12 {
		t.Errorf("CatalogVideosTotal = %v, want 12", got)
	}
	if got := testutil.ToFloat64(CatalogTagsTotal); got != 4 {
		t.Errorf("CatalogTagsTotal = %v, want 4", got)
	}
}

func TestCollectKeepsGaugesOnProviderError(t *testing.T) {
	CatalogVideosTotal.Set(7)
	c := NewCollector(&mockStatsProvider{err: errors.New("boom")}, "", time.Hour)

	c.collect()

	if got := testutil.ToFloat64(CatalogVideosTotal); got != 7 {
		t.Errorf("CatalogVideosTotal = %v, want unchanged 7", got)
	}
}

func TestCollectWithNilProvider(_ *testing.T) {
	c := NewCollector(nil, "", time.Hour)
	c.collect()
}

func TestCollectDBSize(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "videotags.db")
	if err := os.WriteFile(dbPath, make([]byte, 2048), 0o600); err != nil {
		t.Fatal(err)
	}

	c := NewCollector(nil, dbPath, time.Hour)
	c.collect()

	if got := testutil.ToFloat64(DBSizeBytes.WithLabelValues("main")); got != 2048 {
		t.Errorf("main size = %v, want 2048", got)
	}
	if got := testutil.ToFloat64(DBSizeBytes.WithLabelValues("wal")); got != 0 {
		t.Errorf("wal size = %v, want 0", got)
	}
}

func TestCollectorStartStop(_ *testing.T) {
	c := NewCollector(&mockStatsProvider{}, "", 10*time.Millisecond)
	c.Start()
	time.Sleep(30 * time.Millisecond)
	c.Stop()
}

func TestFilesystemObserver(t *testing.T) {
	obs := NewFilesystemObserver()

	before := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("movies", "stat"))
	obs.ObserveOperation("movies", "stat", 0.01, syscall.ENOENT)
	obs.ObserveOperation("movies", "stat", 0.01, nil)
	after := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("movies", "stat"))
	if after-before != 1 {
		t.Errorf("error counter delta = %v, want 1", after-before)
	}

	staleBefore := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("stat", "movies"))
	obs.ObserveStaleError("stat", "movies")
	if got := testutil.ToFloat64(FilesystemStaleErrors.WithLabelValues("stat", "movies")); got-staleBefore != 1 {
		t.Errorf("stale counter delta = %v, want 1", got-staleBefore)
	}
}

func TestInitializeMetrics(t *testing.T) {
	InitializeMetrics([]string{"movies"}, "1.0.0", "abc123")

	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.0.0", "abc123", goVersion())); got != 1 {
		t.Errorf("AppInfo = %v, want 1", got)
	}
}
