package aggregator

import (
	"context"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"video-tagger/internal/filesystem"
	"video-tagger/internal/logging"
	"video-tagger/internal/mediatypes"
	"video-tagger/internal/metrics"
)

// Result is the aggregate of one directory tree.
type Result struct {
	// Size is the total bytes of video files in the tree.
	Size int64
	// ModTime is the latest time folded up from the tree: video mtimes, and
	// for each directory with nothing beneath it to fold, its own mtime.
	ModTime time.Time
	// Videos is the number of video files found.
	Videos int
}

// Config configures an Aggregator.
type Config struct {
	// Workers bounds concurrent subtree walks. 0 walks sequentially.
	Workers int
}

// Aggregator walks directory trees through a filesystem.FS.
type Aggregator struct {
	fs      *filesystem.FS
	sem     *semaphore.Weighted
	workers int

	scanned atomic.Int64
	skipped atomic.Int64
}

// New creates an Aggregator.
func New(fs *filesystem.FS, config Config) *Aggregator {
	a := &Aggregator{fs: fs, workers: config.Workers}
	if config.Workers > 0 {
		a.sem = semaphore.NewWeighted(int64(config.Workers))
	}
	return a
}

// Workers returns the configured concurrency (0 = sequential).
func (a *Aggregator) Workers() int {
	return a.workers
}

// Stats returns the number of entries scanned and skipped since creation.
func (a *Aggregator) Stats() (scanned, skipped int64) {
	return a.scanned.Load(), a.skipped.Load()
}

// Aggregate returns the video totals for dir. It never fails: unreadable
// entries are skipped, and an unreadable dir yields an empty Result. A
// cancelled ctx stops the walk early with a partial result.
func (a *Aggregator) Aggregate(ctx context.Context, dir string) Result {
	dir = filesystem.Normalize(dir)
	return a.aggregate(ctx, dir, a.lineage(dir))
}

func (a *Aggregator) aggregate(ctx context.Context, dir string, chain []string) Result {
	start := time.Now()

	t := a.walk(ctx, dir, chain)
	res := Result{Size: t.size, ModTime: t.latest, Videos: t.videos}

	metrics.AggregateDuration.Observe(time.Since(start).Seconds())
	logging.Debug("Aggregated %s: %d videos, %d bytes in %v", dir, res.Videos, res.Size, time.Since(start))
	return res
}

type totals struct {
	size   int64
	latest time.Time
	videos int
}

func (t *totals) addFile(info os.FileInfo) {
	t.size += info.Size()
	t.videos++
	if info.ModTime().After(t.latest) {
		t.latest = info.ModTime()
	}
}

// merge folds a subtree in, including the fallback time of a subtree
// without videos.
func (t *totals) merge(o totals) {
	t.size += o.size
	t.videos += o.videos
	if o.latest.After(t.latest) {
		t.latest = o.latest
	}
}

// walk totals dir. chain holds the resolved paths of dir and its ancestors.
// When nothing beneath dir supplied a time, dir's own mtime is used.
func (a *Aggregator) walk(ctx context.Context, dir string, chain []string) totals {
	var t totals
	if ctx.Err() != nil {
		return t
	}

	entries, err := a.fs.ReadDir(dir)
	if err != nil {
		a.skip(dir, err)
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, entry := range entries {
		a.scanned.Add(1)
		metrics.AggregateEntriesScanned.Inc()

		p := filesystem.Join(dir, entry.Name())
		info, descend, ok := a.resolve(p, entry)
		if !ok {
			continue
		}

		if descend {
			sub, ok := a.descent(chain, p, entry)
			if !ok {
				continue
			}
			if a.sem != nil && a.sem.TryAcquire(1) {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer a.sem.Release(1)
					st := a.walk(ctx, p, sub)
					mu.Lock()
					t.merge(st)
					mu.Unlock()
				}()
				continue
			}
			st := a.walk(ctx, p, sub)
			mu.Lock()
			t.merge(st)
			mu.Unlock()
			continue
		}

		if info.IsDir() || !mediatypes.IsVideo(entry.Name()) {
			continue
		}
		mu.Lock()
		t.addFile(info)
		mu.Unlock()
	}

	wg.Wait()

	if t.latest.IsZero() && ctx.Err() == nil {
		if info, err := a.fs.Stat(dir); err == nil {
			t.latest = info.ModTime()
		}
	}
	return t
}

// resolve follows symlinks for one directory entry. descend reports a
// directory to recurse into; ok is false when the entry must be skipped.
func (a *Aggregator) resolve(p string, entry os.FileInfo) (info os.FileInfo, descend, ok bool) {
	if entry.Mode()&os.ModeSymlink == 0 {
		return entry, entry.IsDir(), true
	}

	target, err := a.fs.Stat(p)
	if err != nil {
		a.skip(p, err)
		return nil, false, false
	}
	return target, target.IsDir(), true
}

// lineage starts a chain at dir.
func (a *Aggregator) lineage(dir string) []string {
	resolved, err := a.fs.RealPath(dir)
	if err != nil {
		resolved = dir
	}
	return []string{resolved}
}

// descent extends chain with the directory at p. It refuses a symlinked
// directory that resolves onto the chain, which would otherwise loop.
func (a *Aggregator) descent(chain []string, p string, entry os.FileInfo) ([]string, bool) {
	next := filesystem.Join(chain[len(chain)-1], entry.Name())
	if entry.Mode()&os.ModeSymlink != 0 {
		resolved, err := a.fs.RealPath(p)
		if err != nil {
			a.skip(p, err)
			return nil, false
		}
		if slices.Contains(chain, resolved) {
			logging.Debug("Not descending into %s: it links back to %s", p, resolved)
			return nil, false
		}
		next = resolved
	}
	return append(slices.Clip(chain), next), true
}

func (a *Aggregator) skip(p string, err error) {
	a.skipped.Add(1)
	metrics.AggregateSkippedEntries.Inc()
	logging.Warn("Skipping unreadable entry %s: %v", p, err)
}
