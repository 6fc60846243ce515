package boltstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"video-tagger/internal/logging"
	"video-tagger/internal/mediatypes"
	"video-tagger/internal/metrics"
)

// Bucket names in the bolt file.
const (
	// BucketVideos maps a normalized path to its JSON video document.
	BucketVideos = "videos"
	// BucketTags maps a tag name to its JSON count document.
	BucketTags = "tags"
	// BucketVideoTags indexes videos by tag: keys are tag, NUL, path.
	BucketVideoTags = "video_tags"
)

const indexSep = "\x00"

type videoDoc struct {
	Name             string   `json:"name"`
	Path             string   `json:"path"`
	Size             int64    `json:"size"`
	LastModifiedTime int64    `json:"lastModifiedTime"`
	IsDir            bool     `json:"isDir"`
	Tags             []string `json:"tags"`
}

type tagDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Store is a bbolt-backed catalog.Store.
type Store struct {
	bdb  *bolt.DB
	path string
}

// Open opens or creates the bbolt file at path and ensures the buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{BucketVideos, BucketTags, BucketVideoTags} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close bolt database after init failure: %v", closeErr)
		}
		return nil, err
	}

	logging.Info("Bolt store initialized at %s", path)
	return &Store{bdb: db, path: path}, nil
}

// Close closes the bbolt file.
func (s *Store) Close() error {
	if err := s.bdb.Close(); err != nil {
		return fmt.Errorf("failed to close bolt database: %w", err)
	}
	return nil
}

// Path returns the bbolt file path.
func (s *Store) Path() string {
	return s.path
}

func observe(op string) func(error) {
	start := time.Now()
	return func(err error) {
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.DBQueryTotal.WithLabelValues(op, status).Inc()
		metrics.DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func indexKey(tag, path string) []byte {
	return []byte(tag + indexSep + path)
}

func (d videoDoc) record() mediatypes.FileRecord {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return mediatypes.FileRecord{
		Path:             d.Path,
		Name:             d.Name,
		Size:             d.Size,
		LastModifiedTime: time.Unix(0, d.LastModifiedTime),
		IsDir:            d.IsDir,
		Tags:             tags,
	}
}

func getVideo(tx *bolt.Tx, path string) (videoDoc, bool, error) {
	v := tx.Bucket([]byte(BucketVideos)).Get([]byte(path))
	if v == nil {
		return videoDoc{}, false, nil
	}
	var doc videoDoc
	if err := json.Unmarshal(v, &doc); err != nil {
		return videoDoc{}, false, fmt.Errorf("failed to unmarshal video %s: %w", path, err)
	}
	return doc, true, nil
}

// GetVideo returns the record stored under path.
func (s *Store) GetVideo(ctx context.Context, path string) (rec mediatypes.FileRecord, err error) {
	done := observe("get_video")
	defer func() { done(err) }()

	if err := ctx.Err(); err != nil {
		return mediatypes.FileRecord{}, err
	}

	var doc videoDoc
	var found bool
	err = s.bdb.View(func(tx *bolt.Tx) error {
		var err error
		doc, found, err = getVideo(tx, path)
		return err
	})
	if err != nil {
		return mediatypes.FileRecord{}, err
	}
	if !found {
		return mediatypes.FileRecord{}, mediatypes.ErrRecordNotFound
	}
	return doc.record(), nil
}

// UpsertVideo replaces the document for rec.Path and its index entries.
func (s *Store) UpsertVideo(ctx context.Context, rec mediatypes.FileRecord) (err error) {
	done := observe("upsert_video")
	defer func() { done(err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	doc := videoDoc{
		Name:             rec.Name,
		Path:             rec.Path,
		Size:             rec.Size,
		LastModifiedTime: rec.LastModifiedTime.UnixNano(),
		IsDir:            rec.IsDir,
		Tags:             rec.Tags,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal video %s: %w", rec.Path, err)
	}

	return s.bdb.Update(func(tx *bolt.Tx) error {
		old, found, err := getVideo(tx, rec.Path)
		if err != nil {
			return err
		}
		index := tx.Bucket([]byte(BucketVideoTags))
		if found {
			for _, tag := range old.Tags {
				if err := index.Delete(indexKey(tag, rec.Path)); err != nil {
					return fmt.Errorf("failed to unindex %s: %w", rec.Path, err)
				}
			}
		}
		for _, tag := range rec.Tags {
			if err := index.Put(indexKey(tag, rec.Path), nil); err != nil {
				return fmt.Errorf("failed to index %s: %w", rec.Path, err)
			}
		}
		return tx.Bucket([]byte(BucketVideos)).Put([]byte(rec.Path), data)
	})
}

// DeleteVideo removes the document for path and its index entries.
func (s *Store) DeleteVideo(ctx context.Context, path string) (err error) {
	done := observe("delete_video")
	defer func() { done(err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.bdb.Update(func(tx *bolt.Tx) error {
		old, found, err := getVideo(tx, path)
		if err != nil || !found {
			return err
		}
		index := tx.Bucket([]byte(BucketVideoTags))
		for _, tag := range old.Tags {
			if err := index.Delete(indexKey(tag, path)); err != nil {
				return fmt.Errorf("failed to unindex %s: %w", path, err)
			}
		}
		return tx.Bucket([]byte(BucketVideos)).Delete([]byte(path))
	})
}

// videosWithTag walks the index for tag; results come out in path order.
func videosWithTag(tx *bolt.Tx, tag string) ([]videoDoc, error) {
	prefix := []byte(tag + indexSep)
	c := tx.Bucket([]byte(BucketVideoTags)).Cursor()

	docs := []videoDoc{}
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
		path := string(k[len(prefix):])
		doc, found, err := getVideo(tx, path)
		if err != nil {
			return nil, err
		}
		if !found {
			logging.Warn("Bolt index references missing video %s", path)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// VideosWithTag returns every record carrying tag, ordered by path.
func (s *Store) VideosWithTag(ctx context.Context, tag string) (recs []mediatypes.FileRecord, err error) {
	done := observe("videos_with_tag")
	defer func() { done(err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recs = []mediatypes.FileRecord{}
	err = s.bdb.View(func(tx *bolt.Tx) error {
		docs, err := videosWithTag(tx, tag)
		if err != nil {
			return err
		}
		for _, d := range docs {
			recs = append(recs, d.record())
		}
		return nil
	})
	return recs, err
}

// VideosWithAllTags returns records carrying every tag in tags, ordered by path.
func (s *Store) VideosWithAllTags(ctx context.Context, tags []string) (recs []mediatypes.FileRecord, err error) {
	done := observe("videos_with_all_tags")
	defer func() { done(err) }()

	recs = []mediatypes.FileRecord{}
	if len(tags) == 0 {
		return recs, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err = s.bdb.View(func(tx *bolt.Tx) error {
		docs, err := videosWithTag(tx, tags[0])
		if err != nil {
			return err
		}
		for _, d := range docs {
			rec := d.record()
			if rec.HasAllTags(tags[1:]) {
				recs = append(recs, rec)
			}
		}
		return nil
	})
	return recs, err
}

// VideoPaths returns every stored path in lexical order.
func (s *Store) VideoPaths(ctx context.Context) (paths []string, err error) {
	done := observe("video_paths")
	defer func() { done(err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths = []string{}
	err = s.bdb.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketVideos)).ForEach(func(k, _ []byte) error {
			paths = append(paths, string(k))
			return nil
		})
	})
	return paths, err
}

// CountVideos returns the number of stored records.
func (s *Store) CountVideos(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := s.bdb.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(BucketVideos)).Stats().KeyN
		return nil
	})
	return n, err
}

func getTag(tx *bolt.Tx, name string) (tagDoc, bool, error) {
	v := tx.Bucket([]byte(BucketTags)).Get([]byte(name))
	if v == nil {
		return tagDoc{}, false, nil
	}
	var doc tagDoc
	if err := json.Unmarshal(v, &doc); err != nil {
		return tagDoc{}, false, fmt.Errorf("failed to unmarshal tag %q: %w", name, err)
	}
	return doc, true, nil
}

func putTag(tx *bolt.Tx, doc tagDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal tag %q: %w", doc.Name, err)
	}
	return tx.Bucket([]byte(BucketTags)).Put([]byte(doc.Name), data)
}

// IncrementTag creates name with count 1 or adds one to its count.
func (s *Store) IncrementTag(ctx context.Context, name string) (err error) {
	done := observe("increment_tag")
	defer func() { done(err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	return s.bdb.Update(func(tx *bolt.Tx) error {
		doc, found, err := getTag(tx, name)
		if err != nil {
			return err
		}
		if !found {
			doc = tagDoc{Name: name}
		}
		doc.Count++
		return putTag(tx, doc)
	})
}

// DecrementTag subtracts one from name's count and deletes it at zero or below.
func (s *Store) DecrementTag(ctx context.Context, name string) (evicted bool, err error) {
	done := observe("decrement_tag")
	defer func() { done(err) }()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	err = s.bdb.Update(func(tx *bolt.Tx) error {
		doc, found, err := getTag(tx, name)
		if err != nil || !found {
			return err
		}
		doc.Count--
		if doc.Count <= 0 {
			evicted = true
			return tx.Bucket([]byte(BucketTags)).Delete([]byte(name))
		}
		return putTag(tx, doc)
	})
	return evicted, err
}

// GetTag returns the record for name.
func (s *Store) GetTag(ctx context.Context, name string) (mediatypes.TagRecord, error) {
	if err := ctx.Err(); err != nil {
		return mediatypes.TagRecord{}, err
	}

	var doc tagDoc
	var found bool
	err := s.bdb.View(func(tx *bolt.Tx) error {
		var err error
		doc, found, err = getTag(tx, name)
		return err
	})
	if err != nil {
		return mediatypes.TagRecord{}, err
	}
	if !found {
		return mediatypes.TagRecord{}, mediatypes.ErrRecordNotFound
	}
	return mediatypes.TagRecord{Name: doc.Name, Count: doc.Count}, nil
}

// selectTags returns tags accepted by keep, ordered by count descending then
// name, truncated to limit.
func (s *Store) selectTags(ctx context.Context, op string, limit int, keep func(name string) bool) (recs []mediatypes.TagRecord, err error) {
	done := observe(op)
	defer func() { done(err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recs = []mediatypes.TagRecord{}
	err = s.bdb.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BucketTags)).ForEach(func(k, v []byte) error {
			if !keep(string(k)) {
				return nil
			}
			var doc tagDoc
			if err := json.Unmarshal(v, &doc); err != nil {
				return fmt.Errorf("failed to unmarshal tag %q: %w", k, err)
			}
			recs = append(recs, mediatypes.TagRecord{Name: doc.Name, Count: doc.Count})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Count != recs[j].Count {
			return recs[i].Count > recs[j].Count
		}
		return recs[i].Name < recs[j].Name
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// TopTags returns up to limit tags by count descending, ties by name.
func (s *Store) TopTags(ctx context.Context, limit int) ([]mediatypes.TagRecord, error) {
	return s.selectTags(ctx, "top_tags", limit, func(string) bool { return true })
}

// TagsWithPrefix returns tags whose case-folded name starts with the folded prefix.
func (s *Store) TagsWithPrefix(ctx context.Context, prefix string, limit int) ([]mediatypes.TagRecord, error) {
	folded := mediatypes.FoldTag(prefix)
	return s.selectTags(ctx, "tags_with_prefix", limit, func(name string) bool {
		return strings.HasPrefix(mediatypes.FoldTag(name), folded)
	})
}

// TagsContaining returns tags whose case-folded name contains the folded
// substring, skipping names listed in exclude.
func (s *Store) TagsContaining(ctx context.Context, substr string, exclude []string, limit int) ([]mediatypes.TagRecord, error) {
	folded := mediatypes.FoldTag(substr)
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	return s.selectTags(ctx, "tags_containing", limit, func(name string) bool {
		if _, ok := skip[name]; ok {
			return false
		}
		return strings.Contains(mediatypes.FoldTag(name), folded)
	})
}

// CountTags returns the number of live tags.
func (s *Store) CountTags(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := s.bdb.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(BucketTags)).Stats().KeyN
		return nil
	})
	return n, err
}
