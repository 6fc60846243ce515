package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"video-tagger/internal/logging"
	"video-tagger/internal/mediatypes"
)

const videoColumns = "v.path, v.name, v.size, v.last_modified_time, v.is_dir"

// tagLoadBatch bounds the number of parameters in one tag lookup.
const tagLoadBatch = 500

// GetVideo returns the record stored under path.
func (d *Database) GetVideo(ctx context.Context, path string) (mediatypes.FileRecord, error) {
	done := observeQuery("get_video")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM videos v WHERE v.path = ?", path)
	rec, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		done(nil)
		return mediatypes.FileRecord{}, mediatypes.ErrRecordNotFound
	}
	if err != nil {
		done(err)
		return mediatypes.FileRecord{}, fmt.Errorf("failed to get video %s: %w", path, err)
	}

	recs := []mediatypes.FileRecord{rec}
	if err := d.loadTags(ctx, recs); err != nil {
		done(err)
		return mediatypes.FileRecord{}, err
	}

	done(nil)
	return recs[0], nil
}

// UpsertVideo replaces the row and tag set of rec in one transaction.
func (d *Database) UpsertVideo(ctx context.Context, rec mediatypes.FileRecord) (err error) {
	done := observeQuery("upsert_video")
	defer func() { done(err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error("failed to roll back upsert of %s: %v", rec.Path, rbErr)
			}
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO videos (path, name, size, last_modified_time, is_dir, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			size = excluded.size,
			last_modified_time = excluded.last_modified_time,
			is_dir = excluded.is_dir,
			updated_at = excluded.updated_at`,
		rec.Path, rec.Name, rec.Size, rec.LastModifiedTime.UnixNano(), rec.IsDir, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert video %s: %w", rec.Path, err)
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM video_tags WHERE video_path = ?", rec.Path); err != nil {
		return fmt.Errorf("failed to clear tags of %s: %w", rec.Path, err)
	}

	for _, tag := range rec.Tags {
		if _, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO video_tags (video_path, tag) VALUES (?, ?)", rec.Path, tag); err != nil {
			return fmt.Errorf("failed to tag %s with %q: %w", rec.Path, tag, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert of %s: %w", rec.Path, err)
	}
	return nil
}

// DeleteVideo removes the row and tag set stored under path.
func (d *Database) DeleteVideo(ctx context.Context, path string) (err error) {
	done := observeQuery("delete_video")
	defer func() { done(err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error("failed to roll back delete of %s: %v", path, rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM video_tags WHERE video_path = ?", path); err != nil {
		return fmt.Errorf("failed to delete tags of %s: %w", path, err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM videos WHERE path = ?", path); err != nil {
		return fmt.Errorf("failed to delete video %s: %w", path, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of %s: %w", path, err)
	}
	return nil
}

// VideosWithTag returns every record carrying tag, ordered by path.
func (d *Database) VideosWithTag(ctx context.Context, tag string) ([]mediatypes.FileRecord, error) {
	done := observeQuery("videos_with_tag")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	recs, err := d.queryVideos(ctx, `
		SELECT `+videoColumns+`
		FROM videos v
		JOIN video_tags vt ON vt.video_path = v.path
		WHERE vt.tag = ?
		ORDER BY v.path`, tag)
	done(err)
	return recs, err
}

// VideosWithAllTags returns records carrying every tag in tags, ordered by path.
func (d *Database) VideosWithAllTags(ctx context.Context, tags []string) ([]mediatypes.FileRecord, error) {
	if len(tags) == 0 {
		return []mediatypes.FileRecord{}, nil
	}

	done := observeQuery("videos_with_all_tags")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	args := make([]any, 0, len(tags)+1)
	for _, t := range tags {
		args = append(args, t)
	}
	args = append(args, len(tags))

	recs, err := d.queryVideos(ctx, `
		SELECT `+videoColumns+`
		FROM videos v
		JOIN video_tags vt ON vt.video_path = v.path
		WHERE vt.tag IN (`+placeholders(len(tags))+`)
		GROUP BY v.path
		HAVING COUNT(DISTINCT vt.tag) = ?
		ORDER BY v.path`, args...)
	done(err)
	return recs, err
}

// VideoPaths returns every stored path in lexical order.
func (d *Database) VideoPaths(ctx context.Context) ([]string, error) {
	done := observeQuery("video_paths")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT path FROM videos ORDER BY path")
	if err != nil {
		done(err)
		return nil, fmt.Errorf("failed to list video paths: %w", err)
	}
	defer rows.Close()

	paths := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			done(err)
			return nil, fmt.Errorf("failed to scan video path: %w", err)
		}
		paths = append(paths, p)
	}
	err = rows.Err()
	done(err)
	return paths, err
}

// CountVideos returns the number of stored records.
func (d *Database) CountVideos(ctx context.Context) (int, error) {
	done := observeQuery("count_videos")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM videos").Scan(&n)
	done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return n, nil
}

// queryVideos runs query, closes the rows, then attaches tag sets.
// Caller holds d.mu.
func (d *Database) queryVideos(ctx context.Context, query string, args ...any) ([]mediatypes.FileRecord, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}

	recs := []mediatypes.FileRecord{}
	for rows.Next() {
		rec, err := scanVideo(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate videos: %w", err)
	}
	rows.Close()

	if err := d.loadTags(ctx, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// loadTags fills in Tags for recs, preserving insertion order.
func (d *Database) loadTags(ctx context.Context, recs []mediatypes.FileRecord) error {
	if len(recs) == 0 {
		return nil
	}

	index := make(map[string]int, len(recs))
	for i := range recs {
		index[recs[i].Path] = i
		recs[i].Tags = []string{}
	}

	for start := 0; start < len(recs); start += tagLoadBatch {
		end := min(start+tagLoadBatch, len(recs))

		args := make([]any, 0, end-start)
		for _, rec := range recs[start:end] {
			args = append(args, rec.Path)
		}

		rows, err := d.db.QueryContext(ctx,
			"SELECT video_path, tag FROM video_tags WHERE video_path IN ("+placeholders(len(args))+") ORDER BY rowid",
			args...)
		if err != nil {
			return fmt.Errorf("failed to load tags: %w", err)
		}

		for rows.Next() {
			var p, tag string
			if err := rows.Scan(&p, &tag); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan tag: %w", err)
			}
			if i, ok := index[p]; ok {
				recs[i].Tags = append(recs[i].Tags, tag)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("failed to iterate tags: %w", err)
		}
		rows.Close()
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(s scanner) (mediatypes.FileRecord, error) {
	var rec mediatypes.FileRecord
	var modNanos int64
	if err := s.Scan(&rec.Path, &rec.Name, &rec.Size, &modNanos, &rec.IsDir); err != nil {
		return mediatypes.FileRecord{}, err
	}
	rec.LastModifiedTime = time.Unix(0, modNanos)
	return rec, nil
}
