package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"video-tagger/internal/logging"
	"video-tagger/internal/mediatypes"
)

const tagOrder = "ORDER BY count DESC, name ASC"

// IncrementTag creates name with count 1 or adds one to its count.
func (d *Database) IncrementTag(ctx context.Context, name string) error {
	done := observeQuery("increment_tag")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO tags (name, count) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET count = count + 1`, name)
	done(err)
	if err != nil {
		return fmt.Errorf("failed to increment tag %q: %w", name, err)
	}
	return nil
}

// DecrementTag subtracts one from name's count and deletes it at zero or below.
func (d *Database) DecrementTag(ctx context.Context, name string) (evicted bool, err error) {
	done := observeQuery("decrement_tag")
	defer func() { done(err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error("failed to roll back decrement of %q: %v", name, rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, "UPDATE tags SET count = count - 1 WHERE name = ?", name); err != nil {
		return false, fmt.Errorf("failed to decrement tag %q: %w", name, err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE name = ? AND count <= 0", name)
	if err != nil {
		return false, fmt.Errorf("failed to evict tag %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to evict tag %q: %w", name, err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit decrement of %q: %w", name, err)
	}
	return n > 0, nil
}

// GetTag returns the record for name.
func (d *Database) GetTag(ctx context.Context, name string) (mediatypes.TagRecord, error) {
	done := observeQuery("get_tag")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec mediatypes.TagRecord
	err := d.db.QueryRowContext(ctx, "SELECT name, count FROM tags WHERE name = ?", name).
		Scan(&rec.Name, &rec.Count)
	if errors.Is(err, sql.ErrNoRows) {
		done(nil)
		return mediatypes.TagRecord{}, mediatypes.ErrRecordNotFound
	}
	done(err)
	if err != nil {
		return mediatypes.TagRecord{}, fmt.Errorf("failed to get tag %q: %w", name, err)
	}
	return rec, nil
}

// TopTags returns up to limit tags by count descending, ties by name.
func (d *Database) TopTags(ctx context.Context, limit int) ([]mediatypes.TagRecord, error) {
	done := observeQuery("top_tags")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	recs, err := d.queryTags(ctx, "SELECT name, count FROM tags "+tagOrder+" LIMIT ?", sqlLimit(limit))
	done(err)
	return recs, err
}

// TagsWithPrefix returns tags whose case-folded name starts with the folded
// prefix.
func (d *Database) TagsWithPrefix(ctx context.Context, prefix string, limit int) ([]mediatypes.TagRecord, error) {
	done := observeQuery("tags_with_prefix")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	recs, err := d.queryTags(ctx,
		"SELECT name, count FROM tags WHERE instr(casefold(name), ?) = 1 "+tagOrder+" LIMIT ?",
		mediatypes.FoldTag(prefix), sqlLimit(limit))
	done(err)
	return recs, err
}

// TagsContaining returns tags whose case-folded name contains the folded
// substring, skipping names listed in exclude.
func (d *Database) TagsContaining(ctx context.Context, substr string, exclude []string, limit int) ([]mediatypes.TagRecord, error) {
	done := observeQuery("tags_containing")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := "SELECT name, count FROM tags WHERE instr(casefold(name), ?) > 0"
	args := []any{mediatypes.FoldTag(substr)}
	if len(exclude) > 0 {
		query += " AND name NOT IN (" + placeholders(len(exclude)) + ")"
		for _, e := range exclude {
			args = append(args, e)
		}
	}
	query += " " + tagOrder + " LIMIT ?"
	args = append(args, sqlLimit(limit))

	recs, err := d.queryTags(ctx, query, args...)
	done(err)
	return recs, err
}

// CountTags returns the number of live tags.
func (d *Database) CountTags(ctx context.Context) (int, error) {
	done := observeQuery("count_tags")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&n)
	done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return n, nil
}

func (d *Database) queryTags(ctx context.Context, query string, args ...any) ([]mediatypes.TagRecord, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	recs := []mediatypes.TagRecord{}
	for rows.Next() {
		var rec mediatypes.TagRecord
		if err := rows.Scan(&rec.Name, &rec.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return recs, nil
}
