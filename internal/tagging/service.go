package tagging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"video-tagger/internal/catalog"
	"video-tagger/internal/filesystem"
	"video-tagger/internal/logging"
	"video-tagger/internal/mediatypes"
	"video-tagger/internal/metrics"
)

// ErrIsDirectory is returned when asked to tag a directory.
var ErrIsDirectory = errors.New("cannot tag a directory")

// Mode selects how new tags combine with a file's existing tags.
type Mode int

const (
	// Append unions the new tags into the existing set.
	Append Mode = iota
	// Replace makes the new tags the whole set.
	Replace
)

func (m Mode) String() string {
	switch m {
	case Append:
		return "append"
	case Replace:
		return "replace"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "append" or "replace", case-insensitively. Empty means Append.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "append":
		return Append, nil
	case "replace":
		return Replace, nil
	default:
		return Append, fmt.Errorf("unknown tagging mode %q", s)
	}
}

// Service coordinates the catalog and the tag index.
type Service struct {
	catalog *catalog.Catalog
	tags    *catalog.TagIndex
	fs      *filesystem.FS
}

// NewService creates a tagging service.
func NewService(cat *catalog.Catalog, tags *catalog.TagIndex, fs *filesystem.FS) *Service {
	return &Service{catalog: cat, tags: tags, fs: fs}
}

// AddOrUpdateTags sets the tags of the file at path according to mode and
// returns the resulting tag set. The file must exist on disk. If the
// resulting set is empty the record is removed as by RemoveAllTags.
func (s *Service) AddOrUpdateTags(ctx context.Context, path string, newTags []string, mode Mode) (result []string, err error) {
	defer func() { recordMutation(mode.String(), err) }()

	path = filesystem.Normalize(path)
	newTags = NormalizeTags(newTags)

	info, err := s.fs.Stat(path)
	if err != nil {
		if filesystem.IsNotExist(err) {
			return nil, &catalog.NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	existing, err := s.catalog.GetTags(ctx, path)
	if err != nil {
		return nil, err
	}
	existingSet := toSet(existing)
	newSet := toSet(newTags)

	var final []string
	switch mode {
	case Append:
		final = NormalizeTags(append(append([]string{}, existing...), newTags...))
	case Replace:
		final = newTags
	default:
		return nil, fmt.Errorf("unknown tagging mode %v", mode)
	}

	if len(final) == 0 {
		return []string{}, s.removeAll(ctx, path, existing)
	}

	rec := mediatypes.FileRecord{
		Path:             path,
		Name:             filesystem.Base(path),
		Size:             info.Size(),
		LastModifiedTime: info.ModTime(),
		Tags:             final,
	}
	if err := s.catalog.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	for _, t := range newTags {
		if _, ok := existingSet[t]; ok {
			continue
		}
		if err := s.tags.Increment(ctx, t); err != nil {
			return nil, err
		}
	}

	if mode == Replace {
		for _, t := range existing {
			if _, ok := newSet[t]; ok {
				continue
			}
			if err := s.tags.Decrement(ctx, t); err != nil {
				return nil, err
			}
		}
	}

	logging.Debug("Tagged %s (%s): %v", path, mode, final)
	return final, nil
}

// RemoveAllTags decrements every tag of path and deletes its record. A path
// with no record is a no-op. The file need not exist on disk.
func (s *Service) RemoveAllTags(ctx context.Context, path string) (err error) {
	defer func() { recordMutation("remove", err) }()

	path = filesystem.Normalize(path)

	rec, err := s.catalog.Get(ctx, path)
	if errors.Is(err, mediatypes.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.removeAll(ctx, path, rec.Tags)
}

func (s *Service) removeAll(ctx context.Context, path string, tags []string) error {
	for _, t := range tags {
		if err := s.tags.Decrement(ctx, t); err != nil {
			return err
		}
	}
	if err := s.catalog.Delete(ctx, path); err != nil {
		return err
	}
	logging.Debug("Removed all tags from %s", path)
	return nil
}

// GetTagsForFile returns the tags of path, empty if it was never tagged.
func (s *Service) GetTagsForFile(ctx context.Context, path string) ([]string, error) {
	return s.catalog.GetTags(ctx, path)
}

func recordMutation(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.TagMutationsTotal.WithLabelValues(op, status).Inc()
}
