package aggregator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"video-tagger/internal/filesystem"
	"video-tagger/internal/logging"
	"video-tagger/internal/mediatypes"
)

// TagSource supplies catalog tags for listed videos.
type TagSource interface {
	GetTags(ctx context.Context, path string) ([]string, error)
}

// ListDirectory returns the video-bearing folders and video files directly
// inside dir, in name order. Folders appear only when their tree holds at
// least one byte of video. Other files are left out. Filesystem errors are
// logged and skipped; tag lookup failures are returned.
func (a *Aggregator) ListDirectory(ctx context.Context, dir string, tags TagSource) ([]mediatypes.Entry, error) {
	dir = filesystem.Normalize(dir)

	children, err := a.fs.ReadDir(dir)
	if err != nil {
		a.skip(dir, err)
		return []mediatypes.Entry{}, nil
	}

	slots := make([]*mediatypes.Entry, len(children))
	chain := a.lineage(dir)

	g, gctx := errgroup.WithContext(ctx)
	if a.workers > 0 {
		g.SetLimit(a.workers)
	} else {
		g.SetLimit(1)
	}

	for i, child := range children {
		p := filesystem.Join(dir, child.Name())
		info, descend, ok := a.resolve(p, child)
		if !ok {
			continue
		}

		if descend {
			sub, ok := a.descent(chain, p, child)
			if !ok {
				continue
			}
			g.Go(func() error {
				res := a.aggregate(gctx, p, sub)
				if res.Size > 0 {
					slots[i] = &mediatypes.Entry{
						Name:    child.Name(),
						Path:    p,
						Type:    mediatypes.GetFileType(child.Name(), true),
						Size:    res.Size,
						ModTime: res.ModTime,
					}
				}
				return nil
			})
			continue
		}

		if info.IsDir() || !mediatypes.IsVideo(child.Name()) {
			continue
		}

		g.Go(func() error {
			entry, err := a.videoEntry(gctx, p, child.Name(), tags)
			if err != nil {
				return err
			}
			slots[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make([]mediatypes.Entry, 0, len(slots))
	for _, e := range slots {
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

// videoEntry stats the file directly and joins its catalog tags.
func (a *Aggregator) videoEntry(ctx context.Context, p, name string, tags TagSource) (*mediatypes.Entry, error) {
	info, err := a.fs.Stat(p)
	if err != nil {
		a.skip(p, err)
		return nil, nil
	}

	var fileTags []string
	if tags != nil {
		fileTags, err = tags.GetTags(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to load tags for %s: %w", p, err)
		}
	}
	if fileTags == nil {
		fileTags = []string{}
	}

	logging.Debug("Listed video %s (%d bytes, %d tags)", p, info.Size(), len(fileTags))
	return &mediatypes.Entry{
		Name:    name,
		Path:    p,
		Type:    mediatypes.GetFileType(name, false),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Tags:    fileTags,
	}, nil
}
