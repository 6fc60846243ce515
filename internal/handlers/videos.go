package handlers

import (
	"net/http"

	"video-tagger/internal/mediatypes"
	"video-tagger/internal/tagging"
)

// FindVideos returns videos carrying every requested tag. Repeat the tag
// parameter to intersect; no tags yields an empty list.
func (h *Handlers) FindVideos(w http.ResponseWriter, r *http.Request) {
	tags := tagging.NormalizeTags(r.URL.Query()["tag"])

	var (
		records []mediatypes.FileRecord
		err     error
	)
	switch len(tags) {
	case 0:
		writeJSONOK(w, []mediatypes.FileRecord{})
		return
	case 1:
		records, err = h.lib.FindByTag(r.Context(), tags[0])
	default:
		records, err = h.lib.FindByAllTags(r.Context(), tags)
	}
	if err != nil {
		writeError(w, "find videos", err)
		return
	}

	visible := make([]mediatypes.FileRecord, 0, len(records))
	for _, rec := range records {
		if h.allowed(rec.Path) {
			visible = append(visible, rec)
		}
	}

	writeJSONOK(w, visible)
}
