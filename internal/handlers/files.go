package handlers

import (
	"net/http"

	"video-tagger/internal/library"
)

// ListFiles returns the video folders and video files directly inside path.
func (h *Handlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return
	}
	if !h.allowed(path) {
		writeJSONError(w, "path is outside the media roots", http.StatusForbidden)
		return
	}

	field, order, err := library.ParseSort(q.Get("sort"), q.Get("order"))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.lib.ListDirectory(r.Context(), path)
	if err != nil {
		writeError(w, "list directory", err)
		return
	}

	library.SortEntries(entries, field, order)
	writeJSONOK(w, entries)
}
