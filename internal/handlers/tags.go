package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"video-tagger/internal/mediatypes"
	"video-tagger/internal/tagging"
)

// FileTagsResponse is returned after a file's tags change.
type FileTagsResponse struct {
	Path string   `json:"path"`
	Tags []string `json:"tags"`
}

// filePath reads and checks the path query parameter. It writes the error
// response and returns false when the request cannot proceed.
func (h *Handlers) filePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return "", false
	}
	if !h.allowed(path) {
		writeJSONError(w, "path is outside the media roots", http.StatusForbidden)
		return "", false
	}
	return path, true
}

// GetFileTags returns the tags of one file, empty when untagged.
func (h *Handlers) GetFileTags(w http.ResponseWriter, r *http.Request) {
	path, ok := h.filePath(w, r)
	if !ok {
		return
	}

	tags, err := h.lib.GetTagsForFile(r.Context(), path)
	if err != nil {
		writeError(w, "get tags", err)
		return
	}

	writeJSONOK(w, tags)
}

// SetFileTags appends to or replaces the tags of a file.
func (h *Handlers) SetFileTags(w http.ResponseWriter, r *http.Request) {
	var req SetTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSONError(w, validationMessage(err), http.StatusBadRequest)
		return
	}
	if !h.allowed(req.Path) {
		writeJSONError(w, "path is outside the media roots", http.StatusForbidden)
		return
	}

	mode, err := tagging.ParseMode(req.Mode)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tags := tagging.NormalizeTags(append(req.Tags, tagging.ParseTagList(req.TagList)...))
	for _, tag := range tags {
		if len(tag) > maxTagLength {
			writeJSONError(w, "tag exceeds maximum length", http.StatusBadRequest)
			return
		}
	}

	final, err := h.lib.AddOrUpdateTags(r.Context(), req.Path, tags, mode)
	if err != nil {
		writeError(w, "set tags", err)
		return
	}

	writeJSONOK(w, FileTagsResponse{Path: req.Path, Tags: final})
}

// RemoveFileTags removes every tag from a file.
func (h *Handlers) RemoveFileTags(w http.ResponseWriter, r *http.Request) {
	path, ok := h.filePath(w, r)
	if !ok {
		return
	}

	if err := h.lib.RemoveAllTags(r.Context(), path); err != nil {
		writeError(w, "remove tags", err)
		return
	}

	writeJSONStatus(w, "ok")
}

// GetTag returns one tag and its usage count.
func (h *Handlers) GetTag(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" {
		writeJSONError(w, "Tag name is required", http.StatusBadRequest)
		return
	}

	rec, err := h.lib.GetTag(r.Context(), name)
	if err != nil {
		writeError(w, "get tag", err)
		return
	}

	writeJSONOK(w, rec)
}

// TopTags returns the most used tags.
func (h *Handlers) TopTags(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tags, err := h.lib.TopTags(r.Context(), limit)
	if err != nil {
		writeError(w, "get top tags", err)
		return
	}
	if tags == nil {
		tags = []mediatypes.TagRecord{}
	}

	writeJSONOK(w, tags)
}

// SuggestTags returns tag names matching q, prefix matches first.
func (h *Handlers) SuggestTags(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	names, err := h.lib.SearchSimilarTags(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		writeError(w, "suggest tags", err)
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSONOK(w, names)
}
