package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"video-tagger/internal/catalog"
	"video-tagger/internal/logging"
	"video-tagger/internal/mediatypes"
	"video-tagger/internal/tagging"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONOK writes v with a 200 status.
func writeJSONOK(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": status})
}

// writeError maps library errors onto HTTP status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrFileNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, mediatypes.ErrRecordNotFound):
		writeJSONError(w, "not found", http.StatusNotFound)
	case errors.Is(err, tagging.ErrIsDirectory):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logging.Warn("%s: %v", op, err)
		writeJSONError(w, "request cancelled", http.StatusServiceUnavailable)
	case catalog.IsStoreError(err):
		logging.Error("%s: %v", op, err)
		writeJSONError(w, "Catalog unavailable", http.StatusServiceUnavailable)
	default:
		logging.Error("%s: %v", op, err)
		writeJSONError(w, "Failed to "+op, http.StatusInternalServerError)
	}
}

// queryLimit parses the limit query parameter. Missing means 0, which the
// library turns into its default.
func queryLimit(r *http.Request) (int, error) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return n, nil
}
