package handlers

import (
	"net/http"
)

// Prune removes catalog records whose files no longer exist.
func (h *Handlers) Prune(w http.ResponseWriter, r *http.Request) {
	report, err := h.lib.PruneStale(r.Context())
	if err != nil {
		writeError(w, "prune catalog", err)
		return
	}

	writeJSONOK(w, report)
}
