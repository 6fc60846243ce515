package handlers

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"video-tagger/internal/filesystem"
	"video-tagger/internal/library"
)

// Handlers serves the HTTP API over a Library.
type Handlers struct {
	lib      *library.Library
	roots    *filesystem.VolumeResolver
	validate *validator.Validate
	started  time.Time
}

// New creates Handlers. A nil or empty roots resolver allows every path.
func New(lib *library.Library, roots *filesystem.VolumeResolver) *Handlers {
	return &Handlers{
		lib:      lib,
		roots:    roots,
		validate: newValidator(),
		started:  time.Now(),
	}
}

// RegisterRoutes adds the API, health and version routes to r. The metrics
// route is added only when metricsEnabled is set.
func (h *Handlers) RegisterRoutes(r *mux.Router, metricsEnabled bool) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/files", h.ListFiles).Methods(http.MethodGet).Name("listFiles")
	api.HandleFunc("/videos", h.FindVideos).Methods(http.MethodGet).Name("findVideos")

	api.HandleFunc("/tags/file", h.GetFileTags).Methods(http.MethodGet).Name("getFileTags")
	api.HandleFunc("/tags/file", h.SetFileTags).Methods(http.MethodPost).Name("setFileTags")
	api.HandleFunc("/tags/file", h.RemoveFileTags).Methods(http.MethodDelete).Name("removeFileTags")
	api.HandleFunc("/tags/top", h.TopTags).Methods(http.MethodGet).Name("topTags")
	api.HandleFunc("/tags/suggest", h.SuggestTags).Methods(http.MethodGet).Name("suggestTags")
	api.HandleFunc("/tag/{name}", h.GetTag).Methods(http.MethodGet).Name("getTag")

	api.HandleFunc("/maintenance/prune", h.Prune).Methods(http.MethodPost).Name("prune")

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet).Name("health")
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead).Name("livez")
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet).Name("version")

	if metricsEnabled {
		r.Handle("/metrics", h.MetricsHandler()).Methods(http.MethodGet).Name("metrics")
	}
}

// allowed reports whether p lies under a configured media root.
func (h *Handlers) allowed(p string) bool {
	return h.roots.Contains(p)
}
