// Package handlers provides the HTTP API of the video tagger.
//
// It includes handlers for:
//   - Directory listings with folder aggregates and file tags
//   - Tagging, untagging and reading the tags of a file
//   - Finding videos by one or several tags
//   - Popular tags and tag suggestions
//   - Stale record pruning
//   - Health, version and Prometheus metrics
//
// Paths outside the configured media roots are rejected with 403.
package handlers
