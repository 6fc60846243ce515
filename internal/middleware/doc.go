// Package middleware provides HTTP middleware for the video tagger API.
//
// It includes:
//   - Access logging through the application logger
//   - Prometheus request metrics labelled by route template
//   - gzip compression of large JSON responses
package middleware
