// Package library is the caller-facing API of the video catalog. Front ends
// (the HTTP handlers and tagctl) talk only to [Library].
//
// The library holds no per-caller state: the directory to list, sort order
// and similar choices are passed on each call.
package library
