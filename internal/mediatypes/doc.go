// Package mediatypes provides shared type definitions and utilities for video
// file handling across the video tagger.
//
// This package exists as a dependency-free foundation that can be imported by
// the store backends, the catalog and the front ends without creating import
// cycles. It contains the persisted record types, the listing entry type,
// constants, and pure utility functions with no dependencies beyond the
// standard library.
//
// # Video Detection
//
// IsVideo decides from a file name alone whether an entry is a video:
//
//	if mediatypes.IsVideo(entry.Name()) {
//	    // count it
//	}
//
// The allow-list is VideoExtensions; the comparison is on the lowercased
// extension, so "clip.MP4" is a video.
//
// # Records
//
// FileRecord is one tagged video in the catalog, keyed by its normalized
// path. TagRecord is one tag with the number of FileRecords referencing it.
// Entry is a transient directory listing row (folder or video).
//
// # Sorting and Display
//
// SortField and SortOrder name listing sorts; FormatSize and FormatTime render
// sizes and modification times for humans.
package mediatypes
