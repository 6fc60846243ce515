package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType represents the kind of a listing entry.
type FileType string

const (
	// FileTypeFolder represents a directory.
	FileTypeFolder FileType = "folder"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeOther represents anything that is neither.
	FileTypeOther FileType = "other"
)

// SortField specifies which field to sort by.
type SortField string

// SortOrder specifies the direction of sorting.
type SortOrder string

const (
	// SortByName sorts results by name, case-insensitively.
	SortByName SortField = "name"
	// SortByDate sorts results by modification time.
	SortByDate SortField = "date"
	// SortBySize sorts results by size.
	SortBySize SortField = "size"

	// SortAsc sorts in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts in descending order.
	SortDesc SortOrder = "desc"
)

// VideoExtensions maps lowercase file extensions to whether they are videos.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mkv":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".3gp":  true,
	".mpeg": true,
	".mpg":  true,
}

// IsVideo reports whether the file name carries a video extension.
// Leading dots of the base name do not start an extension, so ".mp4" is not a video.
func IsVideo(name string) bool {
	base := strings.TrimLeft(filepath.Base(name), ".")
	return VideoExtensions[strings.ToLower(filepath.Ext(base))]
}

// GetFileType returns the FileType for a directory entry.
func GetFileType(name string, isDir bool) FileType {
	if isDir {
		return FileTypeFolder
	}
	if IsVideo(name) {
		return FileTypeVideo
	}
	return FileTypeOther
}
