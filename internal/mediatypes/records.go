package mediatypes

import (
	"errors"
	"time"
)

// ErrRecordNotFound is returned by store lookups when no record exists for the key.
var ErrRecordNotFound = errors.New("record not found")

// FileRecord is one tracked video in the catalog.
type FileRecord struct {
	Path             string    `json:"path"`
	Name             string    `json:"name"`
	Size             int64     `json:"size"`
	LastModifiedTime time.Time `json:"lastModifiedTime"`
	IsDir            bool      `json:"isDir"`
	Tags             []string  `json:"tags"`
}

// HasTag reports whether the record carries tag.
func (r *FileRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAllTags reports whether the record carries every tag in tags.
func (r *FileRecord) HasAllTags(tags []string) bool {
	for _, t := range tags {
		if !r.HasTag(t) {
			return false
		}
	}
	return true
}

// TagRecord is a tag and the number of FileRecords referencing it.
type TagRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Entry is a row of a directory listing. Folders carry aggregate values:
// Size is the total video bytes beneath them and ModTime the latest video
// modification time. Videos carry their own stat values and catalog tags.
type Entry struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Type    FileType  `json:"type"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	Tags    []string  `json:"tags"`
}

// IsDir reports whether the entry is a folder.
func (e Entry) IsDir() bool {
	return e.Type == FileTypeFolder
}
