// Package boltstore is an embedded key-value catalog backend built on bbolt.
//
// Buckets:
//
//	videos      normalized path -> JSON video document
//	tags        tag name        -> JSON {name, count}
//	video_tags  tag + 0x00 + path -> empty (secondary index for tag lookups)
//
// Every operation runs in a single bbolt transaction, so each write to a
// video document (including its index entries) or a tag count is atomic.
package boltstore
