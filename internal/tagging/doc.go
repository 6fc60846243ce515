// Package tagging attaches and removes tags on video files while keeping the
// tag usage index in step with the catalog.
//
// Each call is a sequence of single-record writes: the file record is written
// first, then tag counts are adjusted. The sequence is not wrapped in a
// transaction; a crash between steps can leave counts off until the file is
// tagged or untagged again.
package tagging
