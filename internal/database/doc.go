// Package database is the SQLite catalog backend.
//
// It stores video records, their tags (as a junction table) and tag usage
// counts. The schema is managed by goose migrations embedded in the binary.
// Connections register a casefold SQL function so tag search can match
// case-insensitively with full Unicode folding.
//
// The database uses WAL mode for improved concurrent read performance.
package database
