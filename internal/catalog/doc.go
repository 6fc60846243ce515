// Package catalog implements the path-keyed video catalog and the tag usage
// index on top of a pluggable persistent store.
//
// [Catalog] owns the store-independent rules: keys are normalized with
// filesystem.Normalize, tag queries drop records whose file no longer exists
// on disk (without deleting them), and an empty tag set matches nothing.
// [TagIndex] keeps per-tag usage counts, evicts a tag the moment its count
// reaches zero, and answers top-N and two-phase similarity queries.
//
// Backends implement [Store]; see internal/database (SQLite) and
// internal/boltstore (bbolt). Backend failures are wrapped in [StoreError]
// and returned unchanged otherwise.
package catalog
