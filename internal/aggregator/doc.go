// Package aggregator computes per-directory video totals and builds the
// video-only directory listing.
//
// A directory's aggregate is the total size of every video file beneath it
// and the latest modification time folded up from its subtree. A directory
// whose subtree supplies no time contributes its own modification time.
// Entries that cannot be read are logged and skipped; they never fail the walk.
//
// Symlinks are followed. A symlinked directory that resolves to one of the
// directories being walked above it is not descended, so link cycles end.
//
// With Workers > 0 subtrees are aggregated concurrently. A subtree is handed
// to a new goroutine only when a semaphore slot is free; otherwise it is
// walked inline, so recursion never blocks waiting for a slot.
package aggregator
