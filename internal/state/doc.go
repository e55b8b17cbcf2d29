// Package state holds the raw collections fetched for each list screen.
//
// The loader and the background poller write results with Update; the UI
// reads them with Snapshot and derives its filtered view on every render.
// Snapshots are deep copies, so a rendered view never shares maps with the
// store.
//
// A failed fetch keeps the previous items and records the error, so transient
// network or server failures leave the last good rows on screen with a retry
// hint. Generation increases on every successful fetch and lets callers tell
// a fresh result from a stale one.
//
// The zero Store is ready to use.
package state
