// Package ingestion loads catalog data from a blob source and brings the
// vector index up to date.
//
// A Pipeline run has three stages, each exposed on its own so a failed
// stage can be retried without repeating the others:
//   - Stage reads the named blob, or every blob matching a glob pattern
//   - Import bulk-inserts each blob into the catalog; existing ids are
//     counted as duplicates, never treated as failures
//   - Vectorize embeds every item whose vector is missing or stale
//
// Blobs come from a DirSource (a local directory, with doublestar patterns
// such as "movies/**/*.json") or an HTTPSource (any static file server or
// object store endpoint).
package ingestion
