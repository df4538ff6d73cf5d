// Package catalog keeps the base catalog records and their vector records
// consistent.
//
// Every vector record shares its item's ID and carries a SourceHash of the
// text it was embedded from, so a vector can always be checked against the
// current payload. UpsertItem writes the base record and then its vector;
// DeleteItem removes both in one transaction; ImportBulk loads raw JSON
// without embedding; VectorizeAll backfills vectors with a bounded worker
// pool; Reconcile drops vector records left behind by earlier failures.
package catalog
