// Package indexer keeps the persistent search index in sync with a note
// source.
//
// A reindex pass is incremental: content hashes decide which notes are
// embedded again, notes missing from the source are tombstoned, and a
// stored version marker that no longer matches the running embedding or
// tokenizer configuration forces a full rebuild. Passes are guarded by an
// optional cross-process file lock, embed across a worker pool, and report
// progress with retry support for lock acquisition.
package indexer
