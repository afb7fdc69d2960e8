package storage

import (
	"context"
	"iter"
	"time"

	"github.com/poiesic/noteseek/core"
)

// VectorRepository provides persistent keyed storage for note embeddings.
// Implementations must be thread-safe and support concurrent readers.
type VectorRepository interface {
	// UpsertVector atomically replaces the stored vector for a note.
	// Readers never observe a partially written record. All vectors in a
	// store share one dimension; upserting a record of a different
	// dimension returns ErrDimensionMismatch.
	UpsertVector(ctx context.Context, record *core.VectorRecord) error

	// DeleteVector removes a note's vector. Deleting a missing note is
	// not an error.
	DeleteVector(ctx context.Context, noteID string) error

	// GetVector retrieves the vector record for a note.
	// Returns ErrNotFound if the note has no stored vector.
	GetVector(ctx context.Context, noteID string) (*core.VectorRecord, error)

	// ScanVectors lazily yields every stored vector record. The brute
	// force scan is the chosen query strategy: vault scale keeps a full
	// O(N·D) comparison fast. Each record is yielded from a read
	// transaction, so a concurrent reindex commit is observed entirely
	// or not at all per note.
	ScanVectors(ctx context.Context) iter.Seq2[*core.VectorRecord, error]

	// ContentHashes returns the stored content hash for every indexed
	// note id. Used for staleness detection and tombstoning.
	ContentHashes(ctx context.Context) (map[string]uint64, error)
}

// KeywordRepository maintains the inverted posting structure for keyword
// matching.
type KeywordRepository interface {
	// IndexPostings replaces all postings for a note. Existing entries
	// for the note are removed first, never merged into.
	IndexPostings(ctx context.Context, postings *core.PostingList) error

	// RemovePostings deletes every posting entry for a note. Removing a
	// note without postings is not an error.
	RemovePostings(ctx context.Context, noteID string) error

	// MatchTerms scores stored notes against query term frequencies.
	// The returned overlap score per note is the summed matched-frequency
	// ratio in [0, 1]: the fraction of query term occurrences present in
	// the note's postings. Notes with zero overlap are absent from the
	// result.
	MatchTerms(ctx context.Context, terms map[string]int) (map[string]float32, error)

	// GetPostings retrieves the forward posting list for a note.
	// Returns ErrNotFound if the note has no stored postings.
	GetPostings(ctx context.Context, noteID string) (*core.PostingList, error)
}

// IndexWriter applies note-granular index mutations. Each call commits the
// vector and keyword changes for one note in a single transaction, so
// readers observe either the state before or after the note's update,
// never a mix.
type IndexWriter interface {
	// UpsertNote atomically writes a note's vector record and posting
	// list, replacing any previous state for the note.
	UpsertNote(ctx context.Context, record *core.VectorRecord, postings *core.PostingList) error

	// DeleteNote atomically removes a note's vector record and postings.
	DeleteNote(ctx context.Context, noteID string) error

	// Wipe removes every vector, posting and meta record. Used when the
	// index version marker disagrees with the running configuration and
	// a full rebuild is forced.
	Wipe(ctx context.Context) error
}

// MetaRepository stores index-wide metadata checked on every load.
type MetaRepository interface {
	// GetVersion retrieves the persisted index version marker.
	// Returns ErrNotFound when the index has never been built.
	GetVersion(ctx context.Context) (*core.IndexVersion, error)

	// SetVersion persists the index version marker.
	SetVersion(ctx context.Context, version core.IndexVersion) error

	// GetLastIndexed returns when the last indexing pass committed, or
	// the zero time when the index has never been built.
	GetLastIndexed(ctx context.Context) (time.Time, error)

	// SetLastIndexed records the commit time of an indexing pass.
	SetLastIndexed(ctx context.Context, at time.Time) error
}
