package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ContentHash generates a deterministic 64-bit digest of note text using
// BLAKE2b. Identical text always produces an identical hash, which is what
// staleness detection compares against.
func ContentHash(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Note is an immutable snapshot of a single vault note, produced by the
// external note source. The ID is the vault-relative identifier (typically
// the file stem) and stays stable across content edits.
type Note struct {
	ID          string
	Text        string
	ContentHash uint64
	ModifiedAt  time.Time
	Type        string
	Area        string
	Status      string
	Tags        []string
}

// VectorRecord is the persisted embedding for one note. Components is
// unit-normalized under the L2 norm, or all zeros for empty/stop-worded
// text. ContentHash records the text the vector was derived from; when it
// no longer matches the note's current hash the record is stale.
type VectorRecord struct {
	NoteID      string
	Components  []float32
	ContentHash uint64
	Type        string
	Area        string
	Status      string
	UpdatedAt   time.Time
}

// Stale reports whether the record was derived from different text than the
// given hash.
func (r *VectorRecord) Stale(contentHash uint64) bool {
	return r.ContentHash != contentHash
}

// PostingList holds the per-note term frequencies backing keyword matching.
// A note's postings are fully replaced on reindex, never merged.
type PostingList struct {
	NoteID string
	Terms  map[string]int
	Total  int
}

// MatchedSignal identifies which ranking signals contributed to a result.
type MatchedSignal int

const (
	// SignalVector means only vector similarity matched.
	SignalVector MatchedSignal = iota + 1
	// SignalKeyword means only keyword overlap matched.
	SignalKeyword
	// SignalBoth means both signals contributed.
	SignalBoth
)

func (s MatchedSignal) String() string {
	switch s {
	case SignalVector:
		return "vector"
	case SignalKeyword:
		return "keyword"
	case SignalBoth:
		return "both"
	default:
		return "unknown"
	}
}

// SearchResult is a single ranked hit. Higher scores are more relevant.
type SearchResult struct {
	NoteID string
	Score  float32
	Signal MatchedSignal
}

// Filter restricts search results by frontmatter fields. An empty field
// places no constraint. Filters are applied before ranking so that the
// result limit always counts eligible notes only.
type Filter struct {
	Type   string
	Area   string
	Status string
}

// IsZero reports whether the filter places no constraints.
func (f Filter) IsZero() bool {
	return f.Type == "" && f.Area == "" && f.Status == ""
}

// Matches reports whether a note with the given fields passes the filter.
func (f Filter) Matches(noteType, area, status string) bool {
	if f.Type != "" && f.Type != noteType {
		return false
	}
	if f.Area != "" && f.Area != area {
		return false
	}
	if f.Status != "" && f.Status != status {
		return false
	}
	return true
}

// IndexVersion is the version marker persisted alongside the index. A
// mismatch with the running configuration invalidates every stored vector
// and posting list and forces a full rebuild.
type IndexVersion struct {
	Dimension      int
	TokenizerRules int
	Derivation     int
}

// ReindexSummary reports the outcome of one indexing pass.
type ReindexSummary struct {
	Updated     int
	Deleted     int
	Unchanged   int
	FailedIDs   []string
	FullRebuild bool
	Duration    time.Duration
}
