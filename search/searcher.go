package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/noteseek/core"
	"github.com/poiesic/noteseek/embed"
	"github.com/poiesic/noteseek/storage"
	"github.com/poiesic/noteseek/tokenizer"
)

const (
	// DefaultAlpha is the hybrid weighting constant: the vector cosine
	// contributes alpha, keyword overlap contributes 1-alpha. Tunable
	// policy, not a contract; defaults favor vector similarity.
	DefaultAlpha float32 = 0.7

	// DefaultLimit is the result count used when the caller passes a
	// non-positive limit.
	DefaultLimit = 10
)

// Searcher executes hybrid semantic and keyword queries against the index.
// It is a read-only consumer of the vector and keyword stores and may be
// used concurrently with other readers and with a reindex pass.
type Searcher struct {
	vectors  storage.VectorRepository
	keywords storage.KeywordRepository
	meta     storage.MetaRepository
	embedder embed.Embedder
	alpha    float32
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithAlpha overrides the hybrid weighting constant. Values are clamped
// to [0, 1].
func WithAlpha(alpha float32) Option {
	return func(s *Searcher) error {
		if alpha < 0 {
			alpha = 0
		}
		if alpha > 1 {
			alpha = 1
		}
		s.alpha = alpha
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	vectors storage.VectorRepository,
	keywords storage.KeywordRepository,
	meta storage.MetaRepository,
	embedder embed.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if keywords == nil {
		return nil, ErrKeywordRepositoryRequired
	}
	if meta == nil {
		return nil, ErrMetaRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		vectors:  vectors,
		keywords: keywords,
		meta:     meta,
		embedder: embedder,
		alpha:    DefaultAlpha,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search executes a hybrid query and returns up to limit results, ranked
// by blended score. Results are deterministic for a fixed index: ties
// break on ascending note id.
func (s *Searcher) Search(ctx context.Context, query string, filter core.Filter, limit int) ([]core.SearchResult, error) {
	return s.SearchWithMonitor(ctx, query, filter, limit, nil)
}

// SearchWithMonitor executes a hybrid query with observation hooks.
// The monitor receives callbacks at each stage of the search.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, filter core.Filter, limit int, monitor SearchMonitor) ([]core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	if err := s.checkVersion(ctx); err != nil {
		return nil, err
	}

	monitor.Start(query)

	// The query runs through the identical pipeline as note indexing:
	// same tokenizer rules, same embedding derivation, same dimension.
	tokens := tokenizer.Normalize(query)
	queryVector := s.embedder.EmbedTokens(tokens)
	terms, _ := tokenizer.Frequencies(tokens)

	overlaps, err := s.keywords.MatchTerms(ctx, terms)
	if err != nil {
		s.logger.Error("error matching query terms", "err", err)
		return nil, err
	}
	monitor.AfterKeywordMatch(overlaps)

	var results []core.SearchResult
	scanned := 0
	for record, err := range s.vectors.ScanVectors(ctx) {
		if err != nil {
			s.logger.Error("error scanning vectors", "err", err)
			return nil, err
		}
		scanned++

		// Filters exclude notes before ranking so the limit always
		// counts eligible results.
		if !filter.Matches(record.Type, record.Area, record.Status) {
			continue
		}

		if len(record.Components) != len(queryVector) {
			return nil, fmt.Errorf("stored vector for %q has dimension %d, query has %d: %w",
				record.NoteID, len(record.Components), len(queryVector), storage.ErrDimensionMismatch)
		}

		cosine := embed.Dot(queryVector, record.Components)
		overlap := overlaps[record.NoteID]

		results = append(results, core.SearchResult{
			NoteID: record.NoteID,
			Score:  s.alpha*cosine + (1-s.alpha)*overlap,
			Signal: signalFor(cosine, overlap),
		})
	}
	monitor.AfterVectorScan(scanned)

	rankResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	monitor.Finish(results)

	return results, nil
}

// Related returns the nearest neighbors of an existing note, ranked by
// pure vector similarity against the anchor's stored vector. The anchor
// itself is excluded. Returns storage.ErrNotFound for an unknown note id.
func (s *Searcher) Related(ctx context.Context, noteID string, limit int) ([]core.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if err := s.checkVersion(ctx); err != nil {
		return nil, err
	}

	anchor, err := s.vectors.GetVector(ctx, noteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("note %q: %w", noteID, storage.ErrNotFound)
		}
		s.logger.Error("error loading anchor vector", "noteID", noteID, "err", err)
		return nil, err
	}

	var results []core.SearchResult
	for record, err := range s.vectors.ScanVectors(ctx) {
		if err != nil {
			s.logger.Error("error scanning vectors", "err", err)
			return nil, err
		}
		if record.NoteID == noteID {
			continue
		}

		results = append(results, core.SearchResult{
			NoteID: record.NoteID,
			Score:  embed.Dot(anchor.Components, record.Components),
			Signal: core.SignalVector,
		})
	}

	rankResults(results)
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// checkVersion verifies the stored index version marker against the
// running configuration. An index that has never been built passes (and
// will simply produce no results).
func (s *Searcher) checkVersion(ctx context.Context) error {
	stored, err := s.meta.GetVersion(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	running := core.IndexVersion{
		Dimension:      s.embedder.Dimension(),
		TokenizerRules: tokenizer.RulesVersion,
		Derivation:     embed.DerivationVersion,
	}
	if *stored != running {
		return fmt.Errorf("stored %+v, running %+v: %w", *stored, running, ErrIndexVersionMismatch)
	}
	return nil
}

// rankResults sorts descending by score with a deterministic tie-break on
// ascending note id, so repeated queries on an unchanged index return
// bit-for-bit identical orderings.
func rankResults(results []core.SearchResult) {
	slices.SortFunc(results, func(a, b core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return strings.Compare(a.NoteID, b.NoteID)
	})
}

// signalFor classifies which ranking signals contributed to a hit.
func signalFor(cosine, overlap float32) core.MatchedSignal {
	switch {
	case overlap > 0 && cosine > 0:
		return core.SignalBoth
	case overlap > 0:
		return core.SignalKeyword
	default:
		return core.SignalVector
	}
}
