package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/noteseek/core"
	"github.com/poiesic/noteseek/embed"
	"github.com/poiesic/noteseek/storage"
	"github.com/poiesic/noteseek/tokenizer"
	"github.com/poiesic/noteseek/vault"
)

const (
	// DefaultLockAttempts bounds how often lock acquisition is retried
	// before giving up with ErrWriteLockHeld.
	DefaultLockAttempts = 5

	// DefaultLockDelay is the base backoff delay between lock attempts.
	DefaultLockDelay = 200 * time.Millisecond

	// DefaultReportInterval is how often progress is reported (notes).
	DefaultReportInterval = 100
)

// Indexer runs incremental reindex passes over a note source. Embedding
// and tokenization fan out across a worker pool; writes are note-granular
// so readers never observe a half-updated note.
type Indexer struct {
	writer       storage.IndexWriter
	vectors      storage.VectorRepository
	meta         storage.MetaRepository
	embedder     embed.Embedder
	pool         *ants.Pool
	lockPath     string
	lockAttempts int
	lockDelay    time.Duration
	progress     io.Writer
	interval     int
	logger       *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}

		if ix.pool != nil {
			ix.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ix.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// WithLockPath enables a cross-process write lock at the given file path.
// Without it, single-writer discipline is the caller's responsibility.
func WithLockPath(path string) Option {
	return func(ix *Indexer) error {
		ix.lockPath = path
		return nil
	}
}

// WithLockRetry overrides the lock acquisition retry budget.
func WithLockRetry(attempts int, baseDelay time.Duration) Option {
	return func(ix *Indexer) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		ix.lockAttempts = attempts
		ix.lockDelay = baseDelay
		return nil
	}
}

// WithProgress sets where progress output is written (typically
// os.Stderr). Default is to discard it.
func WithProgress(w io.Writer) Option {
	return func(ix *Indexer) error {
		if w == nil {
			w = io.Discard
		}
		ix.progress = w
		return nil
	}
}

// NewIndexer creates a new indexer.
func NewIndexer(
	writer storage.IndexWriter,
	vectors storage.VectorRepository,
	meta storage.MetaRepository,
	embedder embed.Embedder,
	opts ...Option,
) (*Indexer, error) {
	if writer == nil {
		return nil, ErrWriterRequired
	}
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if meta == nil {
		return nil, ErrMetaRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		writer:       writer,
		vectors:      vectors,
		meta:         meta,
		embedder:     embedder,
		pool:         pool,
		lockAttempts: DefaultLockAttempts,
		lockDelay:    DefaultLockDelay,
		progress:     io.Discard,
		interval:     DefaultReportInterval,
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			ix.Release()
			return nil, err
		}
	}

	return ix, nil
}

// Release releases the worker pool.
// The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}

// Reindex runs one incremental pass: embeds new and changed notes, leaves
// unchanged notes untouched, and tombstones notes that disappeared from
// the source. A stored version marker that disagrees with the running
// configuration forces a full rebuild first.
//
// Per-note read failures are collected in the summary's FailedIDs and do
// not abort the pass; the stored state of a failed note is retained.
// Store write failures abort the pass.
func (ix *Indexer) Reindex(ctx context.Context, source vault.Source) (*core.ReindexSummary, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	start := time.Now()

	release, err := ix.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	summary := &core.ReindexSummary{}

	summary.FullRebuild, err = ix.ensureVersion(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := ix.vectors.ContentHashes(ctx)
	if err != nil {
		return nil, err
	}

	// Collect the snapshot up front so the total is known and tombstoning
	// sees a complete picture of what survived.
	var stale []core.Note
	retained := make(map[string]bool)
	for note, err := range source.Notes(ctx) {
		if err != nil {
			// An unattributable failure means the snapshot itself is
			// suspect; tombstoning against it would delete live notes.
			if note.ID == "" {
				return nil, fmt.Errorf("reading note source: %w", err)
			}
			ix.logger.Warn("skipping unreadable note", "noteID", note.ID, "err", err)
			summary.FailedIDs = append(summary.FailedIDs, note.ID)
			retained[note.ID] = true
			continue
		}
		if err := core.ValidateNote(&note); err != nil {
			if note.ID == "" {
				return nil, err
			}
			ix.logger.Warn("skipping invalid note", "noteID", note.ID, "err", err)
			summary.FailedIDs = append(summary.FailedIDs, note.ID)
			retained[note.ID] = true
			continue
		}
		if note.ContentHash == 0 {
			note.ContentHash = core.ContentHash(note.Text)
		}

		retained[note.ID] = true
		if hash, ok := stored[note.ID]; ok && hash == note.ContentHash {
			summary.Unchanged++
			continue
		}
		stale = append(stale, note)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err := ix.indexStale(ctx, stale); err != nil {
		return nil, err
	}
	summary.Updated = len(stale)

	// Tombstone stored notes absent from the snapshot, in sorted order.
	for _, id := range slices.Sorted(maps.Keys(stored)) {
		if retained[id] {
			continue
		}
		if err := ix.writer.DeleteNote(ctx, id); err != nil {
			return nil, fmt.Errorf("tombstoning note %q: %w", id, err)
		}
		summary.Deleted++
	}

	if err := ix.meta.SetLastIndexed(ctx, time.Now().UTC()); err != nil {
		return nil, err
	}

	slices.Sort(summary.FailedIDs)
	summary.Duration = time.Since(start)

	ix.logger.Info("reindex complete",
		"updated", summary.Updated,
		"deleted", summary.Deleted,
		"unchanged", summary.Unchanged,
		"failed", len(summary.FailedIDs),
		"fullRebuild", summary.FullRebuild,
		"duration", summary.Duration)

	return summary, nil
}

// indexStale fans the changed notes out across the worker pool. Embedding
// is pure CPU work; each result is committed in its own transaction, so a
// failure leaves previously committed notes intact.
func (ix *Indexer) indexStale(ctx context.Context, stale []core.Note) error {
	if len(stale) == 0 {
		return nil
	}

	tracker := NewProgressTracker(ix.progress, len(stale), ix.interval)
	tracker.Start()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, note := range stale {
		wg.Add(1)
		if err := ix.pool.Submit(func() {
			defer wg.Done()
			if err := ix.indexNote(ctx, note); err != nil {
				fail(err)
				return
			}
			tracker.Increment(1)
		}); err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	tracker.Finish()
	return nil
}

// indexNote embeds one note and commits its vector and postings together.
func (ix *Indexer) indexNote(ctx context.Context, note core.Note) error {
	tokens := tokenizer.Normalize(note.Text)
	terms, total := tokenizer.Frequencies(tokens)

	record := &core.VectorRecord{
		NoteID:      note.ID,
		Components:  ix.embedder.EmbedTokens(tokens),
		ContentHash: note.ContentHash,
		Type:        note.Type,
		Area:        note.Area,
		Status:      note.Status,
		UpdatedAt:   time.Now().UTC(),
	}
	postings := &core.PostingList{
		NoteID: note.ID,
		Terms:  terms,
		Total:  total,
	}

	if err := ix.writer.UpsertNote(ctx, record, postings); err != nil {
		return fmt.Errorf("indexing note %q: %w", note.ID, err)
	}
	return nil
}

// ensureVersion compares the stored index version marker against the
// running configuration. On mismatch both stores are wiped and the new
// marker persisted; the return value reports whether that happened.
func (ix *Indexer) ensureVersion(ctx context.Context) (bool, error) {
	running := core.IndexVersion{
		Dimension:      ix.embedder.Dimension(),
		TokenizerRules: tokenizer.RulesVersion,
		Derivation:     embed.DerivationVersion,
	}

	stored, err := ix.meta.GetVersion(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return false, err
		}
		// Fresh store.
		return false, ix.meta.SetVersion(ctx, running)
	}
	if *stored == running {
		return false, nil
	}

	ix.logger.Info("index version changed, forcing full rebuild",
		"stored", *stored, "running", running)
	if err := ix.writer.Wipe(ctx); err != nil {
		return false, fmt.Errorf("wiping outdated index: %w", err)
	}
	if err := ix.meta.SetVersion(ctx, running); err != nil {
		return false, err
	}
	return true, nil
}

// acquireLock takes the cross-process write lock, retrying with backoff
// while another process holds it. The returned release func is always safe
// to call.
func (ix *Indexer) acquireLock(ctx context.Context) (func(), error) {
	if ix.lockPath == "" {
		return func() {}, nil
	}

	lock := flock.New(ix.lockPath)
	err := RetryWithBackoff(ctx, func() error {
		ok, err := lock.TryLock()
		if err != nil {
			return err
		}
		if !ok {
			return ErrWriteLockHeld
		}
		return nil
	}, ix.lockAttempts, ix.lockDelay)
	if err != nil {
		return nil, err
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			ix.logger.Error("error releasing index lock", "path", ix.lockPath, "err", err)
		}
	}, nil
}
