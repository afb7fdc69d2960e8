package indexer

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/poiesic/noteseek/core"
	"github.com/poiesic/noteseek/embed"
	"github.com/poiesic/noteseek/storage"
	"github.com/poiesic/noteseek/storage/badger"
	"github.com/poiesic/noteseek/tokenizer"
	"github.com/poiesic/noteseek/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	vectors  storage.VectorRepository
	keywords storage.KeywordRepository
	meta     storage.MetaRepository
	backend  *badger.Backend
	indexer  *Indexer
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	vectors, keywords, meta, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	ix, err := NewIndexer(backend, vectors, meta, embed.NewHarmonic(), opts...)
	require.NoError(t, err)
	t.Cleanup(ix.Release)

	return &testEnv{
		vectors:  vectors,
		keywords: keywords,
		meta:     meta,
		backend:  backend,
		indexer:  ix,
	}
}

func notesFixture() []core.Note {
	return []core.Note{
		{ID: "note-a", Text: "rust ownership and borrowing rules"},
		{ID: "note-b", Text: "memory safety in rust programs"},
		{ID: "note-c", Text: "baking sourdough bread at home"},
	}
}

func TestNewIndexer(t *testing.T) {
	vectors, _, meta, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	embedder := embed.NewHarmonic()

	t.Run("valid configuration", func(t *testing.T) {
		ix, err := NewIndexer(backend, vectors, meta, embedder)
		require.NoError(t, err)
		assert.NotNil(t, ix)
		ix.Release()
	})

	t.Run("nil writer", func(t *testing.T) {
		_, err := NewIndexer(nil, vectors, meta, embedder)
		assert.Equal(t, ErrWriterRequired, err)
	})

	t.Run("nil vector repository", func(t *testing.T) {
		_, err := NewIndexer(backend, nil, meta, embedder)
		assert.Equal(t, ErrVectorRepositoryRequired, err)
	})

	t.Run("nil meta repository", func(t *testing.T) {
		_, err := NewIndexer(backend, vectors, nil, embedder)
		assert.Equal(t, ErrMetaRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewIndexer(backend, vectors, meta, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("invalid lock retry", func(t *testing.T) {
		_, err := NewIndexer(backend, vectors, meta, embedder, WithLockRetry(0, time.Millisecond))
		assert.Equal(t, ErrInvalidMaxAttempts, err)
	})
}

func TestReindex_NilSource(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.indexer.Reindex(context.Background(), nil)
	assert.Equal(t, ErrSourceRequired, err)
}

func TestReindex_FreshIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	summary, err := env.indexer.Reindex(ctx, vault.NewStaticSource(notesFixture()))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Updated)
	assert.Zero(t, summary.Unchanged)
	assert.Zero(t, summary.Deleted)
	assert.Empty(t, summary.FailedIDs)
	assert.False(t, summary.FullRebuild)

	record, err := env.vectors.GetVector(ctx, "note-a")
	require.NoError(t, err)
	assert.Len(t, record.Components, embed.Dim)

	postings, err := env.keywords.GetPostings(ctx, "note-a")
	require.NoError(t, err)
	assert.Contains(t, postings.Terms, "rust")
	assert.NotContains(t, postings.Terms, "and", "stop words must not be indexed")

	version, err := env.meta.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, embed.Dim, version.Dimension)
	assert.Equal(t, tokenizer.RulesVersion, version.TokenizerRules)

	lastIndexed, err := env.meta.GetLastIndexed(ctx)
	require.NoError(t, err)
	assert.False(t, lastIndexed.IsZero())
}

func TestReindex_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	source := vault.NewStaticSource(notesFixture())

	_, err := env.indexer.Reindex(ctx, source)
	require.NoError(t, err)

	before, err := env.vectors.GetVector(ctx, "note-a")
	require.NoError(t, err)

	summary, err := env.indexer.Reindex(ctx, source)
	require.NoError(t, err)

	assert.Zero(t, summary.Updated)
	assert.Equal(t, 3, summary.Unchanged)
	assert.Zero(t, summary.Deleted)

	// An unchanged note is not rewritten.
	after, err := env.vectors.GetVector(ctx, "note-a")
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestReindex_StalenessIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	notes := notesFixture()
	_, err := env.indexer.Reindex(ctx, vault.NewStaticSource(notes))
	require.NoError(t, err)

	untouchedBefore, err := env.vectors.GetVector(ctx, "note-b")
	require.NoError(t, err)

	notes[0].Text = "rust ownership, borrowing, and lifetimes"
	notes[0].ContentHash = 0

	summary, err := env.indexer.Reindex(ctx, vault.NewStaticSource(notes))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 2, summary.Unchanged)

	changed, err := env.vectors.GetVector(ctx, "note-a")
	require.NoError(t, err)
	assert.Equal(t, core.ContentHash(notes[0].Text), changed.ContentHash)

	postings, err := env.keywords.GetPostings(ctx, "note-a")
	require.NoError(t, err)
	assert.Contains(t, postings.Terms, "lifetimes")
	assert.NotContains(t, postings.Terms, "rules", "old postings must be fully replaced")

	untouchedAfter, err := env.vectors.GetVector(ctx, "note-b")
	require.NoError(t, err)
	assert.Equal(t, untouchedBefore.UpdatedAt, untouchedAfter.UpdatedAt)
}

func TestReindex_DeletionPropagates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.indexer.Reindex(ctx, vault.NewStaticSource(notesFixture()))
	require.NoError(t, err)

	summary, err := env.indexer.Reindex(ctx, vault.NewStaticSource(notesFixture()[:2]))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, 2, summary.Unchanged)

	_, err = env.vectors.GetVector(ctx, "note-c")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = env.keywords.GetPostings(ctx, "note-c")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Inverted entries are gone too: its terms no longer match anything.
	matches, err := env.keywords.MatchTerms(ctx, map[string]int{"sourdough": 1})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

// erringSource wraps a fixed note set and fails a chosen id.
type erringSource struct {
	notes  []core.Note
	failID string
}

func (s *erringSource) Notes(ctx context.Context) iter.Seq2[core.Note, error] {
	return func(yield func(core.Note, error) bool) {
		for _, note := range s.notes {
			if note.ID == s.failID {
				if !yield(core.Note{ID: note.ID}, errors.New("unreadable")) {
					return
				}
				continue
			}
			if !yield(note, nil) {
				return
			}
		}
	}
}

func TestReindex_FailedNoteRetainsStoredState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.indexer.Reindex(ctx, vault.NewStaticSource(notesFixture()))
	require.NoError(t, err)

	before, err := env.vectors.GetVector(ctx, "note-b")
	require.NoError(t, err)

	source := &erringSource{notes: notesFixture(), failID: "note-b"}
	summary, err := env.indexer.Reindex(ctx, source)
	require.NoError(t, err)

	assert.Equal(t, []string{"note-b"}, summary.FailedIDs)
	assert.Equal(t, 2, summary.Unchanged)
	assert.Zero(t, summary.Deleted, "a failed note must not be tombstoned")

	after, err := env.vectors.GetVector(ctx, "note-b")
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestReindex_VersionMismatchForcesRebuild(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.indexer.Reindex(ctx, vault.NewStaticSource(notesFixture()))
	require.NoError(t, err)

	// Simulate an index written by an older tokenizer.
	outdated := core.IndexVersion{
		Dimension:      embed.Dim,
		TokenizerRules: tokenizer.RulesVersion - 1,
		Derivation:     embed.DerivationVersion,
	}
	require.NoError(t, env.meta.SetVersion(ctx, outdated))

	summary, err := env.indexer.Reindex(ctx, vault.NewStaticSource(notesFixture()[:2]))
	require.NoError(t, err)

	assert.True(t, summary.FullRebuild)
	assert.Equal(t, 2, summary.Updated)
	assert.Zero(t, summary.Unchanged)
	// The wipe already removed note-c, so nothing is left to tombstone.
	assert.Zero(t, summary.Deleted)

	_, err = env.vectors.GetVector(ctx, "note-c")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	version, err := env.meta.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, tokenizer.RulesVersion, version.TokenizerRules)
}

func TestReindex_LockHeld(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "noteseek.lock")

	held := flock.New(lockPath)
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	env := newTestEnv(t,
		WithLockPath(lockPath),
		WithLockRetry(2, time.Millisecond))

	_, err = env.indexer.Reindex(context.Background(), vault.NewStaticSource(notesFixture()))
	assert.ErrorIs(t, err, ErrWriteLockHeld)
}

func TestReindex_EmptySource(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.indexer.Reindex(ctx, vault.NewStaticSource(notesFixture()))
	require.NoError(t, err)

	summary, err := env.indexer.Reindex(ctx, vault.NewStaticSource(nil))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Deleted)

	hashes, err := env.vectors.ContentHashes(ctx)
	require.NoError(t, err)
	assert.Empty(t, hashes)
}
