package badger

import (
	"context"
	"testing"

	"github.com/poiesic/noteseek/core"
	"github.com/poiesic/noteseek/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPostings(noteID string, terms map[string]int) *core.PostingList {
	total := 0
	for _, tf := range terms {
		total += tf
	}
	return &core.PostingList{NoteID: noteID, Terms: terms, Total: total}
}

func TestKeywordRepository_IndexAndGet(t *testing.T) {
	_, keywords, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	postings := testPostings("note-a", map[string]int{"rust": 2, "memory": 1})

	require.NoError(t, keywords.IndexPostings(ctx, postings))

	got, err := keywords.GetPostings(ctx, "note-a")
	require.NoError(t, err)
	assert.Equal(t, postings, got)

	t.Run("missing note", func(t *testing.T) {
		_, err := keywords.GetPostings(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestKeywordRepository_ReplaceRemovesOldTerms(t *testing.T) {
	_, keywords, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, keywords.IndexPostings(ctx, testPostings("note-a", map[string]int{"old": 1})))
	require.NoError(t, keywords.IndexPostings(ctx, testPostings("note-a", map[string]int{"new": 1})))

	matches, err := keywords.MatchTerms(ctx, map[string]int{"old": 1})
	require.NoError(t, err)
	assert.Empty(t, matches, "stale inverted entries must not survive a replace")

	matches, err = keywords.MatchTerms(ctx, map[string]int{"new": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]float32{"note-a": 1}, matches)
}

func TestKeywordRepository_RemovePostings(t *testing.T) {
	_, keywords, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, keywords.IndexPostings(ctx, testPostings("note-a", map[string]int{"rust": 1})))
	require.NoError(t, keywords.RemovePostings(ctx, "note-a"))

	_, err = keywords.GetPostings(ctx, "note-a")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	matches, err := keywords.MatchTerms(ctx, map[string]int{"rust": 1})
	require.NoError(t, err)
	assert.Empty(t, matches)

	// Removing again is a no-op.
	assert.NoError(t, keywords.RemovePostings(ctx, "note-a"))
}

func TestKeywordRepository_MatchTerms(t *testing.T) {
	_, keywords, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, keywords.IndexPostings(ctx, testPostings("note-a", map[string]int{"rust": 1, "ownership": 1})))
	require.NoError(t, keywords.IndexPostings(ctx, testPostings("note-b", map[string]int{"rust": 1, "memory": 1, "safety": 1})))
	require.NoError(t, keywords.IndexPostings(ctx, testPostings("note-c", map[string]int{"sourdough": 2})))

	t.Run("overlap is the matched share of query occurrences", func(t *testing.T) {
		matches, err := keywords.MatchTerms(ctx, map[string]int{"rust": 1, "memory": 1, "safety": 1})
		require.NoError(t, err)

		require.Len(t, matches, 2)
		assert.InDelta(t, 1.0/3.0, float64(matches["note-a"]), 1e-6)
		assert.InDelta(t, 1.0, float64(matches["note-b"]), 1e-6)
	})

	t.Run("query frequency weights the overlap", func(t *testing.T) {
		matches, err := keywords.MatchTerms(ctx, map[string]int{"rust": 2, "sourdough": 1})
		require.NoError(t, err)

		assert.InDelta(t, 2.0/3.0, float64(matches["note-a"]), 1e-6)
		assert.InDelta(t, 1.0/3.0, float64(matches["note-c"]), 1e-6)
	})

	t.Run("no shared terms", func(t *testing.T) {
		matches, err := keywords.MatchTerms(ctx, map[string]int{"astronomy": 1})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("empty query terms", func(t *testing.T) {
		matches, err := keywords.MatchTerms(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("term prefixes do not collide", func(t *testing.T) {
		// "rust" must not match a note that only contains "rustic".
		require.NoError(t, keywords.IndexPostings(ctx, testPostings("note-d", map[string]int{"rustic": 1})))

		matches, err := keywords.MatchTerms(ctx, map[string]int{"rust": 1})
		require.NoError(t, err)
		assert.NotContains(t, matches, "note-d")
	})
}
