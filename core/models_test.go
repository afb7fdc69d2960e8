package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		first := ContentHash("some note text")
		for range 5 {
			assert.Equal(t, first, ContentHash("some note text"))
		}
	})

	t.Run("sensitive to content", func(t *testing.T) {
		assert.NotEqual(t, ContentHash("alpha"), ContentHash("beta"))
		assert.NotEqual(t, ContentHash("alpha"), ContentHash("alpha "))
	})

	t.Run("empty text hashes", func(t *testing.T) {
		assert.Equal(t, ContentHash(""), ContentHash(""))
	})
}

func TestVectorRecordStale(t *testing.T) {
	record := &VectorRecord{NoteID: "n", ContentHash: ContentHash("original")}

	assert.False(t, record.Stale(ContentHash("original")))
	assert.True(t, record.Stale(ContentHash("edited")))
}

func TestMatchedSignalString(t *testing.T) {
	assert.Equal(t, "vector", SignalVector.String())
	assert.Equal(t, "keyword", SignalKeyword.String())
	assert.Equal(t, "both", SignalBoth.String())
	assert.Equal(t, "unknown", MatchedSignal(0).String())
}

func TestFilter(t *testing.T) {
	t.Run("zero filter matches everything", func(t *testing.T) {
		var f Filter
		assert.True(t, f.IsZero())
		assert.True(t, f.Matches("project", "work", "active"))
		assert.True(t, f.Matches("", "", ""))
	})

	t.Run("single field", func(t *testing.T) {
		f := Filter{Area: "work"}
		assert.False(t, f.IsZero())
		assert.True(t, f.Matches("project", "work", "active"))
		assert.False(t, f.Matches("project", "home", "active"))
	})

	t.Run("all fields must match", func(t *testing.T) {
		f := Filter{Type: "project", Area: "work", Status: "active"}
		assert.True(t, f.Matches("project", "work", "active"))
		assert.False(t, f.Matches("project", "work", "done"))
		assert.False(t, f.Matches("note", "work", "active"))
	})

	t.Run("empty note fields only match empty constraints", func(t *testing.T) {
		f := Filter{Type: "project"}
		assert.False(t, f.Matches("", "", ""))
	})
}
