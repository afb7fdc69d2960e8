package storage

import (
	"testing"
	"time"

	"github.com/poiesic/noteseek/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorRecordSerialization(t *testing.T) {
	record := &core.VectorRecord{
		NoteID:      "Projects/pipeline-rebuild",
		Components:  []float32{0.25, -0.5, 0.75, 0},
		ContentHash: core.ContentHash("some text"),
		Type:        "project",
		Area:        "work",
		Status:      "active",
		UpdatedAt:   time.Date(2026, 3, 14, 9, 26, 53, 589000, time.UTC),
	}

	data := MarshalVectorRecord(record)
	decoded, err := UnmarshalVectorRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, decoded)

	t.Run("float32 components survive exactly", func(t *testing.T) {
		assert.Equal(t, record.Components, decoded.Components)
	})

	t.Run("timestamp keeps microsecond precision", func(t *testing.T) {
		assert.Equal(t, record.UpdatedAt, decoded.UpdatedAt)
	})

	t.Run("truncated data fails", func(t *testing.T) {
		_, err := UnmarshalVectorRecord(data[:len(data)/2])
		assert.Error(t, err)
	})
}

func TestVectorRecordSerialization_EmptyFields(t *testing.T) {
	record := &core.VectorRecord{
		NoteID:     "n",
		Components: []float32{},
		UpdatedAt:  time.UnixMicro(0).UTC(),
	}

	decoded, err := UnmarshalVectorRecord(MarshalVectorRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record, decoded)
}

func TestPostingListSerialization(t *testing.T) {
	postings := &core.PostingList{
		NoteID: "note-a",
		Terms:  map[string]int{"rust": 2, "memory": 1, "safety": 1},
		Total:  4,
	}

	data := MarshalPostingList(postings)
	decoded, err := UnmarshalPostingList(data)
	require.NoError(t, err)
	assert.Equal(t, postings, decoded)

	t.Run("deterministic bytes despite map iteration order", func(t *testing.T) {
		for range 10 {
			assert.Equal(t, data, MarshalPostingList(postings))
		}
	})

	t.Run("truncated data fails", func(t *testing.T) {
		_, err := UnmarshalPostingList(data[:3])
		assert.Error(t, err)
	})
}

func TestTermFrequencySerialization(t *testing.T) {
	for _, tf := range []int{0, 1, 127, 128, 100000} {
		decoded, err := UnmarshalTermFrequency(MarshalTermFrequency(tf))
		require.NoError(t, err)
		assert.Equal(t, tf, decoded)
	}

	_, err := UnmarshalTermFrequency(nil)
	assert.Error(t, err)
}

func TestIndexVersionSerialization(t *testing.T) {
	version := core.IndexVersion{Dimension: 384, TokenizerRules: 1, Derivation: 1}

	decoded, err := UnmarshalIndexVersion(MarshalIndexVersion(version))
	require.NoError(t, err)
	assert.Equal(t, version, *decoded)
}

func TestTimeSerialization(t *testing.T) {
	now := time.Now().Truncate(time.Microsecond).UTC()

	decoded, err := UnmarshalTime(MarshalTime(now))
	require.NoError(t, err)
	assert.Equal(t, now, decoded)

	_, err = UnmarshalTime(nil)
	assert.Error(t, err)
}
