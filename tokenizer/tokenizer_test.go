package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("lowercases and splits on punctuation", func(t *testing.T) {
		tokens := Normalize("Rust's memory-safety, explained!")
		assert.Equal(t, []string{"rust", "s", "memory", "safety", "explained"}, tokens)
	})

	t.Run("drops stop words", func(t *testing.T) {
		tokens := Normalize("the cat and the hat")
		assert.Equal(t, []string{"cat", "hat"}, tokens)
	})

	t.Run("keeps digits", func(t *testing.T) {
		tokens := Normalize("http2 vs grpc in 2024")
		assert.Equal(t, []string{"http2", "vs", "grpc", "2024"}, tokens)
	})

	t.Run("unicode letters survive", func(t *testing.T) {
		tokens := Normalize("Über naïve café")
		assert.Equal(t, []string{"über", "naïve", "café"}, tokens)
	})

	t.Run("empty and stop-word-only input", func(t *testing.T) {
		assert.Empty(t, Normalize(""))
		assert.Empty(t, Normalize("   \t\n"))
		assert.Empty(t, Normalize("the a an of"))
	})

	t.Run("deterministic", func(t *testing.T) {
		first := Normalize("some text with, punctuation; and MIXED case")
		for range 5 {
			assert.Equal(t, first, Normalize("some text with, punctuation; and MIXED case"))
		}
	})
}

func TestFrequencies(t *testing.T) {
	t.Run("counts duplicates", func(t *testing.T) {
		terms, total := Frequencies([]string{"go", "go", "rust"})
		assert.Equal(t, map[string]int{"go": 2, "rust": 1}, terms)
		assert.Equal(t, 3, total)
	})

	t.Run("empty input", func(t *testing.T) {
		terms, total := Frequencies(nil)
		assert.Empty(t, terms)
		assert.Zero(t, total)
	})
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("with"))
	assert.False(t, IsStopWord("rust"))
	assert.False(t, IsStopWord("THE"), "stop word check is on normalized tokens only")
}
