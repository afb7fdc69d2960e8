package tokenizer

import (
	"strings"
	"unicode"
)

// RulesVersion identifies the normalization rules: the token splitting
// behavior and the stop-word list below. Any change to either invalidates
// every derived vector and posting list, so changes here require a version
// bump, which forces a full index rebuild.
const RulesVersion = 1

// Stop words filtered out during normalization. Fixed and versioned; do not
// edit without bumping RulesVersion.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// Normalize turns raw note text into an ordered token sequence. It
// lowercases, splits on any rune that is not a letter or digit, and drops
// stop words. Deterministic: the same text always yields the same sequence.
func Normalize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := strings.ToLower(field)
		if token == "" || stopWords[token] {
			continue
		}
		tokens = append(tokens, token)
	}

	return tokens
}

// Frequencies counts term occurrences in a token sequence. The second
// return value is the total token count (the sum of all frequencies).
func Frequencies(tokens []string) (map[string]int, int) {
	terms := make(map[string]int, len(tokens))
	for _, token := range tokens {
		terms[token]++
	}
	return terms, len(tokens)
}

// IsStopWord reports whether a token is on the versioned stop-word list.
func IsStopWord(token string) bool {
	return stopWords[strings.ToLower(token)]
}
