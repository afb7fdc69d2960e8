package embed

import (
	"math"

	"github.com/poiesic/noteseek/tokenizer"
)

const (
	// Dim is the embedding dimension: two output dimensions (sine and
	// cosine) per modulus. Fixed at first index build and persisted with
	// the store; it must never silently change.
	Dim = 384

	// numModuli is the number of coprime moduli used for the modular
	// decomposition of each token integer.
	numModuli = Dim / 2

	// maxTokenRunes caps how many code points of a token feed the integer
	// encoding. Longer tokens wrap anyway; the cap keeps the cost bounded.
	maxTokenRunes = 64

	// DerivationVersion identifies the token-to-vector derivation rule:
	// the integer encoding, the moduli table, and the pooling scheme.
	// Bump on any change; stored vectors derived under another version
	// are invalid.
	DerivationVersion = 1
)

// The first numModuli primes, giving guaranteed pairwise coprimality.
var coprimeModuli = [numModuli]uint64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37,
	41, 43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89,
	97, 101, 103, 107, 109, 113, 127, 131, 137, 139, 149, 151,
	157, 163, 167, 173, 179, 181, 191, 193, 197, 199, 211, 223,
	227, 229, 233, 239, 241, 251, 257, 263, 269, 271, 277, 281,
	283, 293, 307, 311, 313, 317, 331, 337, 347, 349, 353, 359,
	367, 373, 379, 383, 389, 397, 401, 409, 419, 421, 431, 433,
	439, 443, 449, 457, 461, 463, 467, 479, 487, 491, 499, 503,
	509, 521, 523, 541, 547, 557, 563, 569, 571, 577, 587, 593,
	599, 601, 607, 613, 617, 619, 631, 641, 643, 647, 653, 659,
	661, 673, 677, 683, 691, 701, 709, 719, 727, 733, 739, 743,
	751, 757, 761, 769, 773, 787, 797, 809, 811, 821, 823, 827,
	829, 839, 853, 857, 859, 863, 877, 881, 883, 887, 907, 911,
	919, 929, 937, 941, 947, 953, 967, 971, 977, 983, 991, 997,
	1009, 1013, 1019, 1021, 1031, 1033, 1039, 1049, 1051, 1061, 1063, 1069,
	1087, 1091, 1093, 1097, 1103, 1109, 1117, 1123, 1129, 1151, 1153, 1163,
}

// Embedder generates fixed-dimension vectors from text or token sequences.
// Implementations must be deterministic and thread-safe for concurrent use.
type Embedder interface {
	// EmbedTokens generates a vector from a normalized token sequence.
	// Duplicate tokens weight their contribution by frequency. An empty
	// sequence yields the all-zero vector.
	EmbedTokens(tokens []string) []float32

	// EmbedText normalizes raw text and embeds the resulting tokens.
	EmbedText(text string) []float32

	// Dimension returns the output vector length.
	Dimension() int
}

// Harmonic is the harmonic token projection embedder. It is a pure
// function with no state: the zero value is ready to use and safe for
// concurrent use.
type Harmonic struct{}

var _ Embedder = (*Harmonic)(nil)

// NewHarmonic creates a new harmonic projection embedder.
func NewHarmonic() *Harmonic {
	return &Harmonic{}
}

// Dimension returns the output vector length.
func (h *Harmonic) Dimension() int {
	return Dim
}

// EmbedText normalizes raw text and embeds the resulting tokens.
func (h *Harmonic) EmbedText(text string) []float32 {
	return h.EmbedTokens(tokenizer.Normalize(text))
}

// EmbedTokens generates the note vector for a token sequence.
//
// Token contributions are additive and order-independent, so the result is
// insensitive to token order but sensitive to token frequency. Accumulation
// happens in float64; the unit-normalized result is truncated to float32
// for storage.
func (h *Harmonic) EmbedTokens(tokens []string) []float32 {
	vector := make([]float32, Dim)
	if len(tokens) == 0 {
		return vector
	}

	sum := make([]float64, Dim)
	for _, token := range tokens {
		accumulateToken(token, sum)
	}

	// Mean pooling
	count := float64(len(tokens))
	for i := range sum {
		sum[i] /= count
	}

	var norm float64
	for _, v := range sum {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		// Reserved zero vector: similarity 0 with everything, itself
		// included.
		return vector
	}

	for i, v := range sum {
		vector[i] = float32(v / norm)
	}
	return vector
}

// accumulateToken adds one token's harmonic projection into sum.
//
// The token is encoded as N = Σ u_j · B^(L-j) with B = 2^16 over its code
// points (wrapping uint64 arithmetic). For each modulus m: r = N mod m,
// θ = 2π·r/m, contributing sin θ and cos θ to consecutive dimensions.
func accumulateToken(token string, sum []float64) {
	n := tokenInteger(token)

	for i, m := range coprimeModuli {
		r := n % m
		theta := 2 * math.Pi * float64(r) / float64(m)
		s, c := math.Sincos(theta)
		sum[2*i] += s
		sum[2*i+1] += c
	}
}

// tokenInteger converts a token to its base-2^16 integer encoding.
// Overflow wraps, which is part of the pinned derivation rule.
func tokenInteger(token string) uint64 {
	var n uint64
	seen := 0
	for _, r := range token {
		if seen == maxTokenRunes {
			break
		}
		n = n*65536 + uint64(r)
		seen++
	}
	return n
}
