// Package simhash provides locality-sensitive text fingerprints and
// deterministic pseudo-embeddings for node similarity ranking.
package simhash

import (
	"hash/fnv"
	"math"
	"math/bits"
	"strings"
)

// Fingerprint computes a 64-bit SimHash over the lowercased word tokens of
// text. Texts sharing most of their vocabulary land within a small Hamming
// distance of each other.
func Fingerprint(text string) uint64 {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0
	}

	var vector [64]int
	for _, tok := range tokens {
		h := hashToken(tok)
		for i := 0; i < 64; i++ {
			if h&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether two fingerprints are within threshold bits.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}

// Vector derives a deterministic pseudo-embedding of the given dimension
// from text. Each token contributes hash-derived values to every dimension
// and the result is L2-normalised, so equal texts always produce equal
// vectors and overlapping vocabularies produce nearby ones. It is a stand-in
// for a real embedding model, not a semantic encoder.
func Vector(text string, dims int) []float64 {
	vec := make([]float64, dims)
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 || dims == 0 {
		return vec
	}

	for _, tok := range tokens {
		state := hashToken(tok)
		for i := 0; i < dims; i++ {
			state = mix64(state)
			// Map the top bits onto [-0.5, 0.5).
			vec[i] += float64(state>>11)/float64(1<<53) - 0.5
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Cosine returns the cosine similarity of two equal-length vectors.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func hashToken(tok string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(tok))
	return h.Sum64()
}

// mix64 is the splitmix64 finalizer, used as a cheap deterministic PRNG step.
func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
