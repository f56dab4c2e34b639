package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultHashDimension is the vector size used by the local embedder.
const DefaultHashDimension = 384

// HashEmbedder is a local, deterministic feature-hashing embedder. Tokens and
// their bigrams are hashed into a fixed number of buckets and the resulting
// frequency vector is L2-normalized. It needs no network, no model files, and
// always produces identical vectors for identical text.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder constructs a local embedder with the given dimension.
// Non-positive dimensions fall back to DefaultHashDimension.
func NewHashEmbedder(dimension int) *HashEmbedder {
	if dimension <= 0 {
		dimension = DefaultHashDimension
	}
	return &HashEmbedder{dimension: dimension}
}

// Dimension reports the vector length.
func (e *HashEmbedder) Dimension() int { return e.dimension }

// Embed hashes the text's tokens and bigrams into a normalized vector.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	tokens := tokenize(text)
	for i, tok := range tokens {
		vec[e.bucket(tok)]++
		if i+1 < len(tokens) {
			vec[e.bucket(tok+" "+tokens[i+1])]++
		}
	}
	normalize(vec)
	return vec, nil
}

func (e *HashEmbedder) bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(e.dimension))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
