// Package hash embeds text locally by feature hashing words and character
// trigrams. It needs no network access or API key, so it is the default
// embedder for a Groq-only setup where no embeddings endpoint exists.
package hash

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/w-h-a/groomwise/memory_manager/providers/embedder"
)

const (
	wordWeight    = 1.0
	trigramWeight = 0.5
)

type hashEmbedder struct {
	options embedder.Options
}

func (e *hashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float64, e.options.Dimension)

	for _, word := range tokenize(text) {
		e.add(vec, "w:"+word, wordWeight)

		padded := []rune("#" + word + "#")
		for i := 0; i+3 <= len(padded); i++ {
			e.add(vec, "t:"+string(padded[i:i+3]), trigramWeight)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(vec))
	if norm == 0 {
		return out, nil
	}

	for i, v := range vec {
		out[i] = float32(v / norm)
	}

	return out, nil
}

func (e *hashEmbedder) Dimension() int {
	return e.options.Dimension
}

func (e *hashEmbedder) add(vec []float64, feature string, weight float64) {
	h := fnv.New32a()
	h.Write([]byte(feature))
	sum := h.Sum32()

	idx := int(sum % uint32(len(vec)))

	// top bit picks the sign so collisions tend to cancel instead of pile up
	if sum&(1<<31) != 0 {
		weight = -weight
	}

	vec[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func NewEmbedder(opts ...embedder.Option) embedder.Embedder {
	options := embedder.NewOptions(opts...)

	if options.Dimension <= 0 {
		panic("dimension must be positive for hash embedder")
	}

	return &hashEmbedder{
		options: options,
	}
}
