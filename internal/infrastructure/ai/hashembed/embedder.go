// Package hashembed is a deterministic, offline embedding provider based on
// signed feature hashing of word unigrams and bigrams.
package hashembed

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

// Embedder maps text to a fixed-size unit vector.
type Embedder struct {
	dim int
}

var _ outbound.EmbeddingProvider = (*Embedder)(nil)

// New returns an Embedder producing vectors of length dim.
func New(dim int) *Embedder {
	if dim <= 0 {
		dim = 3072
	}
	return &Embedder{dim: dim}
}

// Name identifies the embedder in cache keys.
func (e *Embedder) Name() string {
	return "hash:" + strconv.Itoa(e.dim)
}

// Embed never fails for non-empty text. Text with no words yields a zero vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, e.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		e.add(vec, w, 1)
		if i > 0 {
			e.add(vec, words[i-1]+" "+w, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

func (e *Embedder) add(vec []float32, feature string, weight float32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dim))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}
