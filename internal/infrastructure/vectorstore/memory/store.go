// Package memory is an in-process cosine-similarity vector store
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

// Store implements outbound.VectorStore in memory
type Store struct {
	name       string
	vectorSize int

	mu     sync.RWMutex
	chunks []recipe.Chunk
}

var _ outbound.VectorStore = (*Store)(nil)

// NewStore creates an empty store. vectorSize 0 accepts any dimension.
func NewStore(name string, vectorSize int) *Store {
	return &Store{name: name, vectorSize: vectorSize}
}

// EnsureCollection is a no-op.
func (s *Store) EnsureCollection(context.Context) error { return nil }

// AddChunks stores embedded chunks. Chunks without an embedding are skipped.
func (s *Store) AddChunks(_ context.Context, chunks []recipe.Chunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := 0
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		if s.vectorSize > 0 && len(c.Embedding) != s.vectorSize {
			return stored, fmt.Errorf("chunk %s: %w: got %d, want %d", c.ID, recipe.ErrDimensionMismatch, len(c.Embedding), s.vectorSize)
		}
		s.chunks = append(s.chunks, c)
		stored++
	}
	return stored, nil
}

// Search ranks every stored chunk by cosine similarity.
func (s *Store) Search(_ context.Context, vector []float32, topK int) ([]recipe.RetrievedChunk, error) {
	if len(vector) == 0 {
		return nil, recipe.ErrEmptyEmbedding
	}

	s.mu.RLock()
	hits := make([]recipe.RetrievedChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		if len(c.Embedding) != len(vector) {
			continue
		}
		meta := c.Metadata()
		delete(meta, "doc_id")
		hits = append(hits, recipe.RetrievedChunk{
			Content:  c.Content,
			DocID:    c.DocID,
			Kind:     c.Kind,
			Score:    cosine(vector, c.Embedding),
			Metadata: meta,
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// DeleteCollection removes every chunk.
func (s *Store) DeleteCollection(context.Context) error {
	s.mu.Lock()
	s.chunks = nil
	s.mu.Unlock()
	return nil
}

// Info reports the number of stored chunks.
func (s *Store) Info(context.Context) (recipe.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recipe.CollectionInfo{Name: s.name, PointsCount: uint64(len(s.chunks)), Status: "green"}, nil
}

// HealthCheck always succeeds.
func (s *Store) HealthCheck(context.Context) error { return nil }

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
