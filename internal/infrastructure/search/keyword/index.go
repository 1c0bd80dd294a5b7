// Package keyword provides a lexical fallback retriever over chunk text
package keyword

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

var indexedFields = []string{"content", "doc_id", "kind", "cuisine", "difficulty", "cooking_time"}

// Index implements outbound.KeywordIndex on an in-memory bleve index
type Index struct {
	mu     sync.RWMutex
	idx    bleve.Index
	logger *zap.Logger
}

var _ outbound.KeywordIndex = (*Index)(nil)

// NewIndex creates an empty in-memory index
func NewIndex(logger *zap.Logger) (*Index, error) {
	idx, err := newMemIndex()
	if err != nil {
		return nil, err
	}
	return &Index{idx: idx, logger: logger.Named("keyword-index")}, nil
}

func newMemIndex() (bleve.Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword index: %w", err)
	}
	return idx, nil
}

// IndexChunks adds chunks in a single batch
func (i *Index) IndexChunks(_ context.Context, chunks []recipe.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	batch := i.idx.NewBatch()
	for _, c := range chunks {
		doc := map[string]any{"content": c.Content}
		for k, v := range c.Metadata() {
			if k == "type" {
				k = "kind"
			}
			doc[k] = v
		}
		if err := batch.Index(c.ID, doc); err != nil {
			return fmt.Errorf("failed to index chunk %s: %w", c.ID, err)
		}
	}
	if err := i.idx.Batch(batch); err != nil {
		return fmt.Errorf("failed to commit keyword batch: %w", err)
	}
	i.logger.Debug("Indexed chunks", zap.Int("count", len(chunks)))
	return nil
}

// Search runs a match query over chunk content
func (i *Index) Search(ctx context.Context, text string, topK int) ([]recipe.RetrievedChunk, error) {
	if topK <= 0 {
		topK = 5
	}
	q := bleve.NewMatchQuery(text)
	q.SetField("content")
	req := bleve.NewSearchRequestOptions(q, topK, 0, false)
	req.Fields = indexedFields

	i.mu.RLock()
	res, err := i.idx.SearchInContext(ctx, req)
	i.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	hits := make([]recipe.RetrievedChunk, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := recipe.RetrievedChunk{
			Content:  field(h.Fields, "content"),
			DocID:    field(h.Fields, "doc_id"),
			Kind:     recipe.ChunkKind(field(h.Fields, "kind")),
			Score:    float32(h.Score),
			Metadata: map[string]string{},
		}
		for _, k := range []string{"cuisine", "difficulty", "cooking_time"} {
			hit.Metadata[k] = field(h.Fields, k)
		}
		hit.Metadata["type"] = string(hit.Kind)
		hits = append(hits, hit)
	}
	return hits, nil
}

// Reset discards every indexed chunk
func (i *Index) Reset(context.Context) error {
	fresh, err := newMemIndex()
	if err != nil {
		return err
	}

	i.mu.Lock()
	old := i.idx
	i.idx = fresh
	i.mu.Unlock()

	return old.Close()
}

// Close releases the index
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.idx.Close()
}

func field(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}
