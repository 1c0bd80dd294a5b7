package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/infrastructure/monitoring"
)

// Retrieve returns the chunks most relevant to text. When the vector store
// fails or finds nothing, the keyword index is consulted. It never errors.
func (p *Pipeline) Retrieve(ctx context.Context, text string, topK int) []recipe.RetrievedChunk {
	ctx, span := p.tracer.Start(ctx, "pipeline.retrieve")
	defer span.End()
	start := time.Now()
	defer func() { p.metrics.StageDuration(monitoring.StageRetrieve, time.Since(start)) }()

	if topK <= 0 {
		topK = p.cfg.TopK
	}

	hits, err := p.vectorSearch(ctx, text, topK)
	if err != nil {
		p.logger.Warn("Vector retrieval failed", zap.Error(err))
	}
	if len(hits) > 0 {
		span.SetAttributes(attribute.String("retriever", "vector"), attribute.Int("hits", len(hits)))
		return hits
	}

	if p.keywords == nil || !p.cfg.KeywordFallback {
		return []recipe.RetrievedChunk{}
	}
	p.metrics.Fallback("keyword_retrieval")
	hits, err = p.keywords.Search(ctx, text, topK)
	if err != nil {
		p.logger.Warn("Keyword retrieval failed", zap.Error(err))
		return []recipe.RetrievedChunk{}
	}
	span.SetAttributes(attribute.String("retriever", "keyword"), attribute.Int("hits", len(hits)))
	if hits == nil {
		hits = []recipe.RetrievedChunk{}
	}
	return hits
}

func (p *Pipeline) vectorSearch(ctx context.Context, text string, topK int) ([]recipe.RetrievedChunk, error) {
	vec, err := p.embedding.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return p.vectorStore.Search(ctx, vec, topK)
}
