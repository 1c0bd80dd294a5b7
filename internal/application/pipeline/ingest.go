package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/infrastructure/monitoring"
	apperrors "github.com/alchemorsel/ragchef/pkg/errors"
)

// Ingest chunks, embeds and stores documents. A document without an id is
// given the running chunk count.
func (p *Pipeline) Ingest(ctx context.Context, docs []recipe.Document) (recipe.IngestReport, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.ingest")
	defer span.End()
	start := time.Now()
	defer func() { p.metrics.StageDuration(monitoring.StageIngest, time.Since(start)) }()

	var chunks []recipe.Chunk
	for i, doc := range docs {
		if err := doc.Validate(); err != nil {
			return recipe.IngestReport{}, apperrors.NewValidationError(fmt.Sprintf("document %d: %v", i, err))
		}
		if doc.ID == "" {
			doc.ID = strconv.Itoa(len(chunks))
		}
		chunks = append(chunks, recipe.ChunkDocument(doc, p.cfg.ChunkSize)...)
	}
	report := recipe.IngestReport{Documents: len(docs), Chunks: len(chunks)}
	if len(chunks) == 0 {
		return report, nil
	}

	if err := p.embedChunks(ctx, chunks); err != nil {
		return report, err
	}

	if err := p.vectorStore.EnsureCollection(ctx); err != nil {
		return report, apperrors.NewVectorStoreError("create collection", err)
	}
	batch := max(p.cfg.IngestBatchSize, 1)
	for i := 0; i < len(chunks); i += batch {
		end := min(i+batch, len(chunks))
		stored, err := p.vectorStore.AddChunks(ctx, chunks[i:end])
		report.Stored += stored
		if err != nil {
			p.metrics.ChunksIngested(report.Stored)
			return report, apperrors.NewVectorStoreError("add chunks", err)
		}
	}
	p.metrics.ChunksIngested(report.Stored)

	if p.keywords != nil {
		if err := p.keywords.IndexChunks(ctx, chunks); err != nil {
			p.logger.Warn("Keyword indexing failed", zap.Error(err))
		}
	}

	p.logger.Info("Ingested documents",
		zap.Int("documents", report.Documents),
		zap.Int("chunks", report.Chunks),
		zap.Int("stored", report.Stored))
	return report, nil
}

func (p *Pipeline) embedChunks(ctx context.Context, chunks []recipe.Chunk) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.EmbedConcurrency, 1))
	for i := range chunks {
		g.Go(func() error {
			vec, err := p.embedding.Embed(gctx, chunks[i].Content)
			if err != nil {
				return fmt.Errorf("chunk %s: %w", chunks[i].ID, err)
			}
			chunks[i].Embedding = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return apperrors.NewEmbeddingError(err)
	}
	return nil
}

// IngestFile loads documents from a .json, .yaml or .yml file and ingests them
func (p *Pipeline) IngestFile(ctx context.Context, path string) (recipe.IngestReport, error) {
	docs, err := LoadDocuments(path)
	if err != nil {
		return recipe.IngestReport{}, err
	}
	return p.Ingest(ctx, docs)
}

// LoadDocuments reads a recipes file
func LoadDocuments(path string) ([]recipe.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("recipes file " + path)
		}
		return nil, apperrors.Wrap(err, "failed to read recipes file")
	}

	var docs []recipe.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &docs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &docs)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("%v: %s", recipe.ErrUnsupportedFormat, filepath.Ext(path)))
	}
	if err != nil {
		return nil, apperrors.NewBadRequestError("invalid recipes file: " + err.Error())
	}
	return docs, nil
}
