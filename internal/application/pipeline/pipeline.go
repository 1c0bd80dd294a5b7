// Package pipeline implements the retrieval-augmented recipe generation flow:
// ingredient validation, dietary filtering, context retrieval, prompt
// construction and constraint enforcement on the model output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/infrastructure/monitoring"
	"github.com/alchemorsel/ragchef/internal/ports/inbound"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/ragchef/pkg/errors"
)

// Config tunes the pipeline
type Config struct {
	TopK               int
	ChunkSize          int
	IngestBatchSize    int
	EmbedConcurrency   int
	WebContextLimit    int
	WebSourceLimit     int
	MaxTokens          int
	Temperature        float32
	DefaultCookingTime string
	DefaultDifficulty  recipe.Difficulty
	VerdictTTL         time.Duration
	KeywordFallback    bool
}

// DefaultConfig returns the stock settings
func DefaultConfig() Config {
	return Config{
		TopK:               5,
		ChunkSize:          recipe.DefaultChunkSize,
		IngestBatchSize:    5,
		EmbedConcurrency:   4,
		WebContextLimit:    3,
		WebSourceLimit:     2,
		MaxTokens:          1500,
		Temperature:        0.2,
		DefaultCookingTime: "30 minutes",
		DefaultDifficulty:  recipe.DifficultyMedium,
		VerdictTTL:         24 * time.Hour,
		KeywordFallback:    true,
	}
}

// ConfigFrom derives pipeline settings from application configuration
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	p := cfg.Pipeline
	if p.TopK > 0 {
		c.TopK = p.TopK
	}
	if p.ChunkSize > 0 {
		c.ChunkSize = p.ChunkSize
	}
	if p.WebContextLimit > 0 {
		c.WebContextLimit = p.WebContextLimit
	}
	if p.WebSourceLimit > 0 {
		c.WebSourceLimit = p.WebSourceLimit
	}
	if p.DefaultCookingTime != "" {
		c.DefaultCookingTime = p.DefaultCookingTime
	}
	if d, ok := recipe.ParseDifficulty(p.DefaultDifficulty); ok {
		c.DefaultDifficulty = d
	}
	if p.VerdictTTL > 0 {
		c.VerdictTTL = p.VerdictTTL
	}
	c.KeywordFallback = p.KeywordFallback
	if cfg.VectorStore.BatchSize > 0 {
		c.IngestBatchSize = cfg.VectorStore.BatchSize
	}
	if cfg.AI.MaxTokens > 0 {
		c.MaxTokens = cfg.AI.MaxTokens
	}
	if cfg.AI.Temperature > 0 {
		c.Temperature = cfg.AI.Temperature
	}
	return c
}

// Dependencies are the collaborators of a Pipeline. Web, Keywords, Cache,
// History, Metrics and Tracer are optional.
type Dependencies struct {
	Completion  outbound.CompletionService
	Embedding   outbound.EmbeddingService
	VectorStore outbound.VectorStore
	Web         outbound.WebRecipeSearcher
	Keywords    outbound.KeywordIndex
	Cache       outbound.CacheRepository
	History     outbound.GenerationLog
	Metrics     *monitoring.PipelineMetrics
	Tracer      trace.Tracer
	Logger      *zap.Logger
}

// Pipeline answers recipe queries
type Pipeline struct {
	cfg         Config
	completion  outbound.CompletionService
	embedding   outbound.EmbeddingService
	vectorStore outbound.VectorStore
	web         outbound.WebRecipeSearcher
	keywords    outbound.KeywordIndex
	cache       outbound.CacheRepository
	history     outbound.GenerationLog
	metrics     *monitoring.PipelineMetrics
	tracer      trace.Tracer
	logger      *zap.Logger
}

var _ inbound.RecipeAssistant = (*Pipeline)(nil)

// New creates a pipeline
func New(cfg Config, deps Dependencies) (*Pipeline, error) {
	if deps.Completion == nil {
		return nil, errors.New("pipeline requires a completion service")
	}
	if deps.Embedding == nil {
		return nil, errors.New("pipeline requires an embedding service")
	}
	if deps.VectorStore == nil {
		return nil, errors.New("pipeline requires a vector store")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer(monitoring.TracerName)
	}

	return &Pipeline{
		cfg:         cfg,
		completion:  deps.Completion,
		embedding:   deps.Embedding,
		vectorStore: deps.VectorStore,
		web:         deps.Web,
		keywords:    deps.Keywords,
		cache:       deps.Cache,
		history:     deps.History,
		metrics:     deps.Metrics,
		tracer:      tracer,
		logger:      logger.Named("pipeline"),
	}, nil
}

// Search parses a free-text conditions line and runs the query
func (p *Pipeline) Search(ctx context.Context, ingredients []string, conditions string) recipe.Result {
	return p.ProcessQuery(ctx, recipe.ParseConditions(ingredients, conditions))
}

// ProcessQuery runs the full pipeline. It never fails; failures surface as
// fallback recipes and the Outcome field.
func (p *Pipeline) ProcessQuery(ctx context.Context, query recipe.Query) recipe.Result {
	ctx, span := p.tracer.Start(ctx, "pipeline.ProcessQuery")
	defer span.End()

	if query.Servings < 1 {
		query.Servings = 1
	}
	query.Ingredients = nonBlank(query.Ingredients)
	denominator := max(len(query.Ingredients), 1)

	start := time.Now()
	valid, rejected := p.ValidateIngredients(ctx, query.Ingredients)
	p.metrics.StageDuration(monitoring.StageValidate, time.Since(start))
	p.metrics.IngredientsRejected(len(rejected))

	if len(valid) == 0 {
		result := unableResult(query, "Try common ingredients like chicken, rice, vegetables")
		result.RejectedIngredients = rejected
		return p.finish(ctx, span, query, result)
	}

	kept, excluded := p.FilterDietary(valid, query.DietaryRestrictions)
	if len(kept) == 0 {
		note := fmt.Sprintf("Every ingredient conflicts with the %s restriction", strings.Join(query.DietaryRestrictions, ", "))
		result := unableResult(query, note)
		result.RejectedIngredients = rejected
		result.ExcludedByDiet = excluded
		return p.finish(ctx, span, query, result)
	}

	searchText := searchQuery(kept, query)
	var (
		chunks []recipe.RetrievedChunk
		web    []recipe.WebRecipe
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		chunks = p.Retrieve(gctx, searchText, p.cfg.TopK)
		return nil
	})
	g.Go(func() error {
		web = p.searchWeb(gctx, kept, query)
		return nil
	})
	_ = g.Wait()

	generated, outcome := p.Generate(ctx, query, kept, chunks, web)

	result := recipe.Result{
		Recipe:              generated,
		ConfidenceScore:     confidence(len(chunks), len(valid), denominator),
		SourcesUsed:         p.sources(chunks, web),
		ChunksRetrieved:     len(chunks),
		WebRecipesFound:     len(web),
		RejectedIngredients: rejected,
		ExcludedByDiet:      excluded,
		Outcome:             outcome,
	}
	return p.finish(ctx, span, query, result)
}

func (p *Pipeline) finish(ctx context.Context, span trace.Span, query recipe.Query, result recipe.Result) recipe.Result {
	span.SetAttributes(
		attribute.String("outcome", string(result.Outcome)),
		attribute.Int("chunks", result.ChunksRetrieved),
		attribute.Int("web_recipes", result.WebRecipesFound),
		attribute.Float64("confidence", result.ConfidenceScore),
	)
	p.metrics.QueryCompleted(string(result.Outcome), result.ChunksRetrieved)

	if p.history != nil {
		if err := p.history.Record(ctx, query, result); err != nil {
			p.logger.Warn("Failed to record generation", zap.Error(err))
		}
	}

	p.logger.Info("Query processed",
		zap.String("outcome", string(result.Outcome)),
		zap.Int("chunks", result.ChunksRetrieved),
		zap.Int("web_recipes", result.WebRecipesFound),
		zap.Float64("confidence", result.ConfidenceScore))
	return result
}

// searchWeb asks the web searcher for recipes when it reports healthy
func (p *Pipeline) searchWeb(ctx context.Context, ingredients []string, query recipe.Query) []recipe.WebRecipe {
	if p.web == nil {
		return nil
	}
	ctx, span := p.tracer.Start(ctx, "pipeline.web_search")
	defer span.End()
	start := time.Now()
	defer func() { p.metrics.StageDuration(monitoring.StageWeb, time.Since(start)) }()

	if !p.web.HealthCheck(ctx) {
		p.logger.Debug("Web recipe search unavailable")
		return nil
	}
	recipes, err := p.web.SearchWebRecipes(ctx, ingredients, query.Conditions())
	if err != nil {
		p.logger.Warn("Web recipe search failed", zap.Error(err))
		p.metrics.Fallback("web_search")
		return nil
	}
	span.SetAttributes(attribute.Int("results", len(recipes)))
	return recipes
}

func (p *Pipeline) sources(chunks []recipe.RetrievedChunk, web []recipe.WebRecipe) []string {
	seen := make(map[string]struct{})
	for _, c := range chunks {
		id := c.DocID
		if id == "" {
			id = c.Metadata["doc_id"]
		}
		if id == "" {
			id = "unknown"
		}
		seen[id] = struct{}{}
	}
	for i, w := range web {
		if i == p.cfg.WebSourceLimit {
			break
		}
		source := w.Source
		if source == "" {
			source = "unknown"
		}
		seen["web:"+source] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// CollectionInfo describes the vector collection
func (p *Pipeline) CollectionInfo(ctx context.Context) (recipe.CollectionInfo, error) {
	info, err := p.vectorStore.Info(ctx)
	if err != nil {
		return recipe.CollectionInfo{}, apperrors.NewVectorStoreError("info", err)
	}
	return info, nil
}

// ResetCollection drops and recreates the collection and clears the keyword index
func (p *Pipeline) ResetCollection(ctx context.Context) error {
	if err := p.vectorStore.DeleteCollection(ctx); err != nil {
		return apperrors.NewVectorStoreError("delete collection", err)
	}
	if err := p.vectorStore.EnsureCollection(ctx); err != nil {
		return apperrors.NewVectorStoreError("create collection", err)
	}
	if p.keywords != nil {
		if err := p.keywords.Reset(ctx); err != nil {
			p.logger.Warn("Failed to reset keyword index", zap.Error(err))
		}
	}
	p.logger.Info("Collection reset")
	return nil
}

// Nutrition looks up nutrition facts through the web searcher
func (p *Pipeline) Nutrition(ctx context.Context, ingredients []string) (map[string]recipe.Nutrition, error) {
	if p.web == nil {
		return nil, apperrors.NewAppError(apperrors.CodeServiceUnavailable, "Web recipe search is not configured", "")
	}
	ingredients = nonBlank(ingredients)
	if len(ingredients) == 0 {
		return nil, apperrors.NewValidationError("ingredients are required")
	}
	facts, err := p.web.Nutrition(ctx, ingredients)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("nutrition", err)
	}
	if facts == nil {
		facts = map[string]recipe.Nutrition{}
	}
	return facts, nil
}

// History returns recent generations, newest first
func (p *Pipeline) History(ctx context.Context, limit int) ([]outbound.GenerationRecord, error) {
	if p.history == nil {
		return []outbound.GenerationRecord{}, nil
	}
	records, err := p.history.Recent(ctx, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list generations", err)
	}
	return records, nil
}

// HealthCheck reports the vector store's health
func (p *Pipeline) HealthCheck(ctx context.Context) error {
	return p.vectorStore.HealthCheck(ctx)
}

func searchQuery(ingredients []string, query recipe.Query) string {
	text := "Recipe with ingredients: " + strings.Join(ingredients, ", ")
	if query.CookingTime != "" {
		text += " cooking time " + query.CookingTime
	}
	if query.Cuisine != "" {
		text += " " + query.Cuisine + " cuisine"
	}
	return text
}

func confidence(chunks, valid, total int) float64 {
	base := min(float64(chunks)*0.2, 1.0)
	return base * float64(valid) / float64(max(total, 1))
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
