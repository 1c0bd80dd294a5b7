// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// VectorStore persists embedded chunks and answers nearest-neighbour queries.
type VectorStore interface {
	EnsureCollection(ctx context.Context) error
	AddChunks(ctx context.Context, chunks []recipe.Chunk) (int, error)
	Search(ctx context.Context, vector []float32, topK int) ([]recipe.RetrievedChunk, error)
	DeleteCollection(ctx context.Context) error
	Info(ctx context.Context) (recipe.CollectionInfo, error)
	HealthCheck(ctx context.Context) error
}

// KeywordIndex is a lexical retriever over chunk text.
type KeywordIndex interface {
	IndexChunks(ctx context.Context, chunks []recipe.Chunk) error
	Search(ctx context.Context, text string, topK int) ([]recipe.RetrievedChunk, error)
	Reset(ctx context.Context) error
}

// WebRecipeSearcher finds recipes through third-party recipe services.
type WebRecipeSearcher interface {
	HealthCheck(ctx context.Context) bool
	SearchWebRecipes(ctx context.Context, ingredients []string, conditions string) ([]recipe.WebRecipe, error)
	RecipeDetails(ctx context.Context, id, source string) (*recipe.RecipeDetails, error)
	Nutrition(ctx context.Context, ingredients []string) (map[string]recipe.Nutrition, error)
}

// GenerationRecord is one persisted pipeline result.
type GenerationRecord struct {
	ID          string                 `json:"id"`
	CreatedAt   time.Time              `json:"created_at"`
	Ingredients []string               `json:"ingredients"`
	Conditions  string                 `json:"conditions,omitempty"`
	Outcome     recipe.Outcome         `json:"outcome"`
	Confidence  float64                `json:"confidence_score"`
	Chunks      int                    `json:"chunks_retrieved"`
	WebRecipes  int                    `json:"web_recipes_found"`
	Sources     []string               `json:"sources_used"`
	Recipe      recipe.GeneratedRecipe `json:"recipe"`
}

// GenerationLog records pipeline results for later inspection.
type GenerationLog interface {
	Record(ctx context.Context, query recipe.Query, result recipe.Result) error
	Recent(ctx context.Context, limit int) ([]GenerationRecord, error)
}
