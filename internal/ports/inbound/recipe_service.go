// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

// RecipeAssistant defines the use cases of the recipe generation pipeline.
// HTTP handlers and the CLI drive the application through it.
type RecipeAssistant interface {
	// Generation
	ProcessQuery(ctx context.Context, query recipe.Query) recipe.Result
	Search(ctx context.Context, ingredients []string, conditions string) recipe.Result
	ValidateIngredients(ctx context.Context, ingredients []string) (valid, rejected []string)

	// Knowledge base
	Ingest(ctx context.Context, docs []recipe.Document) (recipe.IngestReport, error)
	IngestFile(ctx context.Context, path string) (recipe.IngestReport, error)
	CollectionInfo(ctx context.Context) (recipe.CollectionInfo, error)
	ResetCollection(ctx context.Context) error

	// Lookups
	Nutrition(ctx context.Context, ingredients []string) (map[string]recipe.Nutrition, error)
	History(ctx context.Context, limit int) ([]outbound.GenerationRecord, error)
}
