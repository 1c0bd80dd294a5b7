package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// GenerationLog implements outbound.GenerationLog using GORM
type GenerationLog struct {
	db *gorm.DB
}

var _ outbound.GenerationLog = (*GenerationLog)(nil)

// NewGenerationLog creates a new generation log
func NewGenerationLog(db *gorm.DB) *GenerationLog {
	return &GenerationLog{db: db}
}

// Record stores a pipeline result
func (l *GenerationLog) Record(ctx context.Context, query recipe.Query, result recipe.Result) error {
	model := &GenerationModel{
		Ingredients: StringSlice(query.Ingredients),
		Conditions:  query.Conditions(),
		Title:       result.Recipe.Title,
		Outcome:     string(result.Outcome),
		Confidence:  result.ConfidenceScore,
		Chunks:      result.ChunksRetrieved,
		WebRecipes:  result.WebRecipesFound,
		Sources:     StringSlice(result.SourcesUsed),
		Recipe:      RecipeJSON(result.Recipe),
	}

	if err := l.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// Recent returns the newest records first. limit defaults to 20 and is capped at 100.
func (l *GenerationLog) Recent(ctx context.Context, limit int) ([]outbound.GenerationRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	var models []GenerationModel
	if err := l.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}

	records := make([]outbound.GenerationRecord, 0, len(models))
	for _, m := range models {
		records = append(records, outbound.GenerationRecord{
			ID:          m.ID.String(),
			CreatedAt:   m.CreatedAt,
			Ingredients: []string(m.Ingredients),
			Conditions:  m.Conditions,
			Outcome:     recipe.Outcome(m.Outcome),
			Confidence:  m.Confidence,
			Chunks:      m.Chunks,
			WebRecipes:  m.WebRecipes,
			Sources:     []string(m.Sources),
			Recipe:      recipe.GeneratedRecipe(m.Recipe),
		})
	}
	return records, nil
}
