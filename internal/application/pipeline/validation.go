package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

const verdictSystemPrompt = "You are a food expert. Respond with only 'YES' if the given item is a food ingredient that can be used in cooking, or 'NO' if it's not food or not suitable for cooking."

// ValidateIngredients keeps food ingredients in their original order.
// Word lists decide most items; the model settles the uncertain ones.
func (p *Pipeline) ValidateIngredients(ctx context.Context, ingredients []string) (valid, rejected []string) {
	ctx, span := p.tracer.Start(ctx, "pipeline.validate")
	defer span.End()

	valid = make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		ing = strings.TrimSpace(ing)
		if ing == "" {
			continue
		}
		switch recipe.ClassifyIngredient(ing) {
		case recipe.VerdictFood:
			valid = append(valid, ing)
		case recipe.VerdictNonFood:
			rejected = append(rejected, ing)
		default:
			if p.isFood(ctx, ing) {
				valid = append(valid, ing)
			} else {
				rejected = append(rejected, ing)
			}
		}
	}

	span.SetAttributes(attribute.Int("valid", len(valid)), attribute.Int("rejected", len(rejected)))
	if len(rejected) > 0 {
		p.logger.Info("Rejected ingredients", zap.Strings("rejected", rejected))
	}
	return valid, rejected
}

// isFood asks the model about one ingredient. Errors count as "no" and are not cached.
func (p *Pipeline) isFood(ctx context.Context, ingredient string) bool {
	key := "verdict:" + strings.ToLower(ingredient)
	if p.cache != nil {
		if raw, err := p.cache.Get(ctx, key); err == nil {
			return string(raw) == "yes"
		}
	}

	answer, err := p.completion.Complete(ctx, outbound.CompletionRequest{
		System:      verdictSystemPrompt,
		User:        fmt.Sprintf("Is '%s' a food ingredient suitable for cooking?", ingredient),
		MaxTokens:   10,
		Temperature: 0.1,
	})
	if err != nil {
		p.logger.Warn("Ingredient check failed, rejecting", zap.String("ingredient", ingredient), zap.Error(err))
		p.metrics.Fallback("ingredient_check")
		return false
	}

	food := strings.ToUpper(strings.TrimSpace(answer)) == "YES"
	if p.cache != nil {
		value := "no"
		if food {
			value = "yes"
		}
		if err := p.cache.Set(ctx, key, []byte(value), p.cfg.VerdictTTL); err != nil {
			p.logger.Debug("Failed to cache verdict", zap.Error(err))
		}
	}
	return food
}

// FilterDietary splits ingredients into those allowed by every restriction and those excluded
func (p *Pipeline) FilterDietary(ingredients, restrictions []string) (kept, excluded []string) {
	kept = make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if r, conflict := recipe.DietaryConflict(ing, restrictions); conflict {
			p.logger.Debug("Ingredient excluded by diet", zap.String("ingredient", ing), zap.String("restriction", r))
			excluded = append(excluded, ing)
			continue
		}
		kept = append(kept, ing)
	}
	return kept, excluded
}
