package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/infrastructure/monitoring"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

const (
	unableTitle        = "Unable to Create Recipe"
	defaultTitle       = "Generated Recipe"
	missingInstruction = "Instructions not generated properly"
)

// modelRecipe is the shape requested from the model. Servings are always
// overwritten so they are not decoded.
type modelRecipe struct {
	Title           string   `json:"recipe_title"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	CookingTime     string   `json:"cooking_time"`
	Difficulty      string   `json:"difficulty"`
	AdditionalNotes string   `json:"additional_notes"`
}

// Generate asks the model for a recipe over the validated ingredients and
// enforces the query's constraints on the answer.
func (p *Pipeline) Generate(ctx context.Context, query recipe.Query, valid []string, chunks []recipe.RetrievedChunk, web []recipe.WebRecipe) (recipe.GeneratedRecipe, recipe.Outcome) {
	ctx, span := p.tracer.Start(ctx, "pipeline.generate")
	defer span.End()
	start := time.Now()
	defer func() { p.metrics.StageDuration(monitoring.StageGenerate, time.Since(start)) }()

	t := p.targets(query)
	system, user := BuildPrompts(PromptInput{
		Ingredients:         valid,
		Servings:            t.servings,
		MaxCookingTime:      t.maxTime,
		Difficulty:          string(t.difficulty),
		DietaryRestrictions: query.DietaryRestrictions,
		Cuisine:             query.Cuisine,
		FlavorProfile:       query.FlavorProfile,
		Chunks:              chunks,
		WebRecipes:          web,
		WebContextLimit:     p.cfg.WebContextLimit,
	})

	text, err := p.completion.Complete(ctx, outbound.CompletionRequest{
		System:      system,
		User:        user,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		p.logger.Error("Recipe generation failed", zap.Error(err))
		p.metrics.Fallback("generation_error")
		return errorRecipe(query, t, err), recipe.OutcomeError
	}

	decoded, err := decodeRecipe(text)
	if err != nil {
		p.logger.Warn("Model response is not a recipe, using fallback", zap.Error(err))
		p.metrics.Fallback("recipe_decode")
		span.SetAttributes(attribute.Bool("fallback", true))
		return simpleRecipe(valid, t), recipe.OutcomeFallback
	}

	return enforce(decoded, valid, query.DietaryRestrictions, t), recipe.OutcomeGenerated
}

type targets struct {
	servings   int
	maxTime    string
	maxMinutes int
	difficulty recipe.Difficulty
}

func (p *Pipeline) targets(query recipe.Query) targets {
	t := targets{
		servings:   max(query.Servings, 1),
		maxTime:    query.CookingTime,
		difficulty: query.Difficulty,
	}
	if t.maxTime == "" {
		t.maxTime = p.cfg.DefaultCookingTime
	}
	if _, ok := recipe.ParseDifficulty(string(t.difficulty)); !ok {
		t.difficulty = p.cfg.DefaultDifficulty
	}
	t.maxMinutes = recipe.ParseCookingMinutes(t.maxTime)
	return t
}

// decodeRecipe strips code fences and decodes the outermost JSON object.
func decodeRecipe(text string) (modelRecipe, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first < 0 || last <= first {
		return modelRecipe{}, recipe.ErrMalformedGeneration
	}

	var out modelRecipe
	if err := json.Unmarshal([]byte(text[first:last+1]), &out); err != nil {
		return modelRecipe{}, fmt.Errorf("%w: %v", recipe.ErrMalformedGeneration, err)
	}
	return out, nil
}

// enforce keeps the model's ingredient lines that use a valid ingredient and
// break no dietary restriction.
func enforce(m modelRecipe, valid, restrictions []string, t targets) recipe.GeneratedRecipe {
	out := recipe.GeneratedRecipe{
		Title:           strings.TrimSpace(m.Title),
		Instructions:    m.Instructions,
		CookingTime:     strings.TrimSpace(m.CookingTime),
		Servings:        t.servings,
		AdditionalNotes: m.AdditionalNotes,
	}
	if out.Title == "" {
		out.Title = defaultTitle
	}
	if len(out.Instructions) == 0 {
		out.Instructions = []string{missingInstruction}
	}
	if out.CookingTime == "" || recipe.ParseCookingMinutes(out.CookingTime) > t.maxMinutes {
		out.CookingTime = t.maxTime
	}
	if d, ok := recipe.ParseDifficulty(m.Difficulty); ok {
		out.Difficulty = string(d)
	} else {
		out.Difficulty = string(t.difficulty)
	}

	for _, line := range m.Ingredients {
		if !mentionsAny(line, valid) {
			continue
		}
		if _, conflict := recipe.DietaryConflict(line, restrictions); conflict {
			continue
		}
		out.Ingredients = append(out.Ingredients, line)
	}
	if len(out.Ingredients) == 0 {
		for _, ing := range valid {
			if _, conflict := recipe.DietaryConflict(ing, restrictions); !conflict {
				out.Ingredients = append(out.Ingredients, ing)
			}
		}
	}
	return out
}

func mentionsAny(line string, ingredients []string) bool {
	for _, ing := range ingredients {
		if recipe.MentionsIngredient(line, ing) {
			return true
		}
	}
	return false
}

func simpleRecipe(valid []string, t targets) recipe.GeneratedRecipe {
	return recipe.GeneratedRecipe{
		Title:           "Simple Recipe",
		Ingredients:     []string{"Use available ingredients: " + strings.Join(valid, ", ")},
		Instructions:    []string{"Combine available ingredients using basic cooking methods"},
		CookingTime:     t.maxTime,
		Difficulty:      string(t.difficulty),
		Servings:        t.servings,
		AdditionalNotes: "Generated with fallback method",
	}
}

func errorRecipe(query recipe.Query, t targets, err error) recipe.GeneratedRecipe {
	return recipe.GeneratedRecipe{
		Title:           "Error Recipe",
		Ingredients:     append([]string(nil), query.Ingredients...),
		Instructions:    []string{"Error generating recipe: " + err.Error()},
		CookingTime:     t.maxTime,
		Difficulty:      string(t.difficulty),
		Servings:        t.servings,
		AdditionalNotes: "Error occurred during generation",
	}
}

func unableResult(query recipe.Query, note string) recipe.Result {
	return recipe.Result{
		Recipe: recipe.GeneratedRecipe{
			Title:           unableTitle,
			Ingredients:     []string{"Please provide valid food ingredients"},
			Instructions:    []string{"No suitable ingredients available for cooking"},
			CookingTime:     "N/A",
			Difficulty:      "N/A",
			Servings:        max(query.Servings, 1),
			AdditionalNotes: note,
		},
		SourcesUsed: []string{},
		Outcome:     recipe.OutcomeNoValidIngredients,
	}
}

// IsUnable reports whether a recipe is the no-valid-ingredients placeholder
func IsUnable(r recipe.GeneratedRecipe) bool {
	return r.Title == unableTitle
}
