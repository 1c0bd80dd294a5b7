package recipe

import "strings"

// Difficulty is the effort level requested for or reported by a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalises free text to a known difficulty.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard", "difficult":
		return DifficultyHard, true
	}
	return "", false
}

// Query describes what the cook has and what they want.
type Query struct {
	Ingredients         []string   `json:"ingredients"`
	DietaryRestrictions []string   `json:"dietary_restrictions,omitempty"`
	CookingTime         string     `json:"cooking_time,omitempty"`
	Difficulty          Difficulty `json:"difficulty_level,omitempty"`
	Cuisine             string     `json:"cuisine_type,omitempty"`
	Servings            int        `json:"servings,omitempty"`
	FlavorProfile       string     `json:"flavor_profile,omitempty"`
}

// Conditions is the free-text "conditions" line joined by spaces for
// third-party search APIs: cooking time, difficulty, then diets.
func (q Query) Conditions() string {
	var parts []string
	if q.CookingTime != "" {
		parts = append(parts, q.CookingTime)
	}
	if q.Difficulty != "" {
		parts = append(parts, string(q.Difficulty))
	}
	parts = append(parts, q.DietaryRestrictions...)
	return strings.Join(parts, " ")
}

// Document is a recipe as stored in the knowledge base.
type Document struct {
	ID           string         `json:"id" yaml:"id"`
	Title        string         `json:"title" yaml:"title"`
	Ingredients  []string       `json:"ingredients" yaml:"ingredients"`
	Instructions []string       `json:"instructions" yaml:"instructions"`
	CookingTime  string         `json:"cooking_time,omitempty" yaml:"cooking_time,omitempty"`
	Difficulty   string         `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Cuisine      string         `json:"cuisine,omitempty" yaml:"cuisine,omitempty"`
	Servings     int            `json:"servings,omitempty" yaml:"servings,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ChunkKind identifies which part of a document a chunk came from.
type ChunkKind string

const (
	ChunkTitle        ChunkKind = "title"
	ChunkIngredients  ChunkKind = "ingredients"
	ChunkInstructions ChunkKind = "instructions"
)

// Chunk is an embeddable slice of a Document.
type Chunk struct {
	ID          string    `json:"id"`
	DocID       string    `json:"doc_id"`
	Content     string    `json:"content"`
	Kind        ChunkKind `json:"type"`
	Cuisine     string    `json:"cuisine,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	CookingTime string    `json:"cooking_time,omitempty"`
	Embedding   []float32 `json:"-"`
}

// Metadata returns the chunk's searchable attributes.
func (c Chunk) Metadata() map[string]string {
	return map[string]string{
		"doc_id":       c.DocID,
		"type":         string(c.Kind),
		"cuisine":      c.Cuisine,
		"difficulty":   c.Difficulty,
		"cooking_time": c.CookingTime,
	}
}

// RetrievedChunk is a search hit returned by a retriever.
type RetrievedChunk struct {
	Content  string            `json:"content"`
	DocID    string            `json:"doc_id"`
	Kind     ChunkKind         `json:"type,omitempty"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// WebRecipe is a recipe found through a third-party recipe API.
type WebRecipe struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	Summary               string   `json:"summary,omitempty"`
	Image                 string   `json:"image,omitempty"`
	URL                   string   `json:"url,omitempty"`
	Ingredients           []string `json:"ingredients,omitempty"`
	Calories              float64  `json:"calories,omitempty"`
	TotalTime             float64  `json:"totalTime,omitempty"`
	UsedIngredientCount   int      `json:"usedIngredientCount,omitempty"`
	MissedIngredientCount int      `json:"missedIngredientCount,omitempty"`
	Source                string   `json:"source"`
}

// RecipeDetails is the full record of a web recipe.
type RecipeDetails struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary,omitempty"`
	Image          string   `json:"image,omitempty"`
	SourceURL      string   `json:"sourceUrl,omitempty"`
	ReadyInMinutes int      `json:"readyInMinutes,omitempty"`
	Servings       int      `json:"servings,omitempty"`
	Ingredients    []string `json:"ingredients,omitempty"`
	Instructions   string   `json:"instructions,omitempty"`
	Source         string   `json:"source"`
}

// Nutrient is one nutrient value of a food.
type Nutrient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Nutrition is the nutrition profile found for one ingredient.
type Nutrition struct {
	Description string     `json:"description"`
	Nutrients   []Nutrient `json:"nutrients"`
}

// GeneratedRecipe is the recipe produced for a query.
type GeneratedRecipe struct {
	Title           string   `json:"recipe_title"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	CookingTime     string   `json:"cooking_time"`
	Difficulty      string   `json:"difficulty"`
	Servings        int      `json:"servings"`
	AdditionalNotes string   `json:"additional_notes,omitempty"`
}

// Outcome records which path produced a result.
type Outcome string

const (
	OutcomeGenerated          Outcome = "generated"
	OutcomeFallback           Outcome = "fallback"
	OutcomeNoValidIngredients Outcome = "no_valid_ingredients"
	OutcomeError              Outcome = "error"
)

// Result is the full answer to a query.
type Result struct {
	Recipe              GeneratedRecipe `json:"recipe"`
	ConfidenceScore     float64         `json:"confidence_score"`
	SourcesUsed         []string        `json:"sources_used"`
	ChunksRetrieved     int             `json:"chunks_retrieved"`
	WebRecipesFound     int             `json:"web_recipes_found"`
	RejectedIngredients []string        `json:"rejected_ingredients,omitempty"`
	ExcludedByDiet      []string        `json:"excluded_by_diet,omitempty"`
	Outcome             Outcome         `json:"outcome"`
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Stored    int `json:"stored"`
}

// CollectionInfo describes the vector collection.
type CollectionInfo struct {
	Name        string `json:"name"`
	PointsCount uint64 `json:"points_count"`
	Status      string `json:"status"`
}
