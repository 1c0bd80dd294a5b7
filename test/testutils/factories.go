// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/brianvoe/gofakeit/v6"
)

var (
	pantry   = []string{"chicken", "rice", "garlic", "onion", "tomatoes", "spinach", "carrots", "olive oil", "basil", "lemon"}
	cuisines = []string{"italian", "mexican", "indian", "thai", "french"}
	levels   = []string{"easy", "medium", "hard"}
)

// DocumentFactory provides methods to create test recipe documents
type DocumentFactory struct {
	faker *gofakeit.Faker
	seq   int
}

// NewDocumentFactory creates a new document factory with seeded faker
func NewDocumentFactory(seed int64) *DocumentFactory {
	return &DocumentFactory{faker: gofakeit.New(seed)}
}

// Document creates a realistic recipe document
func (f *DocumentFactory) Document() recipe.Document {
	f.seq++
	shuffled := append([]string(nil), pantry...)
	f.faker.ShuffleStrings(shuffled)
	ingredients := shuffled[:4]

	steps := f.faker.Number(2, 5)
	instructions := make([]string, steps)
	for i := range instructions {
		instructions[i] = f.faker.Sentence(8)
	}

	return recipe.Document{
		ID:           fmt.Sprintf("recipe_%03d", f.seq),
		Title:        f.faker.Adjective() + " " + ingredients[0] + " " + f.faker.RandomString([]string{"bowl", "stew", "skillet", "salad"}),
		Ingredients:  ingredients,
		Instructions: instructions,
		CookingTime:  fmt.Sprintf("%d minutes", f.faker.Number(10, 60)),
		Difficulty:   f.faker.RandomString(levels),
		Cuisine:      f.faker.RandomString(cuisines),
		Servings:     f.faker.Number(1, 6),
	}
}

// Documents creates n documents
func (f *DocumentFactory) Documents(n int) []recipe.Document {
	docs := make([]recipe.Document, n)
	for i := range docs {
		docs[i] = f.Document()
	}
	return docs
}

// LongInstructions returns a document whose instructions exceed chunkSize characters.
func (f *DocumentFactory) LongInstructions(chunkSize int) recipe.Document {
	doc := f.Document()
	var total int
	doc.Instructions = nil
	for total <= chunkSize*2 {
		step := f.faker.Sentence(12)
		doc.Instructions = append(doc.Instructions, step)
		total += len(step) + 1
	}
	return doc
}

// QueryBuilder provides a fluent interface for building test queries
type QueryBuilder struct {
	query recipe.Query
}

// NewQueryBuilder creates a query with a sensible default ingredient list
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{query: recipe.Query{
		Ingredients: []string{"chicken", "rice", "garlic"},
		Servings:    2,
	}}
}

// WithIngredients replaces the ingredient list
func (b *QueryBuilder) WithIngredients(ingredients ...string) *QueryBuilder {
	b.query.Ingredients = ingredients
	return b
}

// WithServings sets servings
func (b *QueryBuilder) WithServings(n int) *QueryBuilder {
	b.query.Servings = n
	return b
}

// WithCookingTime sets the time limit
func (b *QueryBuilder) WithCookingTime(t string) *QueryBuilder {
	b.query.CookingTime = t
	return b
}

// WithDifficulty sets the difficulty
func (b *QueryBuilder) WithDifficulty(d recipe.Difficulty) *QueryBuilder {
	b.query.Difficulty = d
	return b
}

// WithCuisine sets the cuisine
func (b *QueryBuilder) WithCuisine(c string) *QueryBuilder {
	b.query.Cuisine = c
	return b
}

// WithDiet appends dietary restrictions
func (b *QueryBuilder) WithDiet(restrictions ...string) *QueryBuilder {
	b.query.DietaryRestrictions = append(b.query.DietaryRestrictions, restrictions...)
	return b
}

// Build returns the query
func (b *QueryBuilder) Build() recipe.Query {
	return b.query
}

// RecipeJSON renders a model response for the given recipe.
func RecipeJSON(title string, servings int, cookingTime string, ingredients ...string) string {
	quoted := ""
	for i, ing := range ingredients {
		if i > 0 {
			quoted += ", "
		}
		quoted += fmt.Sprintf("%q", ing)
	}
	return fmt.Sprintf(`{"recipe_title": %q, "ingredients": [%s], "instructions": ["Prepare everything", "Cook until done"], "cooking_time": %q, "difficulty": "easy", "servings": %d, "additional_notes": "Serve warm"}`,
		title, quoted, cookingTime, servings)
}
