package pipeline

import (
	"fmt"
	"strings"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
)

// PromptInput is everything the generation prompts are built from
type PromptInput struct {
	Ingredients         []string
	Servings            int
	MaxCookingTime      string
	Difficulty          string
	DietaryRestrictions []string
	Cuisine             string
	FlavorProfile       string
	Chunks              []recipe.RetrievedChunk
	WebRecipes          []recipe.WebRecipe
	WebContextLimit     int
}

// BuildPrompts returns the system and user prompts for recipe generation
func BuildPrompts(in PromptInput) (system, user string) {
	ingredients := strings.Join(in.Ingredients, ", ")
	diets := "none"
	if len(in.DietaryRestrictions) > 0 {
		diets = strings.Join(in.DietaryRestrictions, ", ")
	}
	cuisine := in.Cuisine
	if cuisine == "" {
		cuisine = "any"
	}
	flavor := ""
	if in.FlavorProfile != "" {
		flavor = "\nFLAVOR PROFILE: " + in.FlavorProfile
	}

	system = fmt.Sprintf(`You are a professional chef who creates ONLY realistic, practical recipes using actual food ingredients.

CRITICAL RULES - NEVER VIOLATE:
1. Use ONLY these validated food ingredients: %[1]s
2. DO NOT add any ingredients not in the list above
3. DO NOT create fictional or impossible recipes
4. Servings MUST be exactly %[2]d
5. Total cooking time MUST NOT exceed %[3]s
6. Difficulty level: %[4]s
7. Create realistic portions and measurements for exactly %[2]d serving(s)
8. Use standard cooking methods only

DIETARY RESTRICTIONS: %[5]s
CUISINE PREFERENCE: %[6]s%[7]s

You MUST respond with valid JSON in this EXACT format:
{
    "recipe_title": "Realistic Recipe Name",
    "ingredients": ["ingredient with realistic measurements for %[2]d serving(s)"],
    "instructions": ["clear, practical step-by-step cooking instructions for %[2]d serving(s)"],
    "cooking_time": "actual time needed (max %[3]s)",
    "difficulty": "%[4]s",
    "servings": %[2]d,
    "additional_notes": "practical cooking tips"
}`, ingredients, in.Servings, in.MaxCookingTime, in.Difficulty, diets, cuisine, flavor)

	requirementsFlavor := ""
	if in.FlavorProfile != "" {
		requirementsFlavor = "\n- Flavor profile: " + in.FlavorProfile
	}
	user = fmt.Sprintf(`Create a realistic recipe using ONLY these ingredients: %[1]s

Context from database: %[2]s

Requirements:
- Use ONLY the ingredients listed above
- Servings: exactly %[3]d
- Maximum time: %[4]s
- Difficulty: %[5]s
- Dietary restrictions: %[6]s
- Cuisine: %[7]s%[8]s

Create a practical, cookable recipe for exactly %[3]d serving(s).`,
		ingredients, buildContext(in.Chunks, in.WebRecipes, in.WebContextLimit), in.Servings,
		in.MaxCookingTime, in.Difficulty, diets, cuisine, requirementsFlavor)

	return system, user
}

func buildContext(chunks []recipe.RetrievedChunk, web []recipe.WebRecipe, webLimit int) string {
	webLimit = max(webLimit, 0)
	parts := make([]string, 0, len(chunks)+webLimit)
	for _, c := range chunks {
		parts = append(parts, "Context: "+c.Content)
	}
	for i, w := range web {
		if i == webLimit {
			break
		}
		title := w.Title
		if title == "" {
			title = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("Web Recipe: %s - %s", title, w.Summary))
	}
	return strings.Join(parts, "\n\n")
}
