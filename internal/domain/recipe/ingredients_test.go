package recipe_test

import (
	"testing"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/stretchr/testify/assert"
)

func TestClassifyIngredient(t *testing.T) {
	t.Run("CommonIngredients_ShouldBeFood", func(t *testing.T) {
		for _, in := range []string{"Chicken", " rice ", "chicken breast", "tomatoes", "coconut milk", "carrot"} {
			assert.Equal(t, recipe.VerdictFood, recipe.ClassifyIngredient(in), in)
		}
	})

	t.Run("NonFoodItems_ShouldBeRejected", func(t *testing.T) {
		for _, in := range []string{"plastic bag", "my phone", "cats", "human", "old shoes", ""} {
			assert.Equal(t, recipe.VerdictNonFood, recipe.ClassifyIngredient(in), in)
		}
	})

	t.Run("FoodHints_ShouldBeFood", func(t *testing.T) {
		for _, in := range []string{"fish sauce", "vanilla extract", "dried apricot", "curry powder"} {
			assert.Equal(t, recipe.VerdictFood, recipe.ClassifyIngredient(in), in)
		}
	})

	t.Run("UnknownItems_ShouldBeUncertain", func(t *testing.T) {
		for _, in := range []string{"kohlrabi", "mango", "za'atar"} {
			assert.Equal(t, recipe.VerdictUncertain, recipe.ClassifyIngredient(in), in)
		}
	})
}

func TestDietaryConflict(t *testing.T) {
	t.Run("Vegetarian_ShouldExcludeMeat", func(t *testing.T) {
		r, ok := recipe.DietaryConflict("Chicken thighs", []string{"vegetarian"})
		assert.True(t, ok)
		assert.Equal(t, "vegetarian", r)

		_, ok = recipe.DietaryConflict("cheddar", []string{"vegetarian"})
		assert.False(t, ok)
	})

	t.Run("Vegan_ShouldExcludeAnimalProducts", func(t *testing.T) {
		for _, in := range []string{"eggs", "honey", "butter", "parmesan"} {
			_, ok := recipe.DietaryConflict(in, []string{"vegan"})
			assert.True(t, ok, in)
		}
		for _, in := range []string{"eggplant", "coconut milk", "peanut butter", "tofu"} {
			_, ok := recipe.DietaryConflict(in, []string{"vegan"})
			assert.False(t, ok, in)
		}
	})

	t.Run("GlutenFree_ShouldExcludeWheat", func(t *testing.T) {
		_, ok := recipe.DietaryConflict("pasta", []string{"gluten-free"})
		assert.True(t, ok)

		_, ok = recipe.DietaryConflict("soy sauce", []string{"gluten-free"})
		assert.True(t, ok)

		_, ok = recipe.DietaryConflict("rice noodles", []string{"gluten-free"})
		assert.False(t, ok)
	})

	t.Run("NutFree_ShouldExcludeNuts", func(t *testing.T) {
		r, ok := recipe.DietaryConflict("peanut butter", []string{"vegan", "nut-free"})
		assert.True(t, ok)
		assert.Equal(t, "nut-free", r)
	})

	t.Run("UnknownRestriction_ShouldBeIgnored", func(t *testing.T) {
		_, ok := recipe.DietaryConflict("beef", []string{"paleo"})
		assert.False(t, ok)
	})
}

func TestMentionsIngredient(t *testing.T) {
	assert.True(t, recipe.MentionsIngredient("2 cups cooked rice", "rice"))
	assert.True(t, recipe.MentionsIngredient("3 tomatoes, diced", "tomato"))
	assert.True(t, recipe.MentionsIngredient("1 tbsp Olive Oil", "olive oil"))
	assert.False(t, recipe.MentionsIngredient("1 tsp salt", "garlic"))
}
