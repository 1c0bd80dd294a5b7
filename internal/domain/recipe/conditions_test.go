package recipe_test

import (
	"testing"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// ConditionsTestSuite covers free-text condition parsing
type ConditionsTestSuite struct {
	suite.Suite
	ingredients []string
}

func (suite *ConditionsTestSuite) SetupTest() {
	suite.ingredients = []string{"chicken", "rice"}
}

func (suite *ConditionsTestSuite) TestParseConditions() {
	suite.Run("EmptyConditions_ShouldDefaultToOneServing", func() {
		// Act
		q := recipe.ParseConditions(suite.ingredients, "")

		// Assert
		assert.Equal(suite.T(), 1, q.Servings)
		assert.Empty(suite.T(), q.CookingTime)
		assert.Empty(suite.T(), q.Difficulty)
		assert.Empty(suite.T(), q.DietaryRestrictions)
		assert.Equal(suite.T(), suite.ingredients, q.Ingredients)
	})

	suite.Run("TimeLimit_ShouldNotBeReadAsServings", func() {
		q := recipe.ParseConditions(suite.ingredients, "under 15 mins")

		assert.Equal(suite.T(), "under 15 minutes", q.CookingTime)
		assert.Equal(suite.T(), 1, q.Servings)
	})

	suite.Run("AttachedMinuteSuffix_ShouldParse", func() {
		q := recipe.ParseConditions(suite.ingredients, "less than 25mins")

		assert.Equal(suite.T(), "under 25 minutes", q.CookingTime)
	})

	suite.Run("HourLimit_ShouldParse", func() {
		q := recipe.ParseConditions(suite.ingredients, "under 1 hour")

		assert.Equal(suite.T(), "under 1 hour", q.CookingTime)
		assert.Equal(suite.T(), 60, recipe.ParseCookingMinutes(q.CookingTime))
	})

	suite.Run("DietAndDifficulty_ShouldParse", func() {
		q := recipe.ParseConditions(suite.ingredients, "vegetarian easy")

		assert.Equal(suite.T(), recipe.DifficultyEasy, q.Difficulty)
		assert.Equal(suite.T(), []string{"vegetarian"}, q.DietaryRestrictions)
	})

	suite.Run("DifficultSynonym_ShouldMapToHard", func() {
		q := recipe.ParseConditions(suite.ingredients, "something difficult")

		assert.Equal(suite.T(), recipe.DifficultyHard, q.Difficulty)
	})

	suite.Run("MultipleDiets_ShouldKeepOrder", func() {
		q := recipe.ParseConditions(suite.ingredients, "gluten-free and vegan please")

		assert.Equal(suite.T(), []string{"vegan", "gluten-free"}, q.DietaryRestrictions)
	})

	suite.Run("CombinedConditions_ShouldParseEveryPart", func() {
		q := recipe.ParseConditions(suite.ingredients, "serves 2 vegetarian under 20 mins")

		assert.Equal(suite.T(), 2, q.Servings)
		assert.Equal(suite.T(), "under 20 minutes", q.CookingTime)
		assert.Equal(suite.T(), []string{"vegetarian"}, q.DietaryRestrictions)
	})

	suite.Run("ServingCountBeforeLimit_ShouldNotBecomeTime", func() {
		cases := map[string]struct {
			cooking  string
			servings int
		}{
			"for 4 people under 30 min":  {"under 30 minutes", 4},
			"serves 2 under 1 hour":      {"under 1 hour", 2},
			"serves 3 under 2 hours":     {"under 2 hours", 3},
			"under 6 people and 45 mins": {"under 45 minutes", 6},
			"less than 40 minutes for 2": {"under 40 minutes", 2},
		}
		for text, want := range cases {
			q := recipe.ParseConditions(suite.ingredients, text)
			assert.Equal(suite.T(), want.cooking, q.CookingTime, text)
			assert.Equal(suite.T(), want.servings, q.Servings, text)
		}
	})

	suite.Run("ServingPhrases_ShouldParse", func() {
		cases := map[string]int{
			"serves 4 people":  4,
			"for 6 people":     6,
			"3servings":        3,
			"feeds 5":          5,
			"under 10 min, 8":  8,
			"serves 0":         1,
			"just make dinner": 1,
		}
		for text, want := range cases {
			assert.Equal(suite.T(), want, recipe.ParseConditions(suite.ingredients, text).Servings, text)
		}
	})

	suite.Run("CuisineAndFlavor_ShouldParse", func() {
		q := recipe.ParseConditions(suite.ingredients, "spicy smoky mexican")

		assert.Equal(suite.T(), "mexican", q.Cuisine)
		assert.Equal(suite.T(), "spicy, smoky", q.FlavorProfile)
	})
}

func (suite *ConditionsTestSuite) TestParseCookingMinutes() {
	cases := map[string]int{
		"":                30,
		"quick":           30,
		"25 minutes":      25,
		"under 15 min":    15,
		"2 hours":         120,
		"about 1 hr 30 m": 60,
	}
	for input, want := range cases {
		assert.Equal(suite.T(), want, recipe.ParseCookingMinutes(input), input)
	}
}

func (suite *ConditionsTestSuite) TestConditionsLine() {
	q := recipe.Query{
		CookingTime:         "under 20 minutes",
		Difficulty:          recipe.DifficultyEasy,
		DietaryRestrictions: []string{"vegan", "gluten-free"},
	}

	assert.Equal(suite.T(), "under 20 minutes easy vegan gluten-free", q.Conditions())
	assert.Empty(suite.T(), recipe.Query{}.Conditions())
}

func TestConditionsTestSuite(t *testing.T) {
	suite.Run(t, new(ConditionsTestSuite))
}
