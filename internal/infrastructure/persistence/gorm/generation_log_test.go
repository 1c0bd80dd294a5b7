package gorm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
)

type GenerationLogTestSuite struct {
	suite.Suite
	log *GenerationLog
}

func (s *GenerationLogTestSuite) SetupTest() {
	db, err := SetupDatabase(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = Close(db) })
	s.log = NewGenerationLog(db)
}

func (s *GenerationLogTestSuite) record(title string, outcome recipe.Outcome) {
	query := recipe.Query{Ingredients: []string{"tomato", "basil"}, CookingTime: "under 20 minutes", Difficulty: recipe.DifficultyEasy}
	result := recipe.Result{
		Recipe: recipe.GeneratedRecipe{
			Title:        title,
			Ingredients:  []string{"2 tomatoes", "basil"},
			Instructions: []string{"Slice", "Serve"},
			CookingTime:  "15 minutes",
			Difficulty:   "easy",
			Servings:     2,
		},
		ConfidenceScore: 0.6,
		SourcesUsed:     []string{"1", "web:spoonacular"},
		ChunksRetrieved: 3,
		WebRecipesFound: 1,
		Outcome:         outcome,
	}
	s.Require().NoError(s.log.Record(context.Background(), query, result))
}

func (s *GenerationLogTestSuite) TestRecordAndRecent() {
	ctx := context.Background()

	s.Run("Recent_ShouldReturnNewestFirst", func() {
		// Arrange
		s.record("First", recipe.OutcomeGenerated)
		time.Sleep(5 * time.Millisecond)
		s.record("Second", recipe.OutcomeFallback)

		// Act
		records, err := s.log.Recent(ctx, 0)

		// Assert
		s.Require().NoError(err)
		s.Require().Len(records, 2)
		s.Equal("Second", records[0].Recipe.Title)
		s.Equal(recipe.OutcomeFallback, records[0].Outcome)
		s.Equal("First", records[1].Recipe.Title)
	})

	s.Run("Recent_ShouldRoundTripColumns", func() {
		records, err := s.log.Recent(ctx, 1)

		s.Require().NoError(err)
		s.Require().Len(records, 1)
		r := records[0]
		s.NotEmpty(r.ID)
		s.Equal([]string{"tomato", "basil"}, r.Ingredients)
		s.Equal("under 20 minutes easy", r.Conditions)
		s.Equal([]string{"1", "web:spoonacular"}, r.Sources)
		s.Equal(3, r.Chunks)
		s.Equal(1, r.WebRecipes)
		s.InDelta(0.6, r.Confidence, 1e-9)
		s.Equal(2, r.Recipe.Servings)
		s.Equal([]string{"Slice", "Serve"}, r.Recipe.Instructions)
	})
}

func TestGenerationLogTestSuite(t *testing.T) {
	suite.Run(t, new(GenerationLogTestSuite))
}

func TestSetupDatabase_UnsupportedDriver(t *testing.T) {
	_, err := SetupDatabase(config.DatabaseConfig{Driver: "mysql"})
	require.Error(t, err)

	_, err = SetupDatabase(config.DatabaseConfig{Driver: "postgres"})
	assert.Error(t, err)
}

func TestStringSlice_Scan(t *testing.T) {
	var s StringSlice
	require.NoError(t, s.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringSlice{"a", "b"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(42))
}
