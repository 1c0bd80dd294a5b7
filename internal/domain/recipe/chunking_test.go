package recipe_test

import (
	"strings"
	"testing"
	"time"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ChunkingTestSuite struct {
	suite.Suite
	factory *testutils.DocumentFactory
}

func (suite *ChunkingTestSuite) SetupSuite() {
	suite.factory = testutils.NewDocumentFactory(time.Now().UnixNano())
}

func (suite *ChunkingTestSuite) TestShortDocument() {
	suite.Run("ShortInstructions_ShouldProduceThreeChunks", func() {
		// Arrange
		doc := recipe.Document{
			ID:           "r1",
			Title:        "Garlic Rice",
			Ingredients:  []string{"rice", "garlic"},
			Instructions: []string{"Cook rice.", "Fry garlic."},
			Cuisine:      "asian",
			Difficulty:   "easy",
			CookingTime:  "20 minutes",
		}

		// Act
		chunks := recipe.ChunkDocument(doc, recipe.DefaultChunkSize)

		// Assert
		require.Len(suite.T(), chunks, 3)
		assert.Equal(suite.T(), "r1_title", chunks[0].ID)
		assert.Equal(suite.T(), "Recipe: Garlic Rice", chunks[0].Content)
		assert.Equal(suite.T(), "r1_ingredients", chunks[1].ID)
		assert.Equal(suite.T(), "Ingredients for Garlic Rice: rice, garlic", chunks[1].Content)
		assert.Equal(suite.T(), "r1_instructions", chunks[2].ID)
		assert.Equal(suite.T(), "Instructions for Garlic Rice: Cook rice. Fry garlic.", chunks[2].Content)

		for _, c := range chunks {
			assert.Equal(suite.T(), "r1", c.DocID)
			meta := c.Metadata()
			assert.Equal(suite.T(), "asian", meta["cuisine"])
			assert.Equal(suite.T(), "easy", meta["difficulty"])
			assert.Equal(suite.T(), "20 minutes", meta["cooking_time"])
			assert.Equal(suite.T(), string(c.Kind), meta["type"])
		}
	})
}

func (suite *ChunkingTestSuite) TestLongDocument() {
	suite.Run("LongInstructions_ShouldSplitIntoWordWindows", func() {
		// Arrange
		doc := suite.factory.LongInstructions(recipe.DefaultChunkSize)
		full := "Instructions for " + doc.Title + ": " + strings.Join(doc.Instructions, " ")
		words := strings.Fields(full)
		window := recipe.DefaultChunkSize / 6

		// Act
		chunks := recipe.ChunkDocument(doc, recipe.DefaultChunkSize)

		// Assert
		instructions := chunks[2:]
		expected := (len(words) + window - 1) / window
		require.Len(suite.T(), instructions, expected)
		assert.Equal(suite.T(), doc.ID+"_instructions_0", instructions[0].ID)
		if len(instructions) > 1 {
			assert.Equal(suite.T(), doc.ID+"_instructions_83", instructions[1].ID)
		}

		var rebuilt []string
		for _, c := range instructions {
			assert.Equal(suite.T(), recipe.ChunkInstructions, c.Kind)
			assert.LessOrEqual(suite.T(), len(strings.Fields(c.Content)), window)
			rebuilt = append(rebuilt, c.Content)
		}
		assert.Equal(suite.T(), strings.Join(words, " "), strings.Join(rebuilt, " "))
	})

	suite.Run("NonPositiveChunkSize_ShouldUseDefault", func() {
		doc := suite.factory.Document()

		assert.Equal(suite.T(),
			recipe.ChunkDocument(doc, recipe.DefaultChunkSize),
			recipe.ChunkDocument(doc, 0))
	})
}

func (suite *ChunkingTestSuite) TestValidate() {
	assert.NoError(suite.T(), suite.factory.Document().Validate())
	assert.ErrorIs(suite.T(), recipe.Document{Ingredients: []string{"x"}, Instructions: []string{"y"}}.Validate(), recipe.ErrMissingTitle)
	assert.ErrorIs(suite.T(), recipe.Document{Title: "T", Instructions: []string{"y"}}.Validate(), recipe.ErrNoIngredients)
	assert.ErrorIs(suite.T(), recipe.Document{Title: "T", Ingredients: []string{"x"}}.Validate(), recipe.ErrNoInstructions)
}

func TestChunkingTestSuite(t *testing.T) {
	suite.Run(t, new(ChunkingTestSuite))
}
