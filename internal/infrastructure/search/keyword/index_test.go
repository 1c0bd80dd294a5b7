package keyword

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
)

type IndexTestSuite struct {
	suite.Suite
	ctx   context.Context
	index *Index
}

func (s *IndexTestSuite) SetupTest() {
	s.ctx = context.Background()
	idx, err := NewIndex(zaptest.NewLogger(s.T()))
	require.NoError(s.T(), err)
	s.index = idx

	docs := []recipe.Document{
		{ID: "soup", Title: "Tomato Soup", Ingredients: []string{"tomato", "basil", "onion"}, Instructions: []string{"Simmer the tomatoes."}, Cuisine: "italian"},
		{ID: "curry", Title: "Chickpea Curry", Ingredients: []string{"chickpeas", "coconut milk"}, Instructions: []string{"Cook the chickpeas."}, Cuisine: "indian"},
	}
	for _, d := range docs {
		require.NoError(s.T(), s.index.IndexChunks(s.ctx, recipe.ChunkDocument(d, 0)))
	}
}

func (s *IndexTestSuite) TearDownTest() {
	_ = s.index.Close()
}

func (s *IndexTestSuite) TestSearch() {
	s.Run("Search_ShouldFindMatchingChunks", func() {
		// Act
		hits, err := s.index.Search(s.ctx, "chickpeas coconut", 5)

		// Assert
		s.Require().NoError(err)
		s.Require().NotEmpty(hits)
		s.Equal("curry", hits[0].DocID)
		s.Equal("indian", hits[0].Metadata["cuisine"])
		s.Greater(hits[0].Score, float32(0))
	})

	s.Run("Search_ShouldReturnNothingForUnknownTerms", func() {
		hits, err := s.index.Search(s.ctx, "saffron", 5)

		s.Require().NoError(err)
		s.Empty(hits)
	})

	s.Run("Search_ShouldRespectTopK", func() {
		hits, err := s.index.Search(s.ctx, "tomato soup basil", 1)

		s.Require().NoError(err)
		s.Len(hits, 1)
		s.Equal("soup", hits[0].DocID)
	})
}

func (s *IndexTestSuite) TestReset() {
	s.Run("Reset_ShouldDropEverything", func() {
		s.Require().NoError(s.index.Reset(s.ctx))

		hits, err := s.index.Search(s.ctx, "tomato", 5)

		s.Require().NoError(err)
		s.Empty(hits)
	})
}

func TestIndexTestSuite(t *testing.T) {
	suite.Run(t, new(IndexTestSuite))
}
