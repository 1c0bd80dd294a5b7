package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
)

type fakeBackend struct {
	conditions string
}

func (f *fakeBackend) SearchWebRecipes(_ context.Context, ingredients []string, conditions string) ([]recipe.WebRecipe, error) {
	f.conditions = conditions
	return []recipe.WebRecipe{{ID: "101", Title: "Tomato " + ingredients[0], Source: "spoonacular"}}, nil
}

func (f *fakeBackend) RecipeDetails(_ context.Context, id, _ string) (*recipe.RecipeDetails, error) {
	if id != "101" {
		return nil, recipe.ErrRecipeNotFound
	}
	return &recipe.RecipeDetails{ID: "101", Title: "Tomato Pasta", Source: "spoonacular", ReadyInMinutes: 25}, nil
}

func (f *fakeBackend) Nutrition(_ context.Context, ingredients []string) (map[string]recipe.Nutrition, error) {
	out := map[string]recipe.Nutrition{}
	for _, ing := range ingredients {
		out[ing] = recipe.Nutrition{Description: ing + ", raw", Nutrients: []recipe.Nutrient{{Name: "Energy", Amount: 18, Unit: "KCAL"}}}
	}
	return out, nil
}

func connectedClient(t *testing.T, backend Backend) *Client {
	t.Helper()
	ctx := context.Background()
	server := NewServer(backend, "test", zaptest.NewLogger(t))

	serverTransport, clientTransport := gomcp.NewInMemoryTransports()
	serverSession, err := server.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := NewClient(config.MCPConfig{CallTimeout: 5 * time.Second, HealthTimeout: time.Second},
		zaptest.NewLogger(t), WithTransport(clientTransport))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientServer(t *testing.T) {
	ctx := context.Background()

	t.Run("HealthCheck_ShouldPingServer", func(t *testing.T) {
		client := connectedClient(t, &fakeBackend{})
		assert.True(t, client.HealthCheck(ctx))
	})

	t.Run("SearchWebRecipes_ShouldRoundTripConditions", func(t *testing.T) {
		// Arrange
		backend := &fakeBackend{}
		client := connectedClient(t, backend)

		// Act
		results, err := client.SearchWebRecipes(ctx, []string{"basil"}, "vegan")

		// Assert
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "101", results[0].ID)
		assert.Equal(t, "Tomato basil", results[0].Title)
		assert.Equal(t, "vegan", backend.conditions)
	})

	t.Run("SearchWebRecipes_ShouldReturnEmptyOnToolError", func(t *testing.T) {
		client := connectedClient(t, &fakeBackend{})

		results, err := client.SearchWebRecipes(ctx, []string{}, "")

		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("SearchRecipes_ShouldUseSearchTool", func(t *testing.T) {
		client := connectedClient(t, &fakeBackend{})

		results := client.SearchRecipes(ctx, "pasta", []string{"egg"})

		require.Len(t, results, 1)
		assert.Equal(t, "Tomato egg", results[0].Title)
	})

	t.Run("RecipeDetails_ShouldDecodeRecipe", func(t *testing.T) {
		client := connectedClient(t, &fakeBackend{})

		details, err := client.RecipeDetails(ctx, "101", "")

		require.NoError(t, err)
		assert.Equal(t, "Tomato Pasta", details.Title)
		assert.Equal(t, 25, details.ReadyInMinutes)
	})

	t.Run("RecipeDetails_ShouldMapToolErrorToNotFound", func(t *testing.T) {
		client := connectedClient(t, &fakeBackend{})

		_, err := client.RecipeDetails(ctx, "404", "")

		assert.ErrorIs(t, err, recipe.ErrRecipeNotFound)
	})

	t.Run("Nutrition_ShouldDecodeFacts", func(t *testing.T) {
		client := connectedClient(t, &fakeBackend{})

		facts, err := client.Nutrition(ctx, []string{"tomato"})

		require.NoError(t, err)
		require.Contains(t, facts, "tomato")
		assert.Equal(t, "tomato, raw", facts["tomato"].Description)
	})
}

func TestServerTools(t *testing.T) {
	ctx := context.Background()
	server := NewServer(&fakeBackend{}, "test", zaptest.NewLogger(t))

	serverTransport, clientTransport := gomcp.NewInMemoryTransports()
	serverSession, err := server.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	session, err := gomcp.NewClient(&gomcp.Implementation{Name: "test"}, nil).Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	t.Run("ListTools_ShouldExposeRecipeTools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err)

		names := make([]string, 0, len(tools.Tools))
		for _, tool := range tools.Tools {
			names = append(names, tool.Name)
		}
		assert.ElementsMatch(t, []string{ToolSearchRecipes, ToolWebSearchRecipes, ToolGetRecipe, ToolGetNutrition}, names)
	})

	t.Run("GetNutrition_ShouldRejectEmptyIngredients", func(t *testing.T) {
		result, err := session.CallTool(ctx, &gomcp.CallToolParams{
			Name:      ToolGetNutrition,
			Arguments: map[string]any{"ingredients": []string{}},
		})
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, toolErrorText(result), "ingredients are required")
	})
}

func TestHandler_Health(t *testing.T) {
	server := NewServer(&fakeBackend{}, "test", zaptest.NewLogger(t))
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, ServiceName, body["service"])
}

func TestClient_UnconfiguredEndpoint(t *testing.T) {
	client := NewClient(config.MCPConfig{}, zaptest.NewLogger(t))

	assert.False(t, client.HealthCheck(context.Background()))
	results, err := client.SearchWebRecipes(context.Background(), []string{"egg"}, "")
	assert.NoError(t, err)
	assert.Empty(t, results)
}
