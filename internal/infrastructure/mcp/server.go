// Package mcp exposes the web recipe sources as an MCP server and provides
// the client the pipeline uses to reach it.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "Recipe MCP Server"

// Tool names.
const (
	ToolSearchRecipes    = "search_recipes"
	ToolWebSearchRecipes = "web_search_recipes"
	ToolGetRecipe        = "get_recipe"
	ToolGetNutrition     = "get_nutrition"
)

var errIngredientsRequired = errors.New("ingredients are required")

// Backend answers the server's tools.
type Backend interface {
	SearchWebRecipes(ctx context.Context, ingredients []string, conditions string) ([]recipe.WebRecipe, error)
	RecipeDetails(ctx context.Context, id, source string) (*recipe.RecipeDetails, error)
	Nutrition(ctx context.Context, ingredients []string) (map[string]recipe.Nutrition, error)
}

// SearchArgs are the search_recipes arguments.
type SearchArgs struct {
	Query       string   `json:"query,omitempty" jsonschema:"free-text description of the wanted dish"`
	Ingredients []string `json:"ingredients" jsonschema:"ingredients to search with"`
}

// SearchOutput is the search_recipes result.
type SearchOutput struct {
	Results []recipe.WebRecipe `json:"results"`
}

// WebSearchArgs are the web_search_recipes arguments.
type WebSearchArgs struct {
	Ingredients []string `json:"ingredients" jsonschema:"ingredients to search with"`
	Conditions  string   `json:"conditions,omitempty" jsonschema:"cooking time, difficulty or diet, e.g. under 30 minutes vegan"`
}

// WebSearchOutput is the web_search_recipes result.
type WebSearchOutput struct {
	Recipes []recipe.WebRecipe `json:"recipes"`
}

// RecipeArgs are the get_recipe arguments.
type RecipeArgs struct {
	RecipeID string `json:"recipe_id" jsonschema:"id returned by a search tool"`
	Source   string `json:"source,omitempty" jsonschema:"spoonacular (default) or edamam"`
}

// RecipeOutput is the get_recipe result.
type RecipeOutput struct {
	Recipe *recipe.RecipeDetails `json:"recipe"`
}

// NutritionArgs are the get_nutrition arguments.
type NutritionArgs struct {
	Ingredients []string `json:"ingredients" jsonschema:"ingredients to look up, at most five are used"`
}

// NutritionOutput is the get_nutrition result.
type NutritionOutput struct {
	Nutrition map[string]recipe.Nutrition `json:"nutrition"`
}

// Server is the recipe MCP server
type Server struct {
	server  *gomcp.Server
	backend Backend
	logger  *zap.Logger
}

// NewServer registers the recipe tools over backend
func NewServer(backend Backend, version string, logger *zap.Logger) *Server {
	s := &Server{
		server:  gomcp.NewServer(&gomcp.Implementation{Name: "ragchef-recipes", Version: version}, nil),
		backend: backend,
		logger:  logger.Named("mcp-server"),
	}

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        ToolSearchRecipes,
		Description: "Search third-party recipe APIs by ingredients",
	}, s.searchRecipes)
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        ToolWebSearchRecipes,
		Description: "Search third-party recipe APIs by ingredients and conditions",
	}, s.webSearchRecipes)
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        ToolGetRecipe,
		Description: "Get the full details of a recipe found by a search tool",
	}, s.getRecipe)
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        ToolGetNutrition,
		Description: "Look up USDA nutrition facts for ingredients",
	}, s.getNutrition)

	return s
}

// MCP returns the underlying SDK server
func (s *Server) MCP() *gomcp.Server {
	return s.server
}

// Handler serves the streamable MCP endpoint at /mcp and a health check at /health
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy", "service": ServiceName})
	})
	r.Handle("/mcp", gomcp.NewStreamableHTTPHandler(func(*http.Request) *gomcp.Server { return s.server }, nil))
	return r
}

func (s *Server) searchRecipes(ctx context.Context, _ *gomcp.CallToolRequest, args SearchArgs) (*gomcp.CallToolResult, SearchOutput, error) {
	if len(args.Ingredients) == 0 {
		return nil, SearchOutput{}, errIngredientsRequired
	}
	results, err := s.backend.SearchWebRecipes(ctx, args.Ingredients, "")
	if err != nil {
		s.logger.Error("search_recipes failed", zap.Error(err))
		return nil, SearchOutput{}, err
	}
	return nil, SearchOutput{Results: nonNil(results)}, nil
}

func (s *Server) webSearchRecipes(ctx context.Context, _ *gomcp.CallToolRequest, args WebSearchArgs) (*gomcp.CallToolResult, WebSearchOutput, error) {
	if len(args.Ingredients) == 0 {
		return nil, WebSearchOutput{}, errIngredientsRequired
	}
	results, err := s.backend.SearchWebRecipes(ctx, args.Ingredients, args.Conditions)
	if err != nil {
		s.logger.Error("web_search_recipes failed", zap.Error(err))
		return nil, WebSearchOutput{}, err
	}
	return nil, WebSearchOutput{Recipes: nonNil(results)}, nil
}

func (s *Server) getRecipe(ctx context.Context, _ *gomcp.CallToolRequest, args RecipeArgs) (*gomcp.CallToolResult, RecipeOutput, error) {
	if args.RecipeID == "" {
		return nil, RecipeOutput{}, errors.New("recipe_id is required")
	}
	details, err := s.backend.RecipeDetails(ctx, args.RecipeID, args.Source)
	if err != nil {
		return nil, RecipeOutput{}, err
	}
	if details == nil {
		return nil, RecipeOutput{}, recipe.ErrRecipeNotFound
	}
	return nil, RecipeOutput{Recipe: details}, nil
}

func (s *Server) getNutrition(ctx context.Context, _ *gomcp.CallToolRequest, args NutritionArgs) (*gomcp.CallToolResult, NutritionOutput, error) {
	if len(args.Ingredients) == 0 {
		return nil, NutritionOutput{}, errIngredientsRequired
	}
	facts, err := s.backend.Nutrition(ctx, args.Ingredients)
	if err != nil {
		return nil, NutritionOutput{}, err
	}
	if facts == nil {
		facts = map[string]recipe.Nutrition{}
	}
	return nil, NutritionOutput{Nutrition: facts}, nil
}

func nonNil(r []recipe.WebRecipe) []recipe.WebRecipe {
	if r == nil {
		return []recipe.WebRecipe{}
	}
	return r
}
