package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

// Client implements outbound.WebRecipeSearcher by calling the recipe MCP
// server. Failures are logged and yield empty results.
type Client struct {
	endpoint      string
	transport     gomcp.Transport
	callTimeout   time.Duration
	healthTimeout time.Duration
	logger        *zap.Logger

	mu      sync.Mutex
	session *gomcp.ClientSession
}

var _ outbound.WebRecipeSearcher = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTransport connects over t instead of streamable HTTP.
func WithTransport(t gomcp.Transport) ClientOption {
	return func(c *Client) { c.transport = t }
}

// NewClient creates a client for the server at cfg.URL. It connects on first use.
func NewClient(cfg config.MCPConfig, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:      cfg.URL,
		callTimeout:   cfg.CallTimeout,
		healthTimeout: cfg.HealthTimeout,
		logger:        logger.Named("mcp-client"),
	}
	if c.callTimeout <= 0 {
		c.callTimeout = 45 * time.Second
	}
	if c.healthTimeout <= 0 {
		c.healthTimeout = 5 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) connect(ctx context.Context) (*gomcp.ClientSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session, nil
	}

	transport := c.transport
	if transport == nil {
		if c.endpoint == "" {
			return nil, errors.New("mcp server url is not configured")
		}
		transport = &gomcp.StreamableClientTransport{
			Endpoint:   c.endpoint,
			HTTPClient: &http.Client{Timeout: c.callTimeout},
			MaxRetries: 1,
		}
	}

	client := gomcp.NewClient(&gomcp.Implementation{Name: "ragchef-pipeline"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mcp server: %w", err)
	}
	c.session = session
	return session, nil
}

func (c *Client) reset() {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()
	if session != nil {
		_ = session.Close()
	}
}

// call invokes tool and decodes its structured result into out.
func (c *Client) call(ctx context.Context, tool string, args, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	session, err := c.connect(ctx)
	if err != nil {
		return err
	}

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{Name: tool, Arguments: args})
	if err != nil {
		c.reset()
		return fmt.Errorf("%s: %w", tool, err)
	}
	if result.IsError {
		return &ToolError{Tool: tool, Message: toolErrorText(result)}
	}
	return decodeResult(result, out)
}

// HealthCheck pings the server
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	session, err := c.connect(ctx)
	if err != nil {
		c.logger.Debug("MCP server not available", zap.Error(err))
		return false
	}
	if err := session.Ping(ctx, nil); err != nil {
		c.logger.Debug("MCP ping failed", zap.Error(err))
		c.reset()
		return false
	}
	return true
}

// SearchRecipes calls search_recipes
func (c *Client) SearchRecipes(ctx context.Context, query string, ingredients []string) []recipe.WebRecipe {
	var out SearchOutput
	if err := c.call(ctx, ToolSearchRecipes, SearchArgs{Query: query, Ingredients: ingredients}, &out); err != nil {
		c.logger.Warn("MCP recipe search failed", zap.Error(err))
		return []recipe.WebRecipe{}
	}
	return nonNil(out.Results)
}

// SearchWebRecipes calls web_search_recipes
func (c *Client) SearchWebRecipes(ctx context.Context, ingredients []string, conditions string) ([]recipe.WebRecipe, error) {
	var out WebSearchOutput
	if err := c.call(ctx, ToolWebSearchRecipes, WebSearchArgs{Ingredients: ingredients, Conditions: conditions}, &out); err != nil {
		c.logger.Warn("MCP web search failed", zap.Error(err))
		return []recipe.WebRecipe{}, nil
	}
	return nonNil(out.Recipes), nil
}

// RecipeDetails calls get_recipe. Any failure reads as recipe.ErrRecipeNotFound.
func (c *Client) RecipeDetails(ctx context.Context, id, source string) (*recipe.RecipeDetails, error) {
	var out RecipeOutput
	if err := c.call(ctx, ToolGetRecipe, RecipeArgs{RecipeID: id, Source: source}, &out); err != nil {
		c.logger.Warn("MCP recipe details failed", zap.String("recipe_id", id), zap.Error(err))
		return nil, recipe.ErrRecipeNotFound
	}
	if out.Recipe == nil {
		return nil, recipe.ErrRecipeNotFound
	}
	return out.Recipe, nil
}

// Nutrition calls get_nutrition
func (c *Client) Nutrition(ctx context.Context, ingredients []string) (map[string]recipe.Nutrition, error) {
	var out NutritionOutput
	if err := c.call(ctx, ToolGetNutrition, NutritionArgs{Ingredients: ingredients}, &out); err != nil {
		c.logger.Warn("MCP nutrition lookup failed", zap.Error(err))
		return map[string]recipe.Nutrition{}, nil
	}
	if out.Nutrition == nil {
		out.Nutrition = map[string]recipe.Nutrition{}
	}
	return out.Nutrition, nil
}

// Close ends the session
func (c *Client) Close() error {
	c.reset()
	return nil
}

// ToolError is an error reported by a tool rather than the transport.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return e.Tool + ": " + e.Message
}

func decodeResult(result *gomcp.CallToolResult, out any) error {
	var raw []byte
	if result.StructuredContent != nil {
		b, err := json.Marshal(result.StructuredContent)
		if err != nil {
			return err
		}
		raw = b
	} else {
		for _, content := range result.Content {
			if text, ok := content.(*gomcp.TextContent); ok {
				raw = []byte(text.Text)
				break
			}
		}
	}
	if len(raw) == 0 {
		return errors.New("tool returned no content")
	}
	return json.Unmarshal(raw, out)
}

func toolErrorText(result *gomcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(*gomcp.TextContent); ok && text.Text != "" {
			return text.Text
		}
	}
	return "tool execution failed"
}
