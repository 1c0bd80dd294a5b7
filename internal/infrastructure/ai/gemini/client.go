// Package gemini provides Google Gemini chat and embedding access
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini returned no content")

// Client implements outbound.LLMProvider and outbound.EmbeddingProvider on genai
type Client struct {
	cli            *genai.Client
	model          string
	embeddingModel string
	dimensions     int32
	logger         *zap.Logger
}

var (
	_ outbound.LLMProvider       = (*Client)(nil)
	_ outbound.EmbeddingProvider = (*Client)(nil)
)

// NewClient creates a Gemini client. dimensions truncates embeddings when positive.
func NewClient(ctx context.Context, cfg config.GeminiConfig, dimensions int, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "gemini-embedding-001"
	}

	logger.Info("Gemini client initialized", zap.String("model", model), zap.String("embedding_model", embeddingModel))

	return &Client{
		cli:            cli,
		model:          model,
		embeddingModel: embeddingModel,
		dimensions:     int32(dimensions),
		logger:         logger.Named("gemini-client"),
	}, nil
}

// Name identifies the provider in logs and cache keys
func (c *Client) Name() string {
	return "gemini:" + c.embeddingModel
}

// Complete asks for a JSON answer to the user prompt under the system instruction
func (c *Client) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	temperature := req.Temperature
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
		MaxOutputTokens:  int32(req.MaxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.User}}}},
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return responseText(resp)
}

// Embed returns the retrieval embedding of text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	cfg := &genai.EmbedContentConfig{TaskType: "RETRIEVAL_DOCUMENT"}
	if c.dimensions > 0 {
		dims := c.dimensions
		cfg.OutputDimensionality = &dims
	}

	result, err := c.cli.Models.EmbedContent(ctx, c.embeddingModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		cfg,
	)
	if err != nil {
		return nil, fmt.Errorf("GenAI embed failed: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return result.Embeddings[0].Values, nil
}

// HealthCheck sends a minimal generation request
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Complete(ctx, outbound.CompletionRequest{User: `Reply with {"ok":true}`, MaxTokens: 16})
	return err
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
