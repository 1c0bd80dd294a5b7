// Package openai provides chat and embedding access to OpenAI and Azure OpenAI
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

// Options selects the endpoint and models of a Client
type Options struct {
	Name           string
	APIKey         string
	BaseURL        string
	AzureEndpoint  string
	APIVersion     string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
}

// AzureOptions builds Options for an Azure OpenAI resource
func AzureOptions(cfg config.AzureConfig, timeout time.Duration) Options {
	return Options{
		Name:           "azure",
		APIKey:         cfg.APIKey,
		AzureEndpoint:  cfg.Endpoint,
		APIVersion:     cfg.APIVersion,
		Model:          cfg.Deployment,
		EmbeddingModel: cfg.EmbeddingDeployment,
		Timeout:        timeout,
	}
}

// PublicOptions builds Options for api.openai.com or a compatible server
func PublicOptions(cfg config.OpenAIConfig, timeout time.Duration) Options {
	return Options{
		Name:           "openai",
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		EmbeddingModel: cfg.EmbeddingModel,
		Timeout:        timeout,
	}
}

// Client implements outbound.LLMProvider and outbound.EmbeddingProvider
type Client struct {
	name           string
	model          string
	embeddingModel string
	client         *openai.Client
	logger         *zap.Logger
}

var (
	_ outbound.LLMProvider       = (*Client)(nil)
	_ outbound.EmbeddingProvider = (*Client)(nil)
)

// NewClient creates a new OpenAI client
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%s: api key is required", opts.Name)
	}

	var cfg openai.ClientConfig
	if opts.AzureEndpoint != "" {
		cfg = openai.DefaultAzureConfig(opts.APIKey, opts.AzureEndpoint)
		if opts.APIVersion != "" {
			cfg.APIVersion = opts.APIVersion
		}
		// Requests carry deployment names, which must reach Azure unchanged.
		cfg.AzureModelMapperFunc = func(model string) string { return model }
	} else {
		cfg = openai.DefaultConfig(opts.APIKey)
		if opts.BaseURL != "" {
			cfg.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
		}
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	name := opts.Name
	if name == "" {
		name = "openai"
	}

	logger.Info("OpenAI client initialized",
		zap.String("provider", name),
		zap.String("model", opts.Model),
		zap.String("embedding_model", opts.EmbeddingModel))

	return &Client{
		name:           name,
		model:          opts.Model,
		embeddingModel: opts.EmbeddingModel,
		client:         openai.NewClientWithConfig(cfg),
		logger:         logger.Named(name + "-client"),
	}, nil
}

// Name identifies the provider in logs and cache keys
func (c *Client) Name() string {
	return c.name + ":" + c.embeddingModel
}

// Complete sends a system and user message and returns the first choice
func (c *Client) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	if c.model == "" {
		return "", fmt.Errorf("%s: no chat model configured", c.name)
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion failed: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices returned")
	}

	c.logger.Debug("Chat completion successful",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding of text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.embeddingModel == "" {
		return nil, fmt.Errorf("%s: no embedding model configured", c.name)
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("%s embedding failed: %w", c.name, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}

// HealthCheck sends a one-token completion
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.Complete(ctx, outbound.CompletionRequest{User: "ping", MaxTokens: 1})
	return err
}
