package outbound

import "context"

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// CompletionService produces model text for a prompt.
type CompletionService interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// EmbeddingService turns text into a dense vector.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LLMProvider is one concrete chat model backend.
type LLMProvider interface {
	CompletionService
	Name() string
	HealthCheck(ctx context.Context) error
}

// EmbeddingProvider is one concrete embedding backend.
type EmbeddingProvider interface {
	EmbeddingService
	Name() string
}
