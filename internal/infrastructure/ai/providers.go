// Package ai assembles the configured model providers
package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/infrastructure/ai/gemini"
	"github.com/alchemorsel/ragchef/internal/infrastructure/ai/hashembed"
	"github.com/alchemorsel/ragchef/internal/infrastructure/ai/ollama"
	"github.com/alchemorsel/ragchef/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

// dualProvider is a backend serving both chat and embeddings.
type dualProvider interface {
	outbound.LLMProvider
	outbound.EmbeddingProvider
}

// Providers is the ordered provider chain built from configuration.
type Providers struct {
	LLMs       []outbound.LLMProvider
	Embedders  []outbound.EmbeddingProvider
	LastResort outbound.EmbeddingProvider
}

// BuildProviders creates ai.provider followed by ai.fallbacks. A provider
// that cannot be constructed is logged and skipped, so a missing key never
// stops the application from starting.
func BuildProviders(ctx context.Context, cfg config.AIConfig, vectorSize int, logger *zap.Logger) Providers {
	out := Providers{LastResort: hashembed.New(vectorSize)}

	seen := make(map[string]bool)
	for _, name := range append([]string{cfg.Provider}, cfg.Fallbacks...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		p, err := newProvider(ctx, name, cfg, vectorSize, logger)
		if err != nil {
			logger.Warn("AI provider unavailable", zap.String("provider", name), zap.Error(err))
			continue
		}
		out.LLMs = append(out.LLMs, p)
		out.Embedders = append(out.Embedders, p)
	}

	if len(out.LLMs) == 0 {
		logger.Warn("No language model configured; generation will use fallbacks")
	}
	return out
}

func newProvider(ctx context.Context, name string, cfg config.AIConfig, vectorSize int, logger *zap.Logger) (dualProvider, error) {
	switch name {
	case "azure":
		return openai.NewClient(openai.AzureOptions(cfg.Azure, cfg.Timeout), logger)
	case "openai":
		return openai.NewClient(openai.PublicOptions(cfg.OpenAI, cfg.Timeout), logger)
	case "gemini":
		return gemini.NewClient(ctx, cfg.Gemini, vectorSize, logger)
	case "ollama":
		return ollama.NewClient(cfg.Ollama, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
