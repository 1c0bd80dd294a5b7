package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
	"github.com/alchemorsel/ragchef/test/testutils"
)

func TestBuildProviders(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("BuildProviders_ShouldSkipProvidersMissingKeys", func(t *testing.T) {
		cfg := config.AIConfig{
			Provider:  "azure",
			Fallbacks: []string{"ollama", "ollama", "bogus"},
			Timeout:   time.Second,
			Ollama:    config.OllamaConfig{Host: "http://localhost:11434", Model: "llama3.2", EmbeddingModel: "nomic-embed-text"},
		}

		got := BuildProviders(context.Background(), cfg, 3072, logger)

		assert.Len(t, got.LLMs, 1)
		assert.Len(t, got.Embedders, 1)
		assert.Equal(t, "ollama:nomic-embed-text", got.Embedders[0].Name())
		assert.Equal(t, "hash:3072", got.LastResort.Name())
	})

	t.Run("BuildProviders_ShouldKeepPrimaryFirst", func(t *testing.T) {
		cfg := config.AIConfig{
			Provider:  "openai",
			Fallbacks: []string{"ollama"},
			OpenAI:    config.OpenAIConfig{APIKey: "k", Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-large"},
		}

		got := BuildProviders(context.Background(), cfg, 8, logger)

		assert.Len(t, got.LLMs, 2)
		assert.Equal(t, "openai:text-embedding-3-large", got.LLMs[0].Name())
	})
}

func TestHealthChecker_CheckHealth(t *testing.T) {
	up := &testutils.MockLLMProvider{ProviderName: "up"}
	up.On("HealthCheck", mock.Anything).Return(nil)
	down := &testutils.MockLLMProvider{ProviderName: "down"}
	down.On("HealthCheck", mock.Anything).Return(errors.New("connection refused"))

	tests := []struct {
		name      string
		providers []outbound.LLMProvider
		want      string
	}{
		{"CheckHealth_ShouldBeHealthy", []outbound.LLMProvider{up}, "healthy"},
		{"CheckHealth_ShouldBeDegraded", []outbound.LLMProvider{up, down}, "degraded"},
		{"CheckHealth_ShouldBeCritical", []outbound.LLMProvider{down}, "critical"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := NewHealthChecker(tt.providers, zaptest.NewLogger(t)).CheckHealth(context.Background())
			assert.Equal(t, tt.want, status.Overall)
		})
	}
}
