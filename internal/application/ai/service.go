// Package ai provides the application layer for AI operations
package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alchemorsel/ragchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/ragchef/pkg/errors"
	"go.uber.org/zap"
)

const defaultEmbeddingTTL = 7 * 24 * time.Hour

// Service runs completions and embeddings over an ordered provider chain.
// The first provider is the primary; the rest are tried in order on failure.
type Service struct {
	providers    []outbound.LLMProvider
	embedders    []outbound.EmbeddingProvider
	lastResort   outbound.EmbeddingProvider
	cache        outbound.CacheRepository
	embeddingTTL time.Duration
	logger       *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithEmbeddingCache caches embeddings in cache for ttl.
func WithEmbeddingCache(cache outbound.CacheRepository, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.embeddingTTL = ttl
		}
	}
}

// WithLastResortEmbedder sets the embedder used after every provider failed.
func WithLastResortEmbedder(e outbound.EmbeddingProvider) Option {
	return func(s *Service) { s.lastResort = e }
}

// NewService creates a new AI service with provider fallback
func NewService(providers []outbound.LLMProvider, embedders []outbound.EmbeddingProvider, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		providers:    providers,
		embedders:    embedders,
		embeddingTTL: defaultEmbeddingTTL,
		logger:       logger.Named("ai-service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	s.logger.Info("AI service initialized", zap.Strings("providers", names), zap.Int("embedders", len(embedders)))
	return s
}

// Complete returns the first successful completion in provider order.
func (s *Service) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	if len(s.providers) == 0 {
		return "", apperrors.NewAppError(apperrors.CodeServiceUnavailable, "No language model configured", "")
	}

	var lastErr error
	for i, p := range s.providers {
		text, err := p.Complete(ctx, req)
		if err == nil {
			if i > 0 {
				s.logger.Info("Fallback provider succeeded", zap.String("provider", p.Name()))
			}
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		s.logger.Warn("Provider failed, trying next", zap.String("provider", p.Name()), zap.Error(err))
	}
	return "", apperrors.NewExternalServiceError("language model", lastErr)
}

// Embed returns the embedding for text, consulting the cache first.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	chain := s.embedders
	if s.lastResort != nil {
		chain = append(append([]outbound.EmbeddingProvider(nil), s.embedders...), s.lastResort)
	}
	if len(chain) == 0 {
		return nil, apperrors.NewEmbeddingError(errors.New("no embedding provider configured"))
	}

	var lastErr error
	for _, e := range chain {
		key := embeddingKey(e.Name(), text)
		if vec, ok := s.cached(ctx, key); ok {
			return vec, nil
		}

		vec, err := e.Embed(ctx, text)
		if err == nil && len(vec) > 0 {
			s.store(ctx, key, vec)
			return vec, nil
		}
		if err == nil {
			err = fmt.Errorf("%s returned an empty embedding", e.Name())
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		s.logger.Warn("Embedding provider failed", zap.String("provider", e.Name()), zap.Error(err))
	}
	return nil, apperrors.NewEmbeddingError(lastErr)
}

func (s *Service) cached(ctx context.Context, key string) ([]float32, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil || len(vec) == 0 {
		return nil, false
	}
	return vec, true
}

func (s *Service) store(ctx context.Context, key string, vec []float32) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(vec)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.embeddingTTL); err != nil {
		s.logger.Debug("Failed to cache embedding", zap.Error(err))
	}
}

func embeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + model + ":" + hex.EncodeToString(sum[:])
}
