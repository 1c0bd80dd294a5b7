// Package testutils provides mock implementations for testing
package testutils

import (
	"context"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockLLMProvider provides a mock implementation of outbound.LLMProvider
type MockLLMProvider struct {
	mock.Mock
	ProviderName string
}

func (m *MockLLMProvider) Name() string {
	if m.ProviderName == "" {
		return "mock-llm"
	}
	return m.ProviderName
}

func (m *MockLLMProvider) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockLLMProvider) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockEmbeddingProvider provides a mock implementation of outbound.EmbeddingProvider
type MockEmbeddingProvider struct {
	mock.Mock
	ProviderName string
}

func (m *MockEmbeddingProvider) Name() string {
	if m.ProviderName == "" {
		return "mock-embedder"
	}
	return m.ProviderName
}

func (m *MockEmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	vec, _ := args.Get(0).([]float32)
	return vec, args.Error(1)
}

// MockCompletionService provides a mock implementation of outbound.CompletionService
type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockEmbeddingService provides a mock implementation of outbound.EmbeddingService
type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	vec, _ := args.Get(0).([]float32)
	return vec, args.Error(1)
}

// MockVectorStore provides a mock implementation of outbound.VectorStore
type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) EnsureCollection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockVectorStore) AddChunks(ctx context.Context, chunks []recipe.Chunk) (int, error) {
	args := m.Called(ctx, chunks)
	return args.Int(0), args.Error(1)
}

func (m *MockVectorStore) Search(ctx context.Context, vector []float32, topK int) ([]recipe.RetrievedChunk, error) {
	args := m.Called(ctx, vector, topK)
	hits, _ := args.Get(0).([]recipe.RetrievedChunk)
	return hits, args.Error(1)
}

func (m *MockVectorStore) DeleteCollection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockVectorStore) Info(ctx context.Context) (recipe.CollectionInfo, error) {
	args := m.Called(ctx)
	info, _ := args.Get(0).(recipe.CollectionInfo)
	return info, args.Error(1)
}

func (m *MockVectorStore) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockKeywordIndex provides a mock implementation of outbound.KeywordIndex
type MockKeywordIndex struct {
	mock.Mock
}

func (m *MockKeywordIndex) IndexChunks(ctx context.Context, chunks []recipe.Chunk) error {
	return m.Called(ctx, chunks).Error(0)
}

func (m *MockKeywordIndex) Search(ctx context.Context, text string, topK int) ([]recipe.RetrievedChunk, error) {
	args := m.Called(ctx, text, topK)
	hits, _ := args.Get(0).([]recipe.RetrievedChunk)
	return hits, args.Error(1)
}

func (m *MockKeywordIndex) Reset(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockWebRecipeSearcher provides a mock implementation of outbound.WebRecipeSearcher
type MockWebRecipeSearcher struct {
	mock.Mock
}

func (m *MockWebRecipeSearcher) HealthCheck(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockWebRecipeSearcher) SearchWebRecipes(ctx context.Context, ingredients []string, conditions string) ([]recipe.WebRecipe, error) {
	args := m.Called(ctx, ingredients, conditions)
	recipes, _ := args.Get(0).([]recipe.WebRecipe)
	return recipes, args.Error(1)
}

func (m *MockWebRecipeSearcher) RecipeDetails(ctx context.Context, id, source string) (*recipe.RecipeDetails, error) {
	args := m.Called(ctx, id, source)
	details, _ := args.Get(0).(*recipe.RecipeDetails)
	return details, args.Error(1)
}

func (m *MockWebRecipeSearcher) Nutrition(ctx context.Context, ingredients []string) (map[string]recipe.Nutrition, error) {
	args := m.Called(ctx, ingredients)
	facts, _ := args.Get(0).(map[string]recipe.Nutrition)
	return facts, args.Error(1)
}

// MockGenerationLog provides a mock implementation of outbound.GenerationLog
type MockGenerationLog struct {
	mock.Mock
}

func (m *MockGenerationLog) Record(ctx context.Context, query recipe.Query, result recipe.Result) error {
	return m.Called(ctx, query, result).Error(0)
}

func (m *MockGenerationLog) Recent(ctx context.Context, limit int) ([]outbound.GenerationRecord, error) {
	args := m.Called(ctx, limit)
	records, _ := args.Get(0).([]outbound.GenerationRecord)
	return records, args.Error(1)
}
