package apiserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/infrastructure/monitoring"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/ragchef/pkg/errors"
	"github.com/alchemorsel/ragchef/pkg/healthcheck"
)

// fakeAssistant records the last query and answers with canned data
type fakeAssistant struct {
	lastQuery      recipe.Query
	lastConditions string
	lastLimit      int
	ingestErr      error
	nutritionErr   error
	resetCalls     int
}

func (f *fakeAssistant) ProcessQuery(_ context.Context, q recipe.Query) recipe.Result {
	f.lastQuery = q
	return recipe.Result{
		Recipe:      recipe.GeneratedRecipe{Title: "Fried Rice", Servings: max(q.Servings, 1)},
		SourcesUsed: []string{"1"},
		Outcome:     recipe.OutcomeGenerated,
	}
}

func (f *fakeAssistant) Search(ctx context.Context, ingredients []string, conditions string) recipe.Result {
	f.lastConditions = conditions
	return f.ProcessQuery(ctx, recipe.Query{Ingredients: ingredients})
}

func (f *fakeAssistant) ValidateIngredients(_ context.Context, ingredients []string) ([]string, []string) {
	var valid, rejected []string
	for _, ing := range ingredients {
		if ing == "plastic" {
			rejected = append(rejected, ing)
			continue
		}
		valid = append(valid, ing)
	}
	return valid, rejected
}

func (f *fakeAssistant) Ingest(_ context.Context, docs []recipe.Document) (recipe.IngestReport, error) {
	if f.ingestErr != nil {
		return recipe.IngestReport{}, f.ingestErr
	}
	return recipe.IngestReport{Documents: len(docs), Chunks: 3 * len(docs), Stored: 3 * len(docs)}, nil
}

func (f *fakeAssistant) IngestFile(context.Context, string) (recipe.IngestReport, error) {
	return recipe.IngestReport{}, nil
}

func (f *fakeAssistant) CollectionInfo(context.Context) (recipe.CollectionInfo, error) {
	return recipe.CollectionInfo{Name: "recipes", PointsCount: 12, Status: "green"}, nil
}

func (f *fakeAssistant) ResetCollection(context.Context) error {
	f.resetCalls++
	return nil
}

func (f *fakeAssistant) Nutrition(_ context.Context, ingredients []string) (map[string]recipe.Nutrition, error) {
	if f.nutritionErr != nil {
		return nil, f.nutritionErr
	}
	return map[string]recipe.Nutrition{ingredients[0]: {Description: "raw"}}, nil
}

func (f *fakeAssistant) History(_ context.Context, limit int) ([]outbound.GenerationRecord, error) {
	f.lastLimit = limit
	return []outbound.GenerationRecord{{ID: "g1", Outcome: recipe.OutcomeGenerated}}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

type ServerTestSuite struct {
	suite.Suite
	assistant *fakeAssistant
	cfg       *config.Config
	handler   http.Handler
}

func (s *ServerTestSuite) SetupTest() {
	s.assistant = &fakeAssistant{}
	s.cfg = &config.Config{
		App:        config.AppConfig{Environment: "test"},
		Server:     config.ServerConfig{Port: 8080, EnableCORS: true, AllowedOrigins: []string{"http://localhost:5173"}},
		Monitoring: config.MonitoringConfig{MetricsEnabled: true, MetricsPath: "/metrics"},
		RateLimit:  config.RateLimitConfig{Enabled: false, RequestsPerSecond: 10, Burst: 10},
	}
	s.build()
}

func (s *ServerTestSuite) build() {
	health := healthcheck.New("test", zaptest.NewLogger(s.T()))
	health.Register("vector_store", healthcheck.NewErrorChecker("vector_store", healthcheck.StatusUnhealthy,
		func(context.Context) error { return nil }))
	s.handler = NewServer(s.cfg, zaptest.NewLogger(s.T()), s.assistant, health, monitoring.NewPipelineMetrics()).Handler()
}

func (s *ServerTestSuite) do(method, path, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func (s *ServerTestSuite) TestRecipes() {
	s.Run("Search_ShouldPassConditionsToAssistant", func() {
		rec, env := s.do(http.MethodPost, "/api/v1/recipes/search",
			`{"ingredients": ["rice", "egg"], "conditions": "under 20 minutes easy"}`)

		s.Equal(http.StatusOK, rec.Code)
		s.True(env.Success)
		s.Equal("under 20 minutes easy", s.assistant.lastConditions)
		var result recipe.Result
		s.Require().NoError(json.Unmarshal(env.Data, &result))
		s.Equal("Fried Rice", result.Recipe.Title)
		s.Equal(recipe.OutcomeGenerated, result.Outcome)
	})

	s.Run("Search_ShouldFallBackToQueryText", func() {
		rec, _ := s.do(http.MethodPost, "/api/v1/recipes/search", `{"query": "quick vegan", "ingredients": ["tofu"]}`)

		s.Equal(http.StatusOK, rec.Code)
		s.Equal("quick vegan", s.assistant.lastConditions)
	})

	s.Run("Search_ShouldRejectEmptyIngredients", func() {
		rec, env := s.do(http.MethodPost, "/api/v1/recipes/search", `{"ingredients": []}`)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.False(env.Success)
		s.Equal(string(apperrors.CodeValidationFailed), env.Error.Code)
		s.NotEmpty(env.Error.RequestID)
	})

	s.Run("Generate_ShouldMapStructuredQuery", func() {
		rec, _ := s.do(http.MethodPost, "/api/v1/recipes/generate",
			`{"ingredients": ["chicken"], "servings": 4, "difficulty_level": "hard", "dietary_restrictions": ["gluten-free"]}`)

		s.Equal(http.StatusOK, rec.Code)
		s.Equal(4, s.assistant.lastQuery.Servings)
		s.Equal(recipe.DifficultyHard, s.assistant.lastQuery.Difficulty)
		s.Equal([]string{"gluten-free"}, s.assistant.lastQuery.DietaryRestrictions)
	})

	s.Run("Generate_ShouldRejectUnknownDifficulty", func() {
		rec, env := s.do(http.MethodPost, "/api/v1/recipes/generate",
			`{"ingredients": ["chicken"], "difficulty_level": "extreme"}`)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal(string(apperrors.CodeValidationFailed), env.Error.Code)
	})

	s.Run("Generate_ShouldRejectTooManyServings", func() {
		rec, _ := s.do(http.MethodPost, "/api/v1/recipes/generate", `{"ingredients": ["chicken"], "servings": 500}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("Post_ShouldRequireJSONContentType", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/search", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()

		s.handler.ServeHTTP(rec, req)

		s.Equal(http.StatusUnsupportedMediaType, rec.Code)
	})

	s.Run("Post_ShouldRejectMalformedJSON", func() {
		rec, env := s.do(http.MethodPost, "/api/v1/recipes/search", `{"ingredients": [`)

		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal(string(apperrors.CodeBadRequest), env.Error.Code)
	})
}

func (s *ServerTestSuite) TestKnowledgeBase() {
	s.Run("ValidateIngredients_ShouldSplitFood", func() {
		rec, env := s.do(http.MethodPost, "/api/v1/ingredients/validate", `{"ingredients": ["rice", "plastic"]}`)

		s.Equal(http.StatusOK, rec.Code)
		var got struct {
			Valid    []string `json:"valid"`
			Rejected []string `json:"rejected"`
		}
		s.Require().NoError(json.Unmarshal(env.Data, &got))
		s.Equal([]string{"rice"}, got.Valid)
		s.Equal([]string{"plastic"}, got.Rejected)
	})

	s.Run("ValidateIngredients_ShouldRejectWhenNothingIsFood", func() {
		rec, env := s.do(http.MethodPost, "/api/v1/ingredients/validate", `{"ingredients": ["plastic"]}`)

		s.Equal(http.StatusUnprocessableEntity, rec.Code)
		s.Equal(string(apperrors.CodeNoValidIngredients), env.Error.Code)
	})

	s.Run("IngestDocuments_ShouldReturnReport", func() {
		rec, env := s.do(http.MethodPost, "/api/v1/documents",
			`{"documents": [{"title": "Toast", "ingredients": ["bread"], "instructions": ["Toast"]}]}`)

		s.Equal(http.StatusCreated, rec.Code)
		var report recipe.IngestReport
		s.Require().NoError(json.Unmarshal(env.Data, &report))
		s.Equal(recipe.IngestReport{Documents: 1, Chunks: 3, Stored: 3}, report)
	})

	s.Run("IngestDocuments_ShouldMapVectorStoreErrors", func() {
		s.assistant.ingestErr = apperrors.NewVectorStoreError("add chunks", errors.New("connection refused"))
		defer func() { s.assistant.ingestErr = nil }()

		rec, env := s.do(http.MethodPost, "/api/v1/documents",
			`{"documents": [{"title": "Toast", "ingredients": ["bread"], "instructions": ["Toast"]}]}`)

		s.Equal(http.StatusBadGateway, rec.Code)
		s.Equal(string(apperrors.CodeVectorStoreError), env.Error.Code)
	})

	s.Run("Collection_ShouldDescribeAndReset", func() {
		rec, env := s.do(http.MethodGet, "/api/v1/collection", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(string(env.Data), `"points_count":12`)

		rec, _ = s.do(http.MethodDelete, "/api/v1/collection", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(1, s.assistant.resetCalls)
	})

	s.Run("History_ShouldParseLimit", func() {
		rec, _ := s.do(http.MethodGet, "/api/v1/history?limit=7", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(7, s.assistant.lastLimit)

		rec, _ = s.do(http.MethodGet, "/api/v1/history?limit=abc", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("Nutrition_ShouldSurfaceUnavailableWebSearch", func() {
		s.assistant.nutritionErr = apperrors.NewAppError(apperrors.CodeServiceUnavailable, "Web recipe search is not configured", "")
		defer func() { s.assistant.nutritionErr = nil }()

		rec, _ := s.do(http.MethodPost, "/api/v1/nutrition", `{"ingredients": ["tomato"]}`)
		s.Equal(http.StatusServiceUnavailable, rec.Code)
	})
}

func (s *ServerTestSuite) TestOperationalEndpoints() {
	s.Run("Health_ShouldAnswerLiveness", func() {
		rec, _ := s.do(http.MethodGet, "/health", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
	})

	s.Run("Ready_ShouldReportChecks", func() {
		rec, _ := s.do(http.MethodGet, "/ready", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "vector_store")
	})

	s.Run("Metrics_ShouldExposeHTTPSeries", func() {
		s.do(http.MethodGet, "/api/v1/collection", "")

		rec, _ := s.do(http.MethodGet, "/metrics", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), "http_requests_total{")
	})

	s.Run("RequestID_ShouldBeEchoed", func() {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()

		s.handler.ServeHTTP(rec, req)

		s.Equal("abc-123", rec.Header().Get("X-Request-ID"))
	})

	s.Run("CORS_ShouldAnswerPreflightForAllowedOrigin", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/recipes/search", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()

		s.handler.ServeHTTP(rec, req)

		s.Equal(http.StatusNoContent, rec.Code)
		s.Equal("http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	s.Run("OpenAPI_ShouldServeJSON", func() {
		rec, _ := s.do(http.MethodGet, "/api/v1/openapi.json", "")
		s.Equal(http.StatusOK, rec.Code)

		var doc map[string]interface{}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &doc))
		s.Equal("3.0.3", doc["openapi"])
	})
}

func (s *ServerTestSuite) TestRateLimit() {
	s.cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1}
	s.build()

	first, _ := s.do(http.MethodGet, "/api/v1/collection", "")
	second, env := s.do(http.MethodGet, "/api/v1/collection", "")
	probe, _ := s.do(http.MethodGet, "/health", "")

	s.Equal(http.StatusOK, first.Code)
	s.Equal(http.StatusTooManyRequests, second.Code)
	s.Equal(string(apperrors.CodeTooManyRequests), env.Error.Code)
	s.Equal(http.StatusOK, probe.Code)
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func TestOpenAPIHandler_ShouldServeYAML(t *testing.T) {
	h := NewOpenAPIHandler(zaptest.NewLogger(t))
	rec := httptest.NewRecorder()

	h.ServeOpenAPISpec(rec, httptest.NewRequest(http.MethodGet, "/api/v1/openapi.yaml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/recipes/search")
}
