package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Environment: "production"},
		Server: config.ServerConfig{
			EnableCORS:     true,
			AllowedOrigins: []string{"https://kitchen.example"},
		},
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 1},
	}
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var body errors.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRequestID(t *testing.T) {
	m := New(testConfig(), zaptest.NewLogger(t))

	t.Run("Incoming_ShouldBeKept", func(t *testing.T) {
		// Arrange
		var seen string
		h := m.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()

		// Act
		h.ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})

	t.Run("Missing_ShouldBeGenerated", func(t *testing.T) {
		// Arrange
		rec := httptest.NewRecorder()

		// Act
		m.RequestID(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		// Assert
		assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
	})
}

func TestRecovery_ShouldRenderInternalError(t *testing.T) {
	// Arrange
	m := New(testConfig(), zaptest.NewLogger(t))
	h := m.RequestID(m.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()

	// Act
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, errors.CodeInternal, body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)
}

func TestCORS(t *testing.T) {
	m := New(testConfig(), zaptest.NewLogger(t))

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"AllowedOrigin_ShouldEchoOrigin", http.MethodGet, "https://kitchen.example", http.StatusOK, "https://kitchen.example"},
		{"UnknownOrigin_ShouldNotSetHeader", http.MethodGet, "https://elsewhere.example", http.StatusOK, ""},
		{"Preflight_ShouldShortCircuit", http.MethodOptions, "https://kitchen.example", http.StatusNoContent, "https://kitchen.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			req := httptest.NewRequest(tt.method, "/api/v1/collection", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			// Act
			m.CORS(okHandler).ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRateLimit_ShouldRejectOverBurst(t *testing.T) {
	// Arrange
	m := New(testConfig(), zaptest.NewLogger(t))
	h := m.RateLimit(okHandler)

	// Act
	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Equal(t, errors.CodeTooManyRequests, decodeError(t, second).Error.Code)
}

func TestSecurity_ShouldSetHeaders(t *testing.T) {
	// Arrange
	m := New(testConfig(), zaptest.NewLogger(t))
	rec := httptest.NewRecorder()

	// Act
	m.Security(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=")
}

func TestJSONOnly(t *testing.T) {
	m := New(testConfig(), zaptest.NewLogger(t))

	t.Run("PlainTextPost_ShouldBeUnsupported", func(t *testing.T) {
		// Arrange
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes", strings.NewReader("rice"))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()

		// Act
		m.JSONOnly(okHandler).ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("JSONPost_ShouldPass", func(t *testing.T) {
		// Arrange
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		rec := httptest.NewRecorder()

		// Act
		m.JSONOnly(okHandler).ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Get_ShouldPass", func(t *testing.T) {
		// Arrange
		rec := httptest.NewRecorder()

		// Act
		m.JSONOnly(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestWriteError(t *testing.T) {
	t.Run("AppError_ShouldUseItsStatus", func(t *testing.T) {
		// Arrange
		rec := httptest.NewRecorder()

		// Act
		WriteError(rec, errors.NewNotFoundError("Recipe"), "req-1")

		// Assert
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		body := decodeError(t, rec)
		assert.Equal(t, "Recipe not found", body.Error.Message)
		assert.Equal(t, "req-1", body.Error.RequestID)
	})

	t.Run("ExplicitStatus_ShouldOverride", func(t *testing.T) {
		// Arrange
		rec := httptest.NewRecorder()

		// Act
		WriteError(rec, errors.NewBadRequestError("bad"), "", http.StatusRequestEntityTooLarge)

		// Assert
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}
