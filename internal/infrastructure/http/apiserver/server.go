// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/ragchef/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/ragchef/internal/infrastructure/monitoring"
	"github.com/alchemorsel/ragchef/internal/ports/inbound"
	"github.com/alchemorsel/ragchef/pkg/healthcheck"
)

// Server is the recipe assistant's JSON API
type Server struct {
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
	router    *chi.Mux
	assistant inbound.RecipeAssistant
	health    *healthcheck.HealthCheck
	metrics   *monitoring.PipelineMetrics
	openAPI   *OpenAPIHandler
}

// NewServer creates a new API server instance. metrics may be nil.
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	assistant inbound.RecipeAssistant,
	health *healthcheck.HealthCheck,
	metrics *monitoring.PipelineMetrics,
) *Server {
	s := &Server{
		config:    cfg,
		logger:    log.Named("apiserver"),
		assistant: assistant,
		health:    health,
		metrics:   metrics,
		openAPI:   NewOpenAPIHandler(log),
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  orDefault(cfg.Server.ReadTimeout, 30*time.Second),
		WriteTimeout: orDefault(cfg.Server.WriteTimeout, 90*time.Second),
		IdleTimeout:  orDefault(cfg.Server.IdleTimeout, 120*time.Second),
	}
	return s
}

// setupRoutes configures the router
func (s *Server) setupRoutes() *chi.Mux {
	m := middleware.New(s.config, s.logger)
	r := chi.NewRouter()

	r.Use(m.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(m.Logger)
	r.Use(m.Recovery)
	r.Use(m.Tracing)
	r.Use(m.Security)
	r.Use(m.CORS)
	if s.metrics != nil {
		r.Use(s.metrics.HTTPMiddleware)
	}

	r.Get("/health", s.health.LivenessHandler())
	r.Get("/ready", s.health.ReadinessHandler())
	if s.metrics != nil && s.config.Monitoring.MetricsEnabled {
		path := s.config.Monitoring.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(m.RateLimit)
		r.Use(chimiddleware.Timeout(orDefault(s.config.Server.RequestTimeout, 60*time.Second)))
		r.Use(m.JSONOnly)
		s.setupAPIV1Routes(r)
	})

	return r
}

// setupAPIV1Routes configures API v1 endpoints
func (s *Server) setupAPIV1Routes(r chi.Router) {
	h := handlers.NewAPIHandlers(s.assistant, s.logger)

	r.Get("/openapi.yaml", s.openAPI.ServeOpenAPISpec)
	r.Get("/openapi.json", s.openAPI.ServeOpenAPIJSON)

	r.Route("/recipes", func(r chi.Router) {
		r.Post("/search", h.SearchRecipes)
		r.Post("/generate", h.GenerateRecipe)
	})
	r.Post("/ingredients/validate", h.ValidateIngredients)
	r.Post("/documents", h.IngestDocuments)
	r.Get("/collection", h.GetCollection)
	r.Delete("/collection", h.ResetCollection)
	r.Get("/history", h.ListHistory)
	r.Post("/nutrition", h.Nutrition)
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown. http.ErrServerClosed is not an error.
func (s *Server) Start() error {
	s.logger.Info("Starting JSON API server", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Server returns the underlying HTTP server instance
func (s *Server) Server() *http.Server {
	return s.server
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
