// Package container wires the recipe assistant with Uber FX
package container

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	gormdb "gorm.io/gorm"

	aiservice "github.com/alchemorsel/ragchef/internal/application/ai"
	"github.com/alchemorsel/ragchef/internal/application/pipeline"
	"github.com/alchemorsel/ragchef/internal/infrastructure/ai"
	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/ragchef/internal/infrastructure/mcp"
	"github.com/alchemorsel/ragchef/internal/infrastructure/monitoring"
	gormrepo "github.com/alchemorsel/ragchef/internal/infrastructure/persistence/gorm"
	memcache "github.com/alchemorsel/ragchef/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/ragchef/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/ragchef/internal/infrastructure/search/keyword"
	memvector "github.com/alchemorsel/ragchef/internal/infrastructure/vectorstore/memory"
	"github.com/alchemorsel/ragchef/internal/infrastructure/vectorstore/qdrant"
	"github.com/alchemorsel/ragchef/internal/infrastructure/websearch"
	"github.com/alchemorsel/ragchef/internal/ports/inbound"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
	"github.com/alchemorsel/ragchef/pkg/healthcheck"
	"github.com/alchemorsel/ragchef/pkg/logger"
)

// ConfigPath is the configuration file handed to config.Load. Empty means
// the default search paths.
type ConfigPath string

// CoreModule provides the recipe assistant and everything it depends on.
// The command line tools run on it without the HTTP server.
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	CacheModule,
	AIModule,
	StorageModule,
	WebModule,
	PersistenceModule,
	MonitoringModule,
	PipelineModule,
)

// Module provides the API server on top of CoreModule
var Module = fx.Options(
	CoreModule,
	HealthModule,
	HTTPModule,
	LifecycleModule,
)

// MCPServerModule serves the recipe MCP tools over the web recipe APIs
var MCPServerModule = fx.Options(
	ConfigModule,
	LoggerModule,
	CacheModule,
	fx.Provide(
		func(cfg *config.Config, cache outbound.CacheRepository, log *zap.Logger) mcp.Backend {
			return websearch.NewAggregator(cfg.WebSearch, cache, log)
		},
	),
	fx.Invoke(RegisterMCPServer),
)

// Options returns Module bound to a configuration file
func Options(configPath string) fx.Option {
	return fx.Options(
		fx.Supply(ConfigPath(configPath)),
		Module,
	)
}

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.IsDevelopment(),
			Output:      cfg.App.LogOutput,
		})
	},
)

// CacheModule provides the cache backend. The Redis client is nil unless
// cache.provider is "redis".
var CacheModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config) (goredis.UniversalClient, error) {
		if cfg.Cache.Provider != "redis" {
			return nil, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		return client, nil
	},
	func(cfg *config.Config, client goredis.UniversalClient, log *zap.Logger) (outbound.CacheRepository, error) {
		if client != nil {
			log.Info("Using Redis cache", zap.String("host", cfg.Redis.Host))
			return redis.NewCacheRepository(client, cfg.Redis.KeyPrefix, log), nil
		}
		return memcache.NewCacheRepository(cfg.Cache.Size)
	},
)

// AIModule provides the language model and embedding services
var AIModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) ai.Providers {
		return ai.BuildProviders(context.Background(), cfg.AI, cfg.VectorStore.VectorSize, log)
	},
	func(cfg *config.Config, providers ai.Providers, cache outbound.CacheRepository, log *zap.Logger) *aiservice.Service {
		return aiservice.NewService(providers.LLMs, providers.Embedders, log,
			aiservice.WithEmbeddingCache(cache, cfg.Cache.DefaultTTL),
			aiservice.WithLastResortEmbedder(providers.LastResort),
		)
	},
	func(s *aiservice.Service) outbound.CompletionService { return s },
	func(s *aiservice.Service) outbound.EmbeddingService { return s },
	func(providers ai.Providers, log *zap.Logger) *ai.HealthChecker {
		return ai.NewHealthChecker(providers.LLMs, log)
	},
)

// StorageModule provides the vector store and keyword index
var StorageModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.VectorStore, error) {
		switch cfg.VectorStore.Provider {
		case "memory":
			log.Info("Using in-memory vector store", zap.String("collection", cfg.VectorStore.Collection))
			return memvector.NewStore(cfg.VectorStore.Collection, cfg.VectorStore.VectorSize), nil
		case "qdrant", "":
			store, err := qdrant.NewStore(cfg.VectorStore, log)
			if err != nil {
				return nil, err
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error { return store.Close() },
			})
			return store, nil
		default:
			return nil, fmt.Errorf("unknown vector store provider %q", cfg.VectorStore.Provider)
		}
	},
	func(lc fx.Lifecycle, log *zap.Logger) (outbound.KeywordIndex, error) {
		idx, err := keyword.NewIndex(log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return idx.Close() },
		})
		return idx, nil
	},
)

// WebModule provides web recipe search. With mcp.enabled the pipeline goes
// through the MCP server; otherwise it calls the recipe APIs directly.
var WebModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, cache outbound.CacheRepository, log *zap.Logger) outbound.WebRecipeSearcher {
		if cfg.MCP.Enabled {
			client := mcp.NewClient(cfg.MCP, log)
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error { return client.Close() },
			})
			return client
		}
		return websearch.NewAggregator(cfg.WebSearch, cache, log)
	},
)

// PersistenceModule provides the generation history. Both values are nil
// when database.enabled is false.
var PersistenceModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gormdb.DB, error) {
		if !cfg.Database.Enabled {
			return nil, nil
		}
		db, err := gormrepo.SetupDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		log.Info("Generation history enabled", zap.String("driver", cfg.Database.Driver))
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return gormrepo.Close(db) },
		})
		return db, nil
	},
	func(db *gormdb.DB) outbound.GenerationLog {
		if db == nil {
			return nil
		}
		return gormrepo.NewGenerationLog(db)
	},
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	func(cfg *config.Config) *monitoring.PipelineMetrics {
		if !cfg.Monitoring.MetricsEnabled {
			return nil
		}
		return monitoring.NewPipelineMetrics()
	},
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) *monitoring.TracingProvider {
		tp := monitoring.NewTracingProvider(monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			Enabled:        cfg.Monitoring.TracingEnabled,
		}, log)
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp
	},
	func(tp *monitoring.TracingProvider) trace.Tracer { return tp.Tracer() },
)

// PipelineParams are the pipeline's collaborators
type PipelineParams struct {
	fx.In

	Config      *config.Config
	Logger      *zap.Logger
	Completion  outbound.CompletionService
	Embedding   outbound.EmbeddingService
	VectorStore outbound.VectorStore
	Web         outbound.WebRecipeSearcher
	Keywords    outbound.KeywordIndex
	Cache       outbound.CacheRepository
	History     outbound.GenerationLog
	Metrics     *monitoring.PipelineMetrics
	Tracer      trace.Tracer
}

// PipelineModule provides the recipe assistant
var PipelineModule = fx.Provide(
	func(p PipelineParams) (*pipeline.Pipeline, error) {
		return pipeline.New(pipeline.ConfigFrom(p.Config), pipeline.Dependencies{
			Completion:  p.Completion,
			Embedding:   p.Embedding,
			VectorStore: p.VectorStore,
			Web:         p.Web,
			Keywords:    p.Keywords,
			Cache:       p.Cache,
			History:     p.History,
			Metrics:     p.Metrics,
			Tracer:      p.Tracer,
			Logger:      p.Logger,
		})
	},
	func(p *pipeline.Pipeline) inbound.RecipeAssistant { return p },
)

// HealthParams are the dependencies reported by /ready
type HealthParams struct {
	fx.In

	Config      *config.Config
	Logger      *zap.Logger
	VectorStore outbound.VectorStore
	Models      *ai.HealthChecker
	Web         outbound.WebRecipeSearcher
	Redis       goredis.UniversalClient
	DB          *gormdb.DB
}

// HealthModule provides the health checker
var HealthModule = fx.Provide(NewHealthCheck)

// NewHealthCheck registers a checker per dependency. Web search and a
// partial model outage degrade the service without making it unready.
func NewHealthCheck(p HealthParams) *healthcheck.HealthCheck {
	h := healthcheck.New(p.Config.App.Version, p.Logger)

	h.Register("vector_store", healthcheck.NewErrorChecker("vector_store", healthcheck.StatusUnhealthy, p.VectorStore.HealthCheck))
	h.Register("llm", NewModelChecker(p.Models))
	h.Register("web_search", healthcheck.NewErrorChecker("web_search", healthcheck.StatusDegraded, func(ctx context.Context) error {
		if !p.Web.HealthCheck(ctx) {
			return fmt.Errorf("web search unavailable")
		}
		return nil
	}))
	if p.Redis != nil {
		h.Register("redis", healthcheck.NewRedisChecker(p.Redis))
	}
	if p.DB != nil {
		h.Register("database", healthcheck.NewDatabaseChecker(p.DB))
	}
	return h
}

// NewModelChecker maps the provider chain status onto a health check: all
// providers up is healthy, some up is degraded and none up is unhealthy.
func NewModelChecker(models *ai.HealthChecker) healthcheck.Checker {
	return healthcheck.NewCustomChecker("llm", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
		status := models.CheckHealth(ctx)
		switch status.Overall {
		case "healthy":
			return healthcheck.StatusHealthy, "", status.Details
		case "degraded":
			return healthcheck.StatusDegraded, "some language model providers are unavailable", status.Details
		default:
			return healthcheck.StatusUnhealthy, "no language model provider is available", status.Details
		}
	})
}

// HTTPModule provides the JSON API server
var HTTPModule = fx.Provide(apiserver.NewServer)

// LifecycleModule starts and stops the application
var LifecycleModule = fx.Invoke(RegisterLifecycleHooks)

// RegisterLifecycleHooks prepares the collection and runs the API server
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	store outbound.VectorStore,
	server *apiserver.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting recipe assistant",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			if err := store.EnsureCollection(ctx); err != nil {
				log.Warn("Vector collection not ready", zap.Error(err))
			}

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down recipe assistant")

			timeout := cfg.Server.ShutdownTimeout
			if timeout <= 0 {
				timeout = 30 * time.Second
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}
			_ = log.Sync()
			return nil
		},
	})
}

// RegisterMCPServer runs the recipe MCP server on mcp.port
func RegisterMCPServer(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	backend mcp.Backend,
) {
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.MCP.Port)),
		Handler:           mcp.NewServer(backend, cfg.App.Version, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("Starting recipe MCP server", zap.String("address", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("MCP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down recipe MCP server")
			return srv.Shutdown(ctx)
		},
	})
}
