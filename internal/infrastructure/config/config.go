// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	AI          AIConfig          `mapstructure:"ai"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
	WebSearch   WebSearchConfig   `mapstructure:"web_search"`
	MCP         MCPConfig         `mapstructure:"mcp"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Database    DatabaseConfig    `mapstructure:"database"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	LogOutput   string `mapstructure:"log_output"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	EnableCORS      bool          `mapstructure:"enable_cors"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// AIConfig contains language model and embedding configuration
type AIConfig struct {
	Provider    string        `mapstructure:"provider"`
	Fallbacks   []string      `mapstructure:"fallbacks"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Azure       AzureConfig   `mapstructure:"azure"`
	OpenAI      OpenAIConfig  `mapstructure:"openai"`
	Gemini      GeminiConfig  `mapstructure:"gemini"`
	Ollama      OllamaConfig  `mapstructure:"ollama"`
}

// AzureConfig configures an Azure OpenAI deployment
type AzureConfig struct {
	Endpoint            string `mapstructure:"endpoint"`
	APIKey              string `mapstructure:"api_key"`
	APIVersion          string `mapstructure:"api_version"`
	Deployment          string `mapstructure:"deployment"`
	EmbeddingDeployment string `mapstructure:"embedding_deployment"`
}

// OpenAIConfig configures the public OpenAI API or a compatible server
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// GeminiConfig configures Google Gemini
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// OllamaConfig configures a local Ollama server
type OllamaConfig struct {
	Host           string `mapstructure:"host"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// VectorStoreConfig configures the vector database
type VectorStoreConfig struct {
	Provider   string        `mapstructure:"provider"`
	URL        string        `mapstructure:"url"`
	APIKey     string        `mapstructure:"api_key"`
	Collection string        `mapstructure:"collection"`
	VectorSize int           `mapstructure:"vector_size"`
	GRPCPort   int           `mapstructure:"grpc_port"`
	BatchSize  int           `mapstructure:"batch_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// PipelineConfig tunes retrieval and generation
type PipelineConfig struct {
	TopK               int           `mapstructure:"top_k"`
	ChunkSize          int           `mapstructure:"chunk_size"`
	WebContextLimit    int           `mapstructure:"web_context_limit"`
	WebSourceLimit     int           `mapstructure:"web_source_limit"`
	DefaultCookingTime string        `mapstructure:"default_cooking_time"`
	DefaultDifficulty  string        `mapstructure:"default_difficulty"`
	VerdictTTL         time.Duration `mapstructure:"verdict_ttl"`
	KeywordFallback    bool          `mapstructure:"keyword_fallback"`
}

// WebSearchConfig holds third-party recipe API credentials
type WebSearchConfig struct {
	SpoonacularKey string        `mapstructure:"spoonacular_key"`
	SpoonacularURL string        `mapstructure:"spoonacular_url"`
	EdamamAppID    string        `mapstructure:"edamam_app_id"`
	EdamamAppKey   string        `mapstructure:"edamam_app_key"`
	EdamamURL      string        `mapstructure:"edamam_url"`
	USDAKey        string        `mapstructure:"usda_key"`
	USDAURL        string        `mapstructure:"usda_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ResultTTL      time.Duration `mapstructure:"result_ttl"`
	PageSummaries  bool          `mapstructure:"page_summaries"`
}

// MCPConfig configures the recipe MCP server and the pipeline's client to it
type MCPConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Port          int           `mapstructure:"port"`
	URL           string        `mapstructure:"url"`
	HealthTimeout time.Duration `mapstructure:"health_timeout"`
	CallTimeout   time.Duration `mapstructure:"call_timeout"`
}

// CacheConfig selects the cache backend
type CacheConfig struct {
	Provider   string        `mapstructure:"provider"`
	Size       int           `mapstructure:"size"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	PoolSize     int           `mapstructure:"pool_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	MetricsPath    string `mapstructure:"metrics_path"`
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
}

// legacyEnv maps config keys to the environment variable names used by
// existing deployments of the recipe generator.
var legacyEnv = map[string]string{
	"ai.azure.api_key":              "AZURE_OPENAI_KEY",
	"ai.azure.api_version":          "AZURE_OPENAI_API_VERSION",
	"ai.azure.endpoint":             "AZURE_OPENAI_ENDPOINT",
	"ai.azure.deployment":           "AZURE_OPENAI_DEPLOYMENT",
	"ai.azure.embedding_deployment": "AZURE_OPENAI_EMBEDDING_DEPLOYMENT",
	"ai.openai.api_key":             "OPENAI_API_KEY",
	"ai.gemini.api_key":             "GEMINI_API_KEY",
	"ai.ollama.host":                "OLLAMA_HOST",
	"vector_store.url":              "QDRANT_URL",
	"vector_store.api_key":          "QDRANT_API_KEY",
	"vector_store.collection":       "QDRANT_COLLECTION_NAME",
	"mcp.port":                      "MCP_SERVER_PORT",
	"web_search.spoonacular_key":    "SPOONACULAR_API_KEY",
	"web_search.edamam_app_id":      "EDAMAM_APP_ID",
	"web_search.edamam_app_key":     "EDAMAM_APP_KEY",
	"web_search.usda_key":           "USDA_API_KEY",
}

const envPrefix = "RAGCHEF"

// Load loads configuration from file and environment variables.
// A .env file in the working directory is read first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/ragchef")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.resolve()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ragchef")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")
	v.SetDefault("app.log_output", "stdout")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "90s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("ai.provider", "azure")
	v.SetDefault("ai.fallbacks", []string{})
	v.SetDefault("ai.max_tokens", 1500)
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.azure.api_version", "2024-02-01")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.embedding_model", "text-embedding-3-large")
	v.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	v.SetDefault("ai.gemini.embedding_model", "gemini-embedding-001")
	v.SetDefault("ai.ollama.host", "http://localhost:11434")
	v.SetDefault("ai.ollama.model", "llama3.2")
	v.SetDefault("ai.ollama.embedding_model", "nomic-embed-text")

	v.SetDefault("vector_store.provider", "")
	v.SetDefault("vector_store.collection", "my_rag_documents")
	v.SetDefault("vector_store.vector_size", 3072)
	v.SetDefault("vector_store.grpc_port", 6334)
	v.SetDefault("vector_store.batch_size", 5)
	v.SetDefault("vector_store.timeout", "120s")

	v.SetDefault("pipeline.top_k", 5)
	v.SetDefault("pipeline.chunk_size", 500)
	v.SetDefault("pipeline.web_context_limit", 3)
	v.SetDefault("pipeline.web_source_limit", 2)
	v.SetDefault("pipeline.default_cooking_time", "30 minutes")
	v.SetDefault("pipeline.default_difficulty", "medium")
	v.SetDefault("pipeline.verdict_ttl", "24h")
	v.SetDefault("pipeline.keyword_fallback", true)

	v.SetDefault("web_search.spoonacular_url", "https://api.spoonacular.com")
	v.SetDefault("web_search.edamam_url", "https://api.edamam.com")
	v.SetDefault("web_search.usda_url", "https://api.nal.usda.gov")
	v.SetDefault("web_search.timeout", "30s")
	v.SetDefault("web_search.result_ttl", "1h")
	v.SetDefault("web_search.page_summaries", false)

	v.SetDefault("mcp.enabled", true)
	v.SetDefault("mcp.port", 3000)
	v.SetDefault("mcp.url", "")
	v.SetDefault("mcp.health_timeout", "5s")
	v.SetDefault("mcp.call_timeout", "45s")

	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 10000)
	v.SetDefault("cache.default_ttl", "1h")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.key_prefix", "ragchef:")

	v.SetDefault("database.enabled", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "ragchef.db")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("monitoring.metrics_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.tracing_enabled", true)
}

// resolve fills values derived from other settings.
func (c *Config) resolve() {
	if c.VectorStore.Provider == "" {
		if c.VectorStore.URL != "" {
			c.VectorStore.Provider = "qdrant"
		} else {
			c.VectorStore.Provider = "memory"
		}
	}
	if c.MCP.URL == "" {
		c.MCP.URL = fmt.Sprintf("http://localhost:%d/mcp", c.MCP.Port)
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.MCP.Port < 1 || c.MCP.Port > 65535 {
		return fmt.Errorf("mcp.port must be between 1 and 65535")
	}

	switch c.AI.Provider {
	case "azure", "openai", "gemini", "ollama":
	default:
		return fmt.Errorf("ai.provider %q is not supported", c.AI.Provider)
	}

	switch c.VectorStore.Provider {
	case "memory":
	case "qdrant":
		if c.VectorStore.URL == "" {
			return fmt.Errorf("vector_store.url is required for qdrant")
		}
	default:
		return fmt.Errorf("vector_store.provider %q is not supported", c.VectorStore.Provider)
	}
	if c.VectorStore.VectorSize < 1 {
		return fmt.Errorf("vector_store.vector_size must be positive")
	}

	switch c.Cache.Provider {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.provider %q is not supported", c.Cache.Provider)
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}

	if c.Pipeline.TopK < 1 {
		return fmt.Errorf("pipeline.top_k must be at least 1")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// Address returns the HTTP listen address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
