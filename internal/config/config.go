package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreBadger    = "badger"
	StoreSQLite    = "sqlite"
	StoreSurrealDB = "surrealdb"
	StoreMemory    = "memory"
)

// LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderBedrock   = "bedrock"
	ProviderMock      = "mock"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	Host        string
	Port        int
	Environment string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Persistence
	Store       string
	BadgerDir   string
	SQLiteDSN   string
	HistoryMax  int // turns fetched per message
	ContextTurn int // turns handed to the model

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Redis search cache (empty URL = in-process cache)
	RedisURL       string
	RedisPassword  string
	RedisDB        int
	SearchCacheTTL time.Duration

	// Generation backend
	LLMProvider     string
	LLMModel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	AWSRegion       string
	LLMMaxTokens    int
	LLMTemperature  float64
	LLMTimeout      time.Duration

	// Web search
	GoogleSearchAPIKey   string
	GoogleSearchEngineID string
	SearchTimeout        time.Duration
	SearchRatePerMinute  int

	// Tools
	ToolTimeout      time.Duration
	ToolsParallel    bool
	FabricateDetails bool
	PolicyFile       string
	KeywordsFile     string
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Host:        getEnv("CHATBOT_HOST", "0.0.0.0"),
		Port:        getEnvInt("CHATBOT_PORT", 8000),
		Environment: getEnv("CHATBOT_ENV", "development"),

		LogFile:  getEnv("CHATBOT_LOG_FILE", "/tmp/chatbot.log"),
		LogLevel: parseLogLevel(getEnv("CHATBOT_LOG_LEVEL", "INFO")),

		Store:       strings.ToLower(getEnv("CHATBOT_STORE", StoreBadger)),
		BadgerDir:   getEnv("CHATBOT_BADGER_DIR", "./data/badger"),
		SQLiteDSN:   getEnv("CHATBOT_SQLITE_DSN", "./data/chatbot.db"),
		HistoryMax:  getEnvInt("HISTORY_LIMIT", 10),
		ContextTurn: getEnvInt("CONTEXT_TURNS", 5),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "realestate"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "chatbot"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		RedisURL:       getEnv("REDIS_URL", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		SearchCacheTTL: getEnvDuration("SEARCH_CACHE_TTL", 15*time.Minute),

		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		LLMModel:        getEnv("LLM_MODEL", "gpt-3.5-turbo"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		LLMMaxTokens:    getEnvInt("LLM_MAX_TOKENS", 500),
		LLMTemperature:  getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeout:      getEnvDuration("LLM_TIMEOUT", 60*time.Second),

		GoogleSearchAPIKey:   getEnv("GOOGLE_SEARCH_API_KEY", ""),
		GoogleSearchEngineID: getEnv("GOOGLE_SEARCH_ENGINE_ID", ""),
		SearchTimeout:        getEnvDuration("SEARCH_TIMEOUT", 10*time.Second),
		SearchRatePerMinute:  getEnvInt("SEARCH_RATE_PER_MINUTE", 60),

		ToolTimeout:      getEnvDuration("TOOL_TIMEOUT", 15*time.Second),
		ToolsParallel:    getEnvBool("TOOLS_PARALLEL", false),
		FabricateDetails: getEnvBool("PROPERTY_DETAILS_FABRICATE", true),
		PolicyFile:       getEnv("POLICY_FILE", ""),
		KeywordsFile:     getEnv("KEYWORDS_FILE", ""),
	}
}

// Validate rejects settings that would fail later at wiring time.
func (c Config) Validate() error {
	switch c.Store {
	case StoreBadger, StoreSQLite, StoreSurrealDB, StoreMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic, ProviderOllama, ProviderBedrock, ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider %q", c.LLMProvider)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.HistoryMax < 1 {
		return fmt.Errorf("HISTORY_LIMIT must be at least 1, got %d", c.HistoryMax)
	}
	if c.ContextTurn < 0 {
		return fmt.Errorf("CONTEXT_TURNS must not be negative, got %d", c.ContextTurn)
	}
	return nil
}

// SearchConfigured reports whether web search credentials are present.
func (c Config) SearchConfigured() bool {
	return c.GoogleSearchAPIKey != "" && c.GoogleSearchEngineID != ""
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
