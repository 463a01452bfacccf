// ABOUTME: Centralized configuration for the wodsmith assistant
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Provider endpoints and default models
const (
	GroqBaseURL           = "https://api.groq.com/openai/v1"
	DefaultGroqModel      = "llama-3.3-70b-versatile"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Config holds all configuration for the assistant
type Config struct {
	// LLM settings
	LLMAPIKey             string
	LLMBaseURL            string
	ChatModel             string
	Timeout               time.Duration
	MaxRetries            int
	RetryDelay            time.Duration
	MaxOutputTokens       int
	GenerationTemperature float64
	EditTemperature       float64
	RetrievalCount        int

	// Embedding settings
	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingAPIKey   string
	EmbeddingBaseURL  string
	LocalEmbeddingDim int

	// Vector store settings
	VectorBackend  string
	VectorDBPath   string
	CollectionName string
	DistanceMetric string

	// Charm settings
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// Runtime settings
	SeedDir    string
	SessionTTL time.Duration
	HTTPAddr   string

	// Logging
	LogLevel  string
	LogFile   string
	LogFormat string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	groqKey := os.Getenv("GROQ_API_KEY")
	openAIKey := os.Getenv("OPENAI_API_KEY")

	apiKey := getEnv("LLM_API_KEY", groqKey)
	if apiKey == "" {
		apiKey = openAIKey
	}

	// A bare Groq key routes chat completions to Groq
	onGroq := os.Getenv("LLM_API_KEY") == "" && groqKey != ""
	baseURL := os.Getenv("LLM_BASE_URL")
	chatModel := DefaultOpenAIModel
	if onGroq || baseURL == GroqBaseURL {
		chatModel = DefaultGroqModel
		if baseURL == "" {
			baseURL = GroqBaseURL
		}
	}

	cfg := &Config{
		// Defaults
		LLMAPIKey:             apiKey,
		LLMBaseURL:            baseURL,
		ChatModel:             getEnv("CHAT_MODEL", chatModel),
		Timeout:               getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		MaxRetries:            getEnvInt("LLM_MAX_RETRIES", 0),
		RetryDelay:            getEnvDuration("LLM_RETRY_DELAY", 2*time.Second),
		MaxOutputTokens:       getEnvInt("MAX_OUTPUT_TOKENS", 8000),
		GenerationTemperature: getEnvFloat("GENERATION_TEMPERATURE", 0.7),
		EditTemperature:       getEnvFloat("EDIT_TEMPERATURE", 0.3),
		RetrievalCount:        getEnvInt("RETRIEVAL_COUNT", 3),
		EmbeddingProvider:     getEnv("EMBEDDING_PROVIDER", "local"),
		EmbeddingModel:        getEnv("EMBEDDING_MODEL", DefaultEmbeddingModel),
		EmbeddingAPIKey:       getEnv("EMBEDDING_API_KEY", openAIKey),
		EmbeddingBaseURL:      os.Getenv("EMBEDDING_BASE_URL"),
		LocalEmbeddingDim:     getEnvInt("LOCAL_EMBEDDING_DIM", 512),
		VectorBackend:         getEnv("VECTOR_BACKEND", "sqlite"),
		VectorDBPath:          getEnv("VECTOR_DB_PATH", DefaultDBPath()),
		CollectionName:        getEnv("COLLECTION_NAME", "rutinas_crossfit"),
		DistanceMetric:        getEnv("DISTANCE_METRIC", "cosine"),
		CharmHost:             getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:           getEnv("CHARM_DB", "wodsmith"),
		AutoSync:              getEnvBool("CHARM_AUTO_SYNC", true),
		SeedDir:               getEnv("SEED_DIR", "./data/processed"),
		SessionTTL:            getEnvDuration("SESSION_TTL", 2*time.Hour),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFile:               os.Getenv("LOG_FILE"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("LLM_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("MAX_OUTPUT_TOKENS must be positive, got %d", c.MaxOutputTokens)
	}
	if c.GenerationTemperature < 0 || c.GenerationTemperature > 2 {
		return fmt.Errorf("GENERATION_TEMPERATURE must be 0-2, got %f", c.GenerationTemperature)
	}
	if c.EditTemperature < 0 || c.EditTemperature > 2 {
		return fmt.Errorf("EDIT_TEMPERATURE must be 0-2, got %f", c.EditTemperature)
	}
	if c.RetrievalCount <= 0 {
		return fmt.Errorf("RETRIEVAL_COUNT must be positive, got %d", c.RetrievalCount)
	}
	switch c.EmbeddingProvider {
	case "local", "openai":
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be local or openai, got %q", c.EmbeddingProvider)
	}
	if c.EmbeddingProvider == "local" && c.LocalEmbeddingDim <= 0 {
		return fmt.Errorf("LOCAL_EMBEDDING_DIM must be positive, got %d", c.LocalEmbeddingDim)
	}
	switch c.VectorBackend {
	case "sqlite", "charm", "memory":
	default:
		return fmt.Errorf("VECTOR_BACKEND must be sqlite, charm or memory, got %q", c.VectorBackend)
	}
	switch c.DistanceMetric {
	case "cosine", "l2", "ip":
	default:
		return fmt.Errorf("DISTANCE_METRIC must be cosine, l2 or ip, got %q", c.DistanceMetric)
	}
	if c.CollectionName == "" {
		return fmt.Errorf("COLLECTION_NAME must not be empty")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// RequireLLM reports an error when no chat completion key is configured
func (c *Config) RequireLLM() error {
	if c.LLMAPIKey == "" {
		return fmt.Errorf("no LLM API key: set LLM_API_KEY, GROQ_API_KEY or OPENAI_API_KEY")
	}
	return nil
}

// DefaultDataDir returns the default data directory following the XDG spec.
// XDG_DATA_HOME is read at call time so tests can override it.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "wodsmith")
}

// DefaultDBPath returns the default vector database file path
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "vectors.db")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
