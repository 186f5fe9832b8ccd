package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalid         = errors.New("invalid configuration")
)

const (
	EmbedderGemini = "gemini"
	EmbedderOllama = "ollama"
)

type Config struct {
	// Server
	Host           string   `envconfig:"HOST" default:"0.0.0.0"`
	Port           int      `envconfig:"PORT" default:"8000"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Vector store. An empty URL runs the service without a store.
	WeaviateURL   string `envconfig:"WEAVIATE_URL" default:"http://localhost:8080"`
	WeaviateClass string `envconfig:"WEAVIATE_CLASS" default:"HtmlChunk"`

	// Embeddings
	Embedder             string `envconfig:"EMBEDDER" default:"ollama"`
	GeminiAPIKey         string `envconfig:"GEMINI_API_KEY"`
	GeminiEmbeddingModel string `envconfig:"GEMINI_EMBEDDING_MODEL" default:"gemini-embedding-001"`
	OllamaHost           string `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`
	OllamaModel          string `envconfig:"OLLAMA_MODEL" default:"all-minilm"`

	// Crawl & search
	FetchTimeoutSeconds int    `envconfig:"FETCH_TIMEOUT_SECONDS" default:"10"`
	UserAgent           string `envconfig:"USER_AGENT" default:"Mozilla/5.0"`
	CrawlMaxDepth       int    `envconfig:"CRAWL_MAX_DEPTH" default:"1"`
	SearchLimit         int    `envconfig:"SEARCH_LIMIT" default:"10"`
	QueryLogPath        string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"3"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// .env is optional, the shell environment wins either way
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "../.env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: PORT %d", ErrInvalid, c.Port)
	}
	switch c.Embedder {
	case EmbedderOllama:
		if c.OllamaHost == "" {
			return fmt.Errorf("%w: OLLAMA_HOST", ErrMissingRequired)
		}
	case EmbedderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("%w: EMBEDDER %q", ErrInvalid, c.Embedder)
	}
	if c.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: FETCH_TIMEOUT_SECONDS must be positive", ErrInvalid)
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("%w: SEARCH_LIMIT must be positive", ErrInvalid)
	}
	if c.CrawlMaxDepth < 0 {
		return fmt.Errorf("%w: CRAWL_MAX_DEPTH must not be negative", ErrInvalid)
	}
	if c.WeaviateURL != "" {
		if _, _, err := c.WeaviateEndpoint(); err != nil {
			return err
		}
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.BootstrapRetryDelaySeconds) * time.Second
}

// StoreEnabled reports whether a vector store should be attempted at startup.
func (c *Config) StoreEnabled() bool {
	return strings.TrimSpace(c.WeaviateURL) != ""
}

// WeaviateEndpoint splits WEAVIATE_URL into the host and scheme the weaviate
// client expects.
func (c *Config) WeaviateEndpoint() (host, scheme string, err error) {
	u, err := url.Parse(strings.TrimSpace(c.WeaviateURL))
	if err != nil {
		return "", "", fmt.Errorf("%w: WEAVIATE_URL: %v", ErrInvalid, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("%w: WEAVIATE_URL %q has no host", ErrInvalid, c.WeaviateURL)
	}
	scheme = u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return u.Host, scheme, nil
}
