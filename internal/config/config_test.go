package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurabh4269/website-content-search/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "HtmlChunk", cfg.WeaviateClass)
	assert.Equal(t, config.EmbedderOllama, cfg.Embedder)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 1, cfg.CrawlMaxDepth)
	assert.Equal(t, 10, cfg.SearchLimit)
	assert.True(t, cfg.StoreEnabled())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("WEAVIATE_URL", "")
	t.Setenv("CRAWL_MAX_DEPTH", "2")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.False(t, cfg.StoreEnabled())
	assert.Equal(t, 2, cfg.CrawlMaxDepth)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	content := []byte("USER_AGENT=loaded-from-file")
	err := os.WriteFile(".env", content, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(".env")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "loaded-from-file", cfg.UserAgent)
}

func TestLoadConfig_InvalidEmbedder(t *testing.T) {
	t.Setenv("EMBEDDER", "word2vec")

	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func validConfig() config.Config {
	return config.Config{
		Port:                8000,
		WeaviateURL:         "http://localhost:8080",
		Embedder:            config.EmbedderOllama,
		OllamaHost:          "http://localhost:11434",
		FetchTimeoutSeconds: 10,
		SearchLimit:         10,
		CrawlMaxDepth:       1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		errIs  error
	}{
		{name: "Valid Config", modify: func(c *config.Config) {}},
		{name: "No Store Is Valid", modify: func(c *config.Config) { c.WeaviateURL = "" }},
		{name: "Bad Port", modify: func(c *config.Config) { c.Port = 0 }, errIs: config.ErrInvalid},
		{name: "Unknown Embedder", modify: func(c *config.Config) { c.Embedder = "bert" }, errIs: config.ErrInvalid},
		{
			name:   "Gemini Without Key",
			modify: func(c *config.Config) { c.Embedder = config.EmbedderGemini },
			errIs:  config.ErrMissingRequired,
		},
		{
			name: "Gemini With Key",
			modify: func(c *config.Config) {
				c.Embedder = config.EmbedderGemini
				c.GeminiAPIKey = "key"
			},
		},
		{name: "Missing Ollama Host", modify: func(c *config.Config) { c.OllamaHost = "" }, errIs: config.ErrMissingRequired},
		{name: "Zero Timeout", modify: func(c *config.Config) { c.FetchTimeoutSeconds = 0 }, errIs: config.ErrInvalid},
		{name: "Zero Limit", modify: func(c *config.Config) { c.SearchLimit = 0 }, errIs: config.ErrInvalid},
		{name: "Negative Depth", modify: func(c *config.Config) { c.CrawlMaxDepth = -1 }, errIs: config.ErrInvalid},
		{name: "Weaviate URL Without Host", modify: func(c *config.Config) { c.WeaviateURL = "localhost" }, errIs: config.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_WeaviateEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.WeaviateURL = "https://weaviate.internal:8443"

	host, scheme, err := cfg.WeaviateEndpoint()
	require.NoError(t, err)
	assert.Equal(t, "weaviate.internal:8443", host)
	assert.Equal(t, "https", scheme)
}
