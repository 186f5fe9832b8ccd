package app_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saurabh4269/website-content-search/internal/app"
	"github.com/saurabh4269/website-content-search/internal/config"
	"github.com/saurabh4269/website-content-search/internal/retrieval"
)

type countingEnsurer struct {
	calls     int
	failUntil int
}

func (c *countingEnsurer) EnsureSchema(context.Context) error {
	c.calls++
	if c.calls <= c.failUntil {
		return errors.New("schema error")
	}
	return nil
}

func TestEnsureSchemaWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		failUntil int
		wantCalls int
		wantErr   bool
	}{
		{name: "Success", attempts: 1, failUntil: 0, wantCalls: 1},
		{name: "Retries", attempts: 5, failUntil: 2, wantCalls: 3},
		{name: "Exhausted", attempts: 3, failUntil: 10, wantCalls: 3, wantErr: true},
		{name: "Zero Attempts Tries Once", attempts: 0, failUntil: 0, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &countingEnsurer{failUntil: tt.failUntil}
			err := app.EnsureSchemaWithRetry(context.Background(), e, tt.attempts, time.Millisecond)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, e.calls)
		})
	}
}

func TestEnsureSchemaWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &countingEnsurer{failUntil: 10}
	err := app.EnsureSchemaWithRetry(ctx, e, 5, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, e.calls)
}

func mockOllama(t *testing.T) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/version" {
			w.Write([]byte(`{"version":"0.13.5"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func mockWeaviate(t *testing.T) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/meta":
			w.Write([]byte(`{"version": "1.19.0"}`))
		case r.URL.Path == "/v1/.well-known/live":
			w.WriteHeader(http.StatusOK)
		case r.URL.Path == "/v1/schema/HtmlChunk" && r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case r.URL.Path == "/v1/schema" && r.Method == http.MethodPost:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"class":"HtmlChunk"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func bootstrapConfig(ollamaURL, weaviateURL string) *config.Config {
	return &config.Config{
		WeaviateURL:                weaviateURL,
		WeaviateClass:              "HtmlChunk",
		Embedder:                   config.EmbedderOllama,
		OllamaHost:                 ollamaURL,
		OllamaModel:                "all-minilm",
		FetchTimeoutSeconds:        5,
		UserAgent:                  "test-agent",
		BootstrapRetryAttempts:     2,
		BootstrapRetryDelaySeconds: 0,
	}
}

func TestBootstrap_NoStoreConfigured(t *testing.T) {
	cfg := bootstrapConfig(mockOllama(t).URL, "")

	deps, err := app.Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	defer deps.Close()

	assert.Equal(t, retrieval.ModeFallback, deps.Mode)
	assert.Nil(t, deps.Store)
	assert.NotNil(t, deps.Embedder)
	assert.NotNil(t, deps.Fetcher)
}

func TestBootstrap_StoreUnavailableFallsBack(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	cfg := bootstrapConfig(mockOllama(t).URL, deadURL)

	deps, err := app.Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	defer deps.Close()

	assert.Equal(t, retrieval.ModeFallback, deps.Mode)
	assert.Nil(t, deps.Store)
}

func TestBootstrap_StoreFallbackWarnsOnce(t *testing.T) {
	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	schemaCalls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/meta":
			w.Write([]byte(`{"version": "1.19.0"}`))
		case "/v1/.well-known/live":
			w.WriteHeader(http.StatusOK)
		default:
			schemaCalls++
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(ts.Close)

	cfg := bootstrapConfig(mockOllama(t).URL, ts.URL)
	cfg.BootstrapRetryAttempts = 3

	deps, err := app.Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	defer deps.Close()

	assert.Equal(t, retrieval.ModeFallback, deps.Mode)
	assert.GreaterOrEqual(t, schemaCalls, 3)
	assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte(`"level":"WARN"`)), logs.String())
	assert.Equal(t, 3, bytes.Count(logs.Bytes(), []byte("failed to ensure weaviate schema")))
}

func TestBootstrap_StoreMode(t *testing.T) {
	cfg := bootstrapConfig(mockOllama(t).URL, mockWeaviate(t).URL)

	deps, err := app.Bootstrap(context.Background(), cfg)
	require.NoError(t, err)
	defer deps.Close()

	assert.Equal(t, retrieval.ModeStore, deps.Mode)
	assert.NotNil(t, deps.Store)
}

func TestBootstrap_GeminiWithoutKey(t *testing.T) {
	cfg := bootstrapConfig("", "")
	cfg.Embedder = config.EmbedderGemini

	deps, err := app.Bootstrap(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, deps)
}

func TestBootstrap_UnknownEmbedder(t *testing.T) {
	cfg := bootstrapConfig("", "")
	cfg.Embedder = "word2vec"

	_, err := app.Bootstrap(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}
