package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/saurabh4269/website-content-search/internal/adapter/gemini"
	"github.com/saurabh4269/website-content-search/internal/adapter/ollama"
	wstore "github.com/saurabh4269/website-content-search/internal/adapter/weaviate"
	"github.com/saurabh4269/website-content-search/internal/config"
	"github.com/saurabh4269/website-content-search/internal/fetch"
	"github.com/saurabh4269/website-content-search/internal/retrieval"
	"github.com/saurabh4269/website-content-search/internal/vector"
)

const embedTimeout = 60 * time.Second

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// VectorStore is everything the app needs from the chunk index.
type VectorStore interface {
	SchemaEnsurer
	Upsert(ctx context.Context, objects []vector.Object) error
	DeleteWhere(ctx context.Context, f vector.Filter) (int, error)
	NearestNeighbors(ctx context.Context, vec []float32, f vector.Filter, limit int) ([]vector.Record, error)
	CountChunks(ctx context.Context) (int, error)
}

// Dependencies are the external collaborators resolved at startup. Store is
// nil in fallback mode and Mode never changes afterwards.
type Dependencies struct {
	Mode     retrieval.Mode
	Store    VectorStore
	Embedder Embedder
	Fetcher  *fetch.Fetcher

	closers []func() error
}

func (d *Dependencies) Close() error {
	var firstErr error
	for _, c := range d.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{
		Mode: retrieval.ModeFallback,
		Fetcher: fetch.NewFetcher(
			fetch.WithTimeout(cfg.FetchTimeout()),
			fetch.WithUserAgent(cfg.UserAgent),
		),
	}

	if err := deps.initEmbedder(ctx, cfg); err != nil {
		return nil, fmt.Errorf("embedder error: %w", err)
	}

	if !cfg.StoreEnabled() {
		slog.WarnContext(ctx, "vector store not configured, using in-memory search")
		return deps, nil
	}

	store, err := connectStore(ctx, cfg)
	if err != nil {
		slog.WarnContext(ctx, "vector store unavailable, using in-memory search",
			"weaviate_url", cfg.WeaviateURL,
			"error", err,
		)
		return deps, nil
	}

	deps.Store = store
	deps.Mode = retrieval.ModeStore
	slog.InfoContext(ctx, "vector store connected", "weaviate_url", cfg.WeaviateURL, "class", store.ClassName())

	return deps, nil
}

func (d *Dependencies) initEmbedder(ctx context.Context, cfg *config.Config) error {
	switch cfg.Embedder {
	case config.EmbedderGemini:
		e, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbeddingModel)
		if err != nil {
			return err
		}
		d.Embedder = e
		d.closers = append(d.closers, e.Close)
	case config.EmbedderOllama:
		e, err := ollama.NewEmbedder(cfg.OllamaHost, cfg.OllamaModel, &http.Client{Timeout: embedTimeout})
		if err != nil {
			return err
		}
		if !e.Available(ctx) {
			slog.WarnContext(ctx, "ollama not reachable, embedding requests will fail until it is", "host", cfg.OllamaHost)
		}
		d.Embedder = e
	default:
		return fmt.Errorf("%w: EMBEDDER %q", config.ErrInvalid, cfg.Embedder)
	}
	return nil
}

func connectStore(ctx context.Context, cfg *config.Config) (*wstore.Store, error) {
	host, scheme, err := cfg.WeaviateEndpoint()
	if err != nil {
		return nil, err
	}

	client, err := vector.Connect(ctx, host, scheme)
	if err != nil {
		return nil, err
	}

	store := wstore.NewStore(client, cfg.WeaviateClass)
	if err := EnsureSchemaWithRetry(ctx, store, cfg.BootstrapRetryAttempts, cfg.RetryDelay()); err != nil {
		return nil, fmt.Errorf("weaviate schema error: %w", err)
	}
	return store, nil
}

// EnsureSchemaWithRetry calls EnsureSchema up to attempts times, sleeping
// delay between failures.
func EnsureSchemaWithRetry(ctx context.Context, store SchemaEnsurer, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = store.EnsureSchema(ctx); err == nil {
			return nil
		}
		slog.InfoContext(ctx, "failed to ensure weaviate schema", "attempt", i+1, "max_attempts", attempts, "error", err)
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
