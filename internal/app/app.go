package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/saurabh4269/website-content-search/features/mcp"
	"github.com/saurabh4269/website-content-search/features/search"
	"github.com/saurabh4269/website-content-search/features/stats"
	"github.com/saurabh4269/website-content-search/internal/config"
	"github.com/saurabh4269/website-content-search/internal/crawler"
	"github.com/saurabh4269/website-content-search/internal/indexer"
	"github.com/saurabh4269/website-content-search/internal/middleware"
	"github.com/saurabh4269/website-content-search/internal/retrieval"
)

// Version is reported by the MCP server and the welcome route.
var Version = "dev"

const shutdownTimeout = 10 * time.Second

type App struct {
	Handler http.Handler
	Search  *search.Service
	Crawler *crawler.Crawler
	Mode    retrieval.Mode

	addr string
}

// Option adjusts how New builds the App.
type Option func(*options)

type options struct {
	queryLogTee io.Writer
}

// WithQueryLogTee copies every query log entry to w in addition to the
// QUERY_LOG_PATH file. Without it entries only go to the file.
func WithQueryLogTee(w io.Writer) Option {
	return func(o *options) { o.queryLogTee = w }
}

func New(cfg *config.Config, deps *Dependencies, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if deps == nil || deps.Embedder == nil || deps.Fetcher == nil {
		return nil, errors.New("app: embedder and fetcher are required")
	}
	if deps.Mode == retrieval.ModeStore && deps.Store == nil {
		return nil, fmt.Errorf("app: mode %s needs a vector store", deps.Mode)
	}

	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath, o.queryLogTee)
	if err != nil {
		fallback := o.queryLogTee
		if fallback == nil {
			fallback = os.Stderr
		}
		slog.Warn("failed to create query log file, logging queries to the fallback stream", "path", cfg.QueryLogPath, "error", err)
		queryLogger = retrieval.NewQueryLogger(fallback)
	}

	// A nil interface keeps the indexer and ranker store-free in fallback mode.
	var store VectorStore
	if deps.Mode == retrieval.ModeStore {
		store = deps.Store
	}

	chunkIndexer := indexer.New(deps.Embedder, store)
	siteCrawler := crawler.New(deps.Fetcher, chunkIndexer)
	ranker := retrieval.NewService(deps.Mode, deps.Embedder, store, deps.Fetcher, queryLogger)
	searchService := search.NewService(deps.Fetcher, siteCrawler, ranker, cfg.CrawlMaxDepth, cfg.SearchLimit)

	searchHandler := search.NewHandler(searchService)
	statsHandler := stats.NewHandler(deps.Mode, store)
	mcpHandler := mcp.NewHandler(searchService, siteCrawler, cfg.CrawlMaxDepth)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", searchHandler.Search)
	mux.HandleFunc("GET /stats", statsHandler.GetStats)
	mux.Handle("/mcp", mcpHandler.HTTPHandler(Version))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"message": "Welcome to Website Content Search API",
			"status":  "running",
			"mode":    deps.Mode.String(),
			"version": Version,
		})
	})

	handler := middleware.CorrelationID(middleware.CORS(cfg.AllowedOrigins)(mux))

	return &App{
		Handler: handler,
		Search:  searchService,
		Crawler: siteCrawler,
		Mode:    deps.Mode,
		addr:    cfg.Addr(),
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "addr", a.addr, "mode", a.Mode)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
