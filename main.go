package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saurabh4269/website-content-search/features/search"
	"github.com/saurabh4269/website-content-search/internal/app"
	"github.com/saurabh4269/website-content-search/internal/config"
	"github.com/saurabh4269/website-content-search/internal/logger"
	"github.com/saurabh4269/website-content-search/internal/retrieval"
	"github.com/saurabh4269/website-content-search/internal/weburl"
)

var version = "dev"

func main() {
	app.Version = version
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:          "website-content-search",
		Short:        "Crawl websites and rank their content against natural language queries",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			// Logs share stdout only with serve; search and crawl print results there.
			out := os.Stderr
			if cmd.Name() == "serve" || cmd.Name() == cmd.Root().Name() {
				out = os.Stdout
			}
			slog.SetDefault(logger.New(out, level))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.SetOut(os.Stdout)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(), newSearchCmd(), newCrawlCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and MCP endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func newSearchCmd() *cobra.Command {
	var (
		url    string
		query  string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Rank the content of a page against a query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeDeps, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDeps()

			results, err := a.Search.Search(cmd.Context(), search.Request{URL: url, Query: query, Limit: limit})
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if asJSON {
				return printJSON(cmd, results)
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results found.")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "  [%d] %s (%.2f%%)\n", i+1, r.Path, r.MatchScore)
				fmt.Fprintf(out, "      %s\n\n", r.Content)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "page to search")
	cmd.Flags().StringVarP(&query, "query", "q", "", "natural language query")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (default from SEARCH_LIMIT)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func newCrawlCmd() *cobra.Command {
	var (
		url   string
		depth int
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl a site and index every page reached",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth < 0 {
				return errors.New("depth must not be negative")
			}
			a, closeDeps, err := build(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDeps()

			if a.Mode != retrieval.ModeStore {
				slog.Warn("no vector store available, pages are crawled but not indexed")
			}

			report := a.Crawler.Crawl(cmd.Context(), weburl.Normalize(strings.TrimSpace(url)), depth)
			return printJSON(cmd, report)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "start URL")
	cmd.Flags().IntVarP(&depth, "depth", "d", 1, "link depth to follow from the start page")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, cfg)
}

// run bootstraps dependencies and serves until ctx is done.
func run(ctx context.Context, cfg *config.Config) error {
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	a, err := app.New(cfg, deps, app.WithQueryLogTee(os.Stdout))
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func build(ctx context.Context) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(cfg, deps)
	if err != nil {
		_ = deps.Close()
		return nil, nil, err
	}
	return a, func() { _ = deps.Close() }, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
