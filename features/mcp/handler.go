// Package mcp exposes search and crawl as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/saurabh4269/website-content-search/features/search"
	"github.com/saurabh4269/website-content-search/internal/crawler"
	"github.com/saurabh4269/website-content-search/internal/fetch"
	"github.com/saurabh4269/website-content-search/internal/weburl"
)

const serverName = "website-content-search"

type Searcher interface {
	Search(ctx context.Context, req search.Request) ([]search.Result, error)
}

type Crawler interface {
	Crawl(ctx context.Context, startURL string, maxDepth int) crawler.Report
}

// SearchArgs defines the arguments for the search_website tool.
type SearchArgs struct {
	URL   string `json:"url" jsonschema_description:"Website or page URL to search; https:// is assumed when no scheme is given"`
	Query string `json:"query" jsonschema_description:"Natural language query"`
	Limit int    `json:"limit,omitempty" jsonschema_description:"Maximum number of results (default 10)"`
}

// CrawlArgs defines the arguments for the crawl_website tool.
type CrawlArgs struct {
	URL      string `json:"url" jsonschema_description:"Start URL of the crawl"`
	MaxDepth *int   `json:"max_depth,omitempty" jsonschema_description:"Link depth to follow from the start page (default 1)"`
}

type Handler struct {
	searcher     Searcher
	crawler      Crawler
	defaultDepth int
}

func NewHandler(s Searcher, c Crawler, defaultDepth int) *Handler {
	return &Handler{searcher: s, crawler: c, defaultDepth: defaultDepth}
}

// SearchWebsite handles the search_website tool call.
func (h *Handler) SearchWebsite(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.URL) == "" {
		return nil, nil, fmt.Errorf("url is required")
	}
	if strings.TrimSpace(args.Query) == "" {
		return nil, nil, fmt.Errorf("query is required")
	}

	results, err := h.searcher.Search(ctx, search.Request{URL: args.URL, Query: args.Query, Limit: args.Limit})
	if err != nil {
		var fetchErr *fetch.Error
		if errors.As(err, &fetchErr) {
			slog.WarnContext(ctx, "search_website: fetch failed", "url", fetchErr.URL, "error", err)
			return errorResult(err.Error()), nil, nil
		}
		slog.ErrorContext(ctx, "search_website: failed", "url", args.URL, "error", err)
		return nil, nil, err
	}

	slog.InfoContext(ctx, "search_website: success", "url", args.URL, "results", len(results))

	if len(results) == 0 {
		return textResult("No matching content found."), nil, nil
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. [%.1f%%] %s\n%s\n\n", i+1, r.MatchScore, r.Path, r.Content)
	}
	return textResult(strings.TrimSpace(sb.String())), nil, nil
}

// CrawlWebsite handles the crawl_website tool call.
func (h *Handler) CrawlWebsite(ctx context.Context, req *mcp.CallToolRequest, args CrawlArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.URL) == "" {
		return nil, nil, fmt.Errorf("url is required")
	}

	depth := h.defaultDepth
	if args.MaxDepth != nil {
		if *args.MaxDepth < 0 {
			return nil, nil, fmt.Errorf("max_depth must not be negative")
		}
		depth = *args.MaxDepth
	}

	url := weburl.Normalize(strings.TrimSpace(args.URL))
	report := h.crawler.Crawl(ctx, url, depth)

	slog.InfoContext(ctx, "crawl_website: done",
		"url", url,
		"visited", report.Visited,
		"indexed", report.Indexed,
		"failed", report.Failed,
	)

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return textResult(string(body)), nil, nil
}

// NewServer registers the tools on a fresh MCP server.
func (h *Handler) NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version,
	}, &mcp.ServerOptions{
		Instructions: "Use search_website to find the most relevant passages of a page for a question. Use crawl_website to refresh the index for a site before searching it.",
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_website",
		Description: "Rank the content blocks of a web page against a natural language query. Returns passages with their match score and page path.",
	}, h.SearchWebsite)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "crawl_website",
		Description: "Crawl a site from a start URL, following same-host links up to max_depth, and index every page reached.",
	}, h.CrawlWebsite)

	return server
}

// HTTPHandler serves the tools over the streamable HTTP transport.
func (h *Handler) HTTPHandler(version string) http.Handler {
	server := h.NewServer(version)
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
