package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/saurabh4269/website-content-search/internal/crawler"
	"github.com/saurabh4269/website-content-search/internal/extract"
	"github.com/saurabh4269/website-content-search/internal/fetch"
	"github.com/saurabh4269/website-content-search/internal/retrieval"
	"github.com/saurabh4269/website-content-search/internal/weburl"
)

var ErrInvalidRequest = errors.New("invalid search request")

type Request struct {
	URL   string `json:"url"`
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidRequest)
	}
	if r.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidRequest)
	}
	return nil
}

// Result is one ranked chunk as presented to callers. MatchScore is a
// percentage.
type Result struct {
	Content    string  `json:"content"`
	MatchScore float64 `json:"match_score"`
	HTML       string  `json:"html"`
	Path       string  `json:"path"`
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

type Crawler interface {
	Crawl(ctx context.Context, startURL string, maxDepth int) crawler.Report
}

type Ranker interface {
	Mode() retrieval.Mode
	Search(ctx context.Context, query, url string, limit int) ([]retrieval.SearchResult, error)
}

type Service struct {
	fetcher    Fetcher
	crawler    Crawler
	ranker     Ranker
	crawlDepth int
	limit      int
}

// NewService wires the search pipeline. crawler is only used when the
// ranker runs in store mode and may be nil otherwise.
func NewService(f Fetcher, c Crawler, r Ranker, crawlDepth, limit int) *Service {
	if limit <= 0 {
		limit = retrieval.DefaultLimit
	}
	return &Service{fetcher: f, crawler: c, ranker: r, crawlDepth: crawlDepth, limit: limit}
}

func (s *Service) Mode() retrieval.Mode {
	return s.ranker.Mode()
}

// Search fetches the page behind req.URL, refreshes the index around it when
// a store is available, then ranks its chunks against req.Query. A failing
// fetch of the searched page is returned as a *fetch.Error.
func (s *Service) Search(ctx context.Context, req Request) ([]Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	url := weburl.Normalize(strings.TrimSpace(req.URL))
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	chunks := extract.Chunks(page.HTML, page.URL)
	slog.InfoContext(ctx, "page extracted", "url", page.URL, "chunks", len(chunks))

	if s.ranker.Mode() == retrieval.ModeStore && s.crawler != nil {
		report := s.crawler.Crawl(ctx, page.URL, s.crawlDepth)
		slog.InfoContext(ctx, "crawl finished",
			"url", page.URL,
			"visited", report.Visited,
			"indexed", report.Indexed,
			"failed", report.Failed,
			"chunks", report.Chunks,
		)
	}

	limit := req.Limit
	if limit == 0 {
		limit = s.limit
	}

	ranked, err := s.ranker.Search(ctx, req.Query, page.URL, limit)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	results := make([]Result, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, Result{
			Content:    r.Content,
			MatchScore: r.Score * 100,
			HTML:       markupFor(r.Content, chunks),
			Path:       displayPath(r.Path),
		})
	}

	slog.InfoContext(ctx, "returning results", "url", page.URL, "count", len(results))
	return results, nil
}

// markupFor joins a ranked record back to the freshly extracted chunk with
// the same trimmed content. Records indexed from another generation of the
// page may have no match.
func markupFor(content string, chunks []extract.Chunk) string {
	want := strings.TrimSpace(content)
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == want {
			return c.HTML
		}
	}
	return ""
}

func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
