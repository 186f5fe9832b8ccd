// Package crawler walks a site depth-first from a start URL, indexing every
// page it reaches within a depth bound.
package crawler

import (
	"context"
	"log/slog"

	"github.com/saurabh4269/website-content-search/internal/extract"
	"github.com/saurabh4269/website-content-search/internal/fetch"
)

// DefaultMaxDepth follows the links of the start page and stops there.
const DefaultMaxDepth = 1

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

type Indexer interface {
	Index(ctx context.Context, chunks []extract.Chunk, url string) (int, error)
}

// Page is the outcome of visiting one URL.
type Page struct {
	URL         string `json:"url"`
	ResolvedURL string `json:"resolved_url,omitempty"`
	Depth       int    `json:"depth"`
	Chunks      int    `json:"chunks"`
	Error       string `json:"error,omitempty"`
}

// Report summarizes one crawl. Visited counts URLs marked in the visited
// set, including those whose fetch failed.
type Report struct {
	Visited int    `json:"visited"`
	Indexed int    `json:"indexed"`
	Failed  int    `json:"failed"`
	Chunks  int    `json:"chunks"`
	Pages   []Page `json:"pages"`
}

type Crawler struct {
	fetcher Fetcher
	indexer Indexer
}

func New(f Fetcher, i Indexer) *Crawler {
	return &Crawler{fetcher: f, indexer: i}
}

// Crawl visits startURL and, while depth stays below maxDepth, the internal
// links of every page it fetches. Each URL is fetched at most once per call.
// Failures are contained to the branch they occur in.
func (c *Crawler) Crawl(ctx context.Context, startURL string, maxDepth int) Report {
	var report Report
	visited := make(map[string]struct{})
	c.visit(ctx, startURL, 0, maxDepth, visited, &report)
	return report
}

func (c *Crawler) visit(ctx context.Context, url string, depth, maxDepth int, visited map[string]struct{}, report *Report) {
	if depth > maxDepth {
		return
	}
	if _, seen := visited[url]; seen {
		return
	}
	visited[url] = struct{}{}
	report.Visited++

	page := Page{URL: url, Depth: depth}

	fetched, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		slog.WarnContext(ctx, "crawl fetch failed", "url", url, "depth", depth, "error", err)
		page.Error = err.Error()
		report.Failed++
		report.Pages = append(report.Pages, page)
		return
	}
	page.ResolvedURL = fetched.URL

	chunks := extract.Chunks(fetched.HTML, fetched.URL)
	written, err := c.indexer.Index(ctx, chunks, fetched.URL)
	if err != nil {
		slog.WarnContext(ctx, "crawl index failed", "url", fetched.URL, "error", err)
		page.Error = err.Error()
		report.Failed++
	} else {
		page.Chunks = written
		report.Chunks += written
		report.Indexed++
	}
	report.Pages = append(report.Pages, page)

	if depth >= maxDepth {
		return
	}

	for _, link := range extract.InternalLinks(fetched.HTML, fetched.URL) {
		if ctx.Err() != nil {
			return
		}
		c.visit(ctx, link, depth+1, maxDepth, visited, report)
	}
}
