package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/saurabh4269/website-content-search/internal/extract"
	"github.com/saurabh4269/website-content-search/internal/fetch"
	"github.com/saurabh4269/website-content-search/internal/middleware"
	"github.com/saurabh4269/website-content-search/internal/vector"
)

const DefaultLimit = 10

// overFetch is how many store candidates are requested per wanted result,
// leaving room for the positive-score filter.
const overFetch = 3

// SearchResult has the same shape in both modes.
type SearchResult struct {
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Path    string  `json:"path"`
	Score   float64 `json:"match_score"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type VectorStore interface {
	NearestNeighbors(ctx context.Context, vec []float32, f vector.Filter, limit int) ([]vector.Record, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

type Service struct {
	mode     Mode
	embedder Embedder
	store    VectorStore
	fetcher  Fetcher
	logger   *QueryLogger
}

// NewService builds a ranked search service. store is only consulted in
// ModeStore and fetcher only in ModeFallback. logger may be nil.
func NewService(mode Mode, e Embedder, s VectorStore, f Fetcher, l *QueryLogger) *Service {
	return &Service{mode: mode, embedder: e, store: s, fetcher: f, logger: l}
}

func (s *Service) Mode() Mode {
	return s.mode
}

// Search returns at most limit results for query among the chunks of url,
// sorted by descending score. Results never carry a score <= 0; ties keep
// candidate order.
func (s *Service) Search(ctx context.Context, query, url string, limit int) ([]SearchResult, error) {
	start := time.Now()
	if limit <= 0 {
		limit = DefaultLimit
	}

	var results []SearchResult
	var err error

	defer func() {
		if s.logger != nil && err == nil {
			s.logger.Log(QueryLogEntry{
				Query:         query,
				URL:           url,
				Mode:          s.mode,
				NumResults:    len(results),
				Duration:      time.Since(start),
				CorrelationID: middleware.GetCorrelationID(ctx),
			})
		}
	}()

	switch s.mode {
	case ModeStore:
		results, err = s.searchStore(ctx, query, url, limit)
	case ModeFallback:
		results, err = s.searchLocal(ctx, query, url, limit)
	default:
		err = fmt.Errorf("unknown search mode %q", s.mode)
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) searchStore(ctx context.Context, query, url string, limit int) ([]SearchResult, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := s.store.NearestNeighbors(ctx, vec, vector.URLEquals(url), limit*overFetch)
	if err != nil {
		return nil, fmt.Errorf("nearest neighbors: %w", err)
	}
	slog.DebugContext(ctx, "store candidates", "url", url, "count", len(records))

	candidates := make([]SearchResult, 0, len(records))
	for _, r := range records {
		candidates = append(candidates, SearchResult{
			Content: r.Content,
			URL:     r.URL,
			Path:    r.Path,
			Score:   r.MatchScore,
		})
	}

	return rank(candidates, limit), nil
}

func (s *Service) searchLocal(ctx context.Context, query, url string, limit int) ([]SearchResult, error) {
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	chunks := extract.Chunks(page.HTML, page.URL)
	if len(chunks) == 0 {
		return []SearchResult{}, nil
	}

	texts := make([]string, 0, len(chunks)+1)
	texts = append(texts, query)
	for _, c := range chunks {
		texts = append(texts, c.Content)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d texts", len(vectors), len(texts))
	}

	queryVec := vectors[0]
	candidates := make([]SearchResult, 0, len(chunks))
	for i, c := range chunks {
		candidates = append(candidates, SearchResult{
			Content: c.Content,
			URL:     page.URL,
			Path:    c.Path,
			Score:   Cosine(queryVec, vectors[i+1]),
		})
	}

	return rank(candidates, limit), nil
}

// rank drops non-positive scores, stable-sorts by descending score and keeps
// the first limit entries.
func rank(candidates []SearchResult, limit int) []SearchResult {
	kept := make([]SearchResult, 0, len(candidates))
	for _, c := range candidates {
		if c.Score > 0 {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
