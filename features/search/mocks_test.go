package search

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/saurabh4269/website-content-search/internal/crawler"
	"github.com/saurabh4269/website-content-search/internal/fetch"
	"github.com/saurabh4269/website-content-search/internal/retrieval"
)

type MockFetcher struct{ mock.Mock }

func (m *MockFetcher) Fetch(ctx context.Context, url string) (*fetch.Page, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fetch.Page), args.Error(1)
}

type MockCrawler struct{ mock.Mock }

func (m *MockCrawler) Crawl(ctx context.Context, startURL string, maxDepth int) crawler.Report {
	args := m.Called(ctx, startURL, maxDepth)
	return args.Get(0).(crawler.Report)
}

type MockRanker struct {
	mock.Mock
	mode retrieval.Mode
}

func (m *MockRanker) Mode() retrieval.Mode { return m.mode }

func (m *MockRanker) Search(ctx context.Context, query, url string, limit int) ([]retrieval.SearchResult, error) {
	args := m.Called(ctx, query, url, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]retrieval.SearchResult), args.Error(1)
}

type MockSearcher struct{ mock.Mock }

func (m *MockSearcher) Search(ctx context.Context, req Request) ([]Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Result), args.Error(1)
}
