// Package indexer replaces the stored chunks of one page with a freshly
// embedded generation.
package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saurabh4269/website-content-search/internal/extract"
	"github.com/saurabh4269/website-content-search/internal/vector"
)

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type Store interface {
	DeleteWhere(ctx context.Context, f vector.Filter) (int, error)
	Upsert(ctx context.Context, objects []vector.Object) error
}

type Indexer struct {
	embedder Embedder
	store    Store
}

// New returns an indexer writing to store. A nil store turns Index into a
// no-op.
func New(e Embedder, s Store) *Indexer {
	return &Indexer{embedder: e, store: s}
}

// Enabled reports whether Index writes anywhere.
func (i *Indexer) Enabled() bool {
	return i != nil && i.store != nil
}

// Index deletes every record stored for url, then upserts chunks under url
// with a zero placeholder score. It returns the number of records written.
func (i *Indexer) Index(ctx context.Context, chunks []extract.Chunk, url string) (int, error) {
	if !i.Enabled() {
		return 0, nil
	}

	deleted, err := i.store.DeleteWhere(ctx, vector.URLEquals(url))
	if err != nil {
		return 0, fmt.Errorf("invalidate %s: %w", url, err)
	}

	if len(chunks) == 0 {
		slog.DebugContext(ctx, "page has no chunks", "url", url, "deleted", deleted)
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for n, c := range chunks {
		texts[n] = c.Content
	}

	vectors, err := i.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", url, err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed %s: got %d vectors for %d chunks", url, len(vectors), len(chunks))
	}

	objects := make([]vector.Object, len(chunks))
	for n, c := range chunks {
		objects[n] = vector.Object{
			Record: vector.Record{
				Content:    c.Content,
				URL:        url,
				Path:       c.Path,
				MatchScore: 0,
			},
			Vector: vectors[n],
		}
	}

	if err := i.store.Upsert(ctx, objects); err != nil {
		return 0, fmt.Errorf("upsert %s: %w", url, err)
	}

	slog.InfoContext(ctx, "page indexed", "url", url, "chunks", len(objects), "replaced", deleted)
	return len(objects), nil
}
