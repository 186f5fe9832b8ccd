package indexer_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/saurabh4269/website-content-search/internal/vector"
)

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

type MockStore struct{ mock.Mock }

func (m *MockStore) DeleteWhere(ctx context.Context, f vector.Filter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) Upsert(ctx context.Context, objects []vector.Object) error {
	args := m.Called(ctx, objects)
	return args.Error(0)
}

// memoryStore applies delete-then-upsert for real so repeated indexing can
// be observed.
type memoryStore struct {
	records map[int]vector.Object
	nextID  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[int]vector.Object)}
}

func (s *memoryStore) DeleteWhere(_ context.Context, f vector.Filter) (int, error) {
	n := 0
	for id, o := range s.records {
		if f.Field == vector.PropURL && o.URL == f.Value {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) Upsert(_ context.Context, objects []vector.Object) error {
	for _, o := range objects {
		// Fresh ids so accumulation shows if invalidation is skipped.
		s.records[s.nextID] = o
		s.nextID++
	}
	return nil
}

func (s *memoryStore) forURL(url string) []vector.Object {
	var out []vector.Object
	for _, o := range s.records {
		if o.URL == url {
			out = append(out, o)
		}
	}
	return out
}
