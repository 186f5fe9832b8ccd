package weaviate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/saurabh4269/website-content-search/internal/vector"
)

type Store struct {
	client    *weaviate.Client
	className string
}

func NewStore(client *weaviate.Client, className string) *Store {
	if className == "" {
		className = vector.DefaultClassName
	}
	return &Store{client: client, className: className}
}

func (s *Store) ClassName() string {
	return s.className
}

// SchemaExists reports whether the chunk class is present.
func (s *Store) SchemaExists(ctx context.Context) (bool, error) {
	return s.client.Schema().ClassExistenceChecker().WithClassName(s.className).Do(ctx)
}

// EnsureSchema creates or evolves the chunk class.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client), s.className)
}

// Upsert writes objects in one batch. Ids derive from url and content, so a
// repeated write replaces the earlier object.
func (s *Store) Upsert(ctx context.Context, objects []vector.Object) error {
	if len(objects) == 0 {
		return nil
	}

	batch := make([]*models.Object, 0, len(objects))
	for _, o := range objects {
		batch = append(batch, &models.Object{
			Class: s.className,
			ID:    strfmt.UUID(vector.RecordID(o.URL, o.Content).String()),
			Properties: map[string]interface{}{
				vector.PropContent:    o.Content,
				vector.PropURL:        o.URL,
				vector.PropPath:       o.Path,
				vector.PropMatchScore: o.MatchScore,
			},
			Vector: o.Vector,
		})
	}

	res, err := s.client.Batch().ObjectsBatcher().WithObjects(batch...).Do(ctx)
	if err != nil {
		return fmt.Errorf("batch upsert: %w", err)
	}

	var failures []string
	for _, r := range res {
		if r.Result == nil || r.Result.Errors == nil {
			continue
		}
		for _, e := range r.Result.Errors.Error {
			if e != nil {
				failures = append(failures, e.Message)
			}
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("batch upsert: %d object errors: %s", len(failures), strings.Join(failures, "; "))
	}

	return nil
}

// DeleteWhere removes every object matching f and returns how many matched.
func (s *Store) DeleteWhere(ctx context.Context, f vector.Filter) (int, error) {
	res, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(s.className).
		WithOutput("minimal").
		WithWhere(f.Where()).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("batch delete: %w", err)
	}
	if res == nil || res.Results == nil {
		return 0, nil
	}
	return int(res.Results.Successful), nil
}

// NearestNeighbors returns up to limit records nearest to vec that match f.
// MatchScore on each result is the cosine similarity 1 - distance.
func (s *Store) NearestNeighbors(ctx context.Context, vec []float32, f vector.Filter, limit int) ([]vector.Record, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	fields := []graphql.Field{
		{Name: vector.PropContent},
		{Name: vector.PropURL},
		{Name: vector.PropPath},
		{Name: vector.PropMatchScore},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithNearVector(nearVector).
		WithWhere(f.Where()).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors[0].Message)
	}

	var records []vector.Record
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return records, nil
	}
	objects, ok := data[s.className].([]interface{})
	if !ok {
		return records, nil
	}

	for _, o := range objects {
		props, ok := o.(map[string]interface{})
		if !ok {
			continue
		}

		var r vector.Record
		r.Content, _ = props[vector.PropContent].(string)
		r.URL, _ = props[vector.PropURL].(string)
		r.Path, _ = props[vector.PropPath].(string)

		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if d, ok := number(additional["distance"]); ok {
				r.MatchScore = 1 - d
			}
		}

		records = append(records, r)
	}

	return records, nil
}

// CountChunks returns the number of stored objects in the class.
func (s *Store) CountChunks(ctx context.Context) (int, error) {
	meta := graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}

	res, err := s.client.GraphQL().Aggregate().
		WithClassName(s.className).
		WithFields(meta).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors[0].Message)
	}

	agg, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	groups, ok := agg[s.className].([]interface{})
	if !ok || len(groups) == 0 {
		return 0, nil
	}
	group, _ := groups[0].(map[string]interface{})
	m, _ := group["meta"].(map[string]interface{})
	count, _ := number(m["count"])
	return int(count), nil
}

// number accepts both JSON numbers and numeric strings; additional fields
// arrive as either depending on the server version.
func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
