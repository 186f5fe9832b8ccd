package vector

import (
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
)

// Record is the stored form of a chunk. MatchScore is written as 0 and only
// carries a meaning on records returned by a query.
type Record struct {
	Content    string
	URL        string
	Path       string
	MatchScore float64
}

// Object is a record with its embedding, ready to upsert.
type Object struct {
	Record
	Vector []float32
}

// recordNamespace scopes RecordID so ids never collide with other v5 users.
var recordNamespace = uuid.MustParse("6f1c6a0e-5a43-4c2a-9a57-0d3f3c2b8e11")

// RecordID derives a stable id from the page URL and chunk text, so writing
// the same chunk twice replaces it.
func RecordID(url, content string) uuid.UUID {
	return uuid.NewSHA1(recordNamespace, []byte(url+"\n"+content))
}

type Operator string

const (
	OpEqual    Operator = "Equal"
	OpNotEqual Operator = "NotEqual"
)

// Filter is a single-field string comparison against stored properties.
type Filter struct {
	Field    string
	Operator Operator
	Value    string
}

// URLEquals matches records indexed from exactly url.
func URLEquals(url string) Filter {
	return Filter{Field: PropURL, Operator: OpEqual, Value: url}
}

// Where converts f to the client's filter builder.
func (f Filter) Where() *filters.WhereBuilder {
	op := filters.Equal
	if f.Operator == OpNotEqual {
		op = filters.NotEqual
	}
	return filters.Where().
		WithPath([]string{f.Field}).
		WithOperator(op).
		WithValueString(f.Value)
}
