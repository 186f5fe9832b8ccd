package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// DefaultClassName is the collection chunks are stored in.
const DefaultClassName = "HtmlChunk"

// Property names of a stored chunk.
const (
	PropContent    = "content"
	PropURL        = "url"
	PropPath       = "path"
	PropMatchScore = "match_score"
)

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// Properties returns the chunk schema. url and path use the exact-match
// string type so equality filters never tokenize.
func Properties() []*models.Property {
	return []*models.Property{
		{
			Name:     PropContent,
			DataType: []string{"text"},
		},
		{
			Name:     PropURL,
			DataType: []string{"string"},
		},
		{
			Name:     PropPath,
			DataType: []string{"string"},
		},
		{
			Name:     PropMatchScore,
			DataType: []string{"number"},
		},
	}
}

// EnsureSchema creates className when it is missing and otherwise adds any
// property the existing class lacks. Existing data is never touched.
func EnsureSchema(ctx context.Context, client SchemaClient, className string) error {
	if className == "" {
		className = DefaultClassName
	}

	exists, err := client.ClassExists(ctx, className)
	if err != nil {
		return err
	}

	properties := Properties()

	if !exists {
		class := &models.Class{
			Class:       className,
			Description: "A semantic block of text extracted from a web page",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	class, err := client.GetClass(ctx, className)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, className, p); err != nil {
				return err
			}
		}
	}

	return nil
}
