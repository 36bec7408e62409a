package resource

import (
	"fmt"
	"strings"

	"github.com/compcontext/notedex/internal/db"
	"github.com/compcontext/notedex/internal/domain"
	"github.com/compcontext/notedex/internal/domain/search/filter"
)

// HNSWConfig carries HNSW graph build parameters for the vector field.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex creates the catalog index definition: one TAG field per facet
// plus the HNSW vector field.
func buildIndex(vectorDim int, hnsw HNSWConfig) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:   IndexName(),
		Prefix: keyPrefix(),
		Fields: []db.FieldDefinition{
			{Name: fieldLanguage, Type: db.FieldTypeTag},
			{Name: fieldCourseLevel, Type: db.FieldTypeTag},
			{Name: fieldSequencePosition, Type: db.FieldTypeTag},
			{Name: fieldFileType, Type: db.FieldTypeTag},
			{
				Name: fieldVector,
				Type: db.FieldTypeVector,
				Vector: &db.VectorOptions{
					Algorithm:      db.VectorAlgoHNSW,
					Dimensions:     vectorDim,
					DistanceMetric: db.DistanceCosine,
					M:              hnsw.M,
					EFConstruction: hnsw.EFConstruct,
				},
			},
		},
	}
}

// IndexName returns the FT index name for the catalog.
func IndexName() string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, domain.ResourceCollection)
}

func keyPrefix() string {
	return fmt.Sprintf("%s%s:", domain.KeyPrefix, domain.ResourceCollection)
}

func resourceKey(id string) string {
	return keyPrefix() + id
}

func extractID(key string) string {
	return strings.TrimPrefix(key, keyPrefix())
}

// buildFacetQuery translates the facet criteria of a filter into an
// FT.SEARCH TAG query. Context substring matching stays in-process, so it
// is deliberately absent here. Returns "*" when no facet is active.
func buildFacetQuery(f filter.Filter) string {
	var parts []string
	if v := f.Language(); v != "" {
		parts = append(parts, tagClause(fieldLanguage, v))
	}
	if v := f.CourseLevel(); v != "" {
		parts = append(parts, tagClause(fieldCourseLevel, v))
	}
	if v := f.SequencePosition(); v != "" {
		parts = append(parts, tagClause(fieldSequencePosition, v))
	}
	if v := f.FileType(); v != "" {
		parts = append(parts, tagClause(fieldFileType, v))
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func tagClause(field, value string) string {
	return fmt.Sprintf("@%s:{%s}", field, tagEscaper.Replace(value))
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
