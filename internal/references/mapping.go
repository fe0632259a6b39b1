package references

import (
	"net/url"

	"github.com/inlethq/triage/pkg/query"
	"github.com/inlethq/triage/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "reference_materials", "rm").
	Project("id", "ID").
	Project("title", "Title").
	Project("industry", "Industry").
	Project("summary", "Summary").
	Project("url", "URL").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for reference queries.
type Filters struct {
	Industry *string `json:"industry,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereEquals("Industry", f.Industry)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if i := values.Get("industry"); i != "" {
		f.Industry = &i
	}

	return f
}

func scanReference(s repository.Scanner) (Reference, error) {
	var ref Reference

	err := s.Scan(
		&ref.ID,
		&ref.Title,
		&ref.Industry,
		&ref.Summary,
		&ref.URL,
		&ref.CreatedAt,
	)

	return ref, err
}
