package rules

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/pkg/query"
	"github.com/wardenlabs/warden/pkg/repository"
)

var projection = query.
	NewProjectionMap("rules", "r").
	Project("id", "ID").
	Project("name", "Name").
	Project("description", "Description").
	Project("condition", "Condition").
	Project("error_message", "ErrorMessage").
	Project("source_document_id", "SourceDocumentID").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

// Filters contains optional filtering criteria for rule queries. Nil
// fields are ignored.
type Filters struct {
	Name             *string    `json:"name,omitempty"`
	SourceDocumentID *uuid.UUID `json:"source_document_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("SourceDocumentID", f.SourceDocumentID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	if d := values.Get("source_document_id"); d != "" {
		if id, err := uuid.Parse(d); err == nil {
			f.SourceDocumentID = &id
		}
	}
	return f
}

func scanRule(s repository.Scanner) (Rule, error) {
	var r Rule
	err := s.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&r.Condition,
		&r.ErrorMessage,
		&r.SourceDocumentID,
		&r.CreatedAt,
	)
	return r, err
}
