package validation

import (
	"net/url"

	"github.com/wardenlabs/warden/pkg/query"
	"github.com/wardenlabs/warden/pkg/repository"
)

var projection = query.
	NewProjectionMap("flagged_items", "f").
	Project("id", "ID").
	Project("rule_id", "RuleID").
	Project("rule_name", "RuleName").
	Project("row_index", "RowIndex").
	Project("field", "Field").
	Project("field_value", "FieldValue").
	Project("error_message", "ErrorMessage").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("resolved_at", "ResolvedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

// Filters contains optional filtering criteria for flagged item
// queries. Nil fields are ignored.
type Filters struct {
	Status   *string `json:"status,omitempty"`
	RuleID   *string `json:"rule_id,omitempty"`
	RuleName *string `json:"rule_name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("RuleID", f.RuleID).
		WhereContains("RuleName", f.RuleName)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if id := values.Get("rule_id"); id != "" {
		f.RuleID = &id
	}
	if n := values.Get("rule_name"); n != "" {
		f.RuleName = &n
	}
	return f
}

func scanFlaggedItem(s repository.Scanner) (FlaggedItem, error) {
	var item FlaggedItem
	err := s.Scan(
		&item.ID,
		&item.RuleID,
		&item.RuleName,
		&item.RowIndex,
		&item.Field,
		&item.FieldValue,
		&item.ErrorMessage,
		&item.Status,
		&item.CreatedAt,
		&item.ResolvedAt,
	)
	return item, err
}
