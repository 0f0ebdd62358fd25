package validation

import (
	"time"

	"github.com/google/uuid"
)

// Flagged item statuses.
const (
	FlagStatusOpen     = "open"
	FlagStatusResolved = "resolved"
)

// FlaggedItem is a persisted flag outcome awaiting review. Items start
// open and move to resolved exactly once.
type FlaggedItem struct {
	ID           uuid.UUID  `json:"id"`
	RuleID       string     `json:"rule_id"`
	RuleName     string     `json:"rule_name"`
	RowIndex     int        `json:"row_index"`
	Field        string     `json:"field"`
	FieldValue   string     `json:"field_value"`
	ErrorMessage string     `json:"error_message"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}
