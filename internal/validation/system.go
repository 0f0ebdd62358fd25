package validation

import (
	"context"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/pkg/pagination"
)

// GeneratedSource is the audit view of one rule's compiled validator:
// rendered source on success, the compilation failure otherwise.
type GeneratedSource struct {
	RuleID   string `json:"rule_id"`
	RuleName string `json:"rule_name"`
	Source   string `json:"source,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RunOutput is the result of one validation run. Outcomes preserve the
// deterministic (row index, field first-seen) ordering; Flagged counts
// the flag entries persisted as open flagged items.
type RunOutput struct {
	Outcomes []Outcome `json:"outcomes"`
	Flagged  int       `json:"flagged"`
}

// System defines the public contract for validation operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	Generate(ctx context.Context, ruleIDs []string) ([]GeneratedSource, error)
	Run(ctx context.Context, ruleIDs []string, ds *Dataset) (*RunOutput, error)

	ListFlagged(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[FlaggedItem], error)

	Resolve(ctx context.Context, id uuid.UUID) (*FlaggedItem, error)

	// FindFlagged resolves flagged items by id, erroring on any miss.
	FindFlagged(ctx context.Context, ids []uuid.UUID) ([]FlaggedItem, error)

	// OpenFlagged returns every open flagged item for a rule.
	OpenFlagged(ctx context.Context, ruleID string) ([]FlaggedItem, error)
}
