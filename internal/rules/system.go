package rules

import (
	"context"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/pkg/pagination"
)

// Invalidator removes compiled-validator cache entries when a rule is
// deleted. Implemented by the validation compiler.
type Invalidator interface {
	Invalidate(ruleID string)
}

// System defines the public contract for rule domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Rule], error)

	Find(ctx context.Context, id string) (*Rule, error)
	FindAll(ctx context.Context, ids []string) ([]Rule, error)
	Save(ctx context.Context, rules []Rule) (int, error)
	Delete(ctx context.Context, id string) error
	RemoveForDocument(ctx context.Context, documentID uuid.UUID) error
}
