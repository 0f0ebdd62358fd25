package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/pkg/pagination"
)

// RuleRemover detaches the rules extracted from a document before the
// document itself is deleted, so their cached validators are invalidated
// rather than silently cascaded away. Implemented by the rules system.
type RuleRemover interface {
	RemoveForDocument(ctx context.Context, documentID uuid.UUID) error
}

// System defines the public contract for document domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
