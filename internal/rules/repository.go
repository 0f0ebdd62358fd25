package rules

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/pkg/pagination"
	"github.com/wardenlabs/warden/pkg/query"
	"github.com/wardenlabs/warden/pkg/repository"
)

type repo struct {
	db          *sql.DB
	invalidator Invalidator
	logger      *slog.Logger
	pagination  pagination.Config
}

// New creates a rule repository implementing the System interface.
// Deletions notify the invalidator so cached validators never outlive
// their rule.
func New(
	db *sql.DB,
	invalidator Invalidator,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:          db,
		invalidator: invalidator,
		logger:      logger.With("system", "rules"),
		pagination:  pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Rule], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description", "Condition")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count rules: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRule)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id string) (*Rule, error) {
	if id == "" {
		return nil, ErrInvalidID
	}

	q, args := query.NewBuilder(projection).BuildSingle("ID", id)
	rule, err := repository.QueryOne(ctx, r.db, q, args, scanRule)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rule, nil
}

func (r *repo) FindAll(ctx context.Context, ids []string) ([]Rule, error) {
	if len(ids) == 0 {
		return []Rule{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE r.id IN (%s)",
		projection.Columns(), projection.From(), strings.Join(placeholders, ", "),
	)

	found, err := repository.QueryMany(ctx, r.db, q, args, scanRule)
	if err != nil {
		return nil, fmt.Errorf("query rules by id: %w", err)
	}

	if len(found) != len(ids) {
		present := make(map[string]bool, len(found))
		for _, rule := range found {
			present[rule.ID] = true
		}
		for _, id := range ids {
			if !present[id] {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
		}
	}

	// preserve caller order
	byID := make(map[string]Rule, len(found))
	for _, rule := range found {
		byID[rule.ID] = rule
	}
	ordered := make([]Rule, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, byID[id])
	}
	return ordered, nil
}

// Save upserts rules, ignoring identities already present. Returns the
// number of newly stored rules; re-extraction of an unchanged rule is a
// no-op by identity.
func (r *repo) Save(ctx context.Context, items []Rule) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	q := `
		INSERT INTO rules(id, name, description, condition, error_message, source_document_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	stored, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int, error) {
		count := 0
		for _, rule := range items {
			result, err := tx.ExecContext(
				ctx, q,
				rule.ID,
				rule.Name,
				rule.Description,
				rule.Condition,
				rule.ErrorMessage,
				rule.SourceDocumentID,
			)
			if err != nil {
				return 0, fmt.Errorf("insert rule %s: %w", rule.ID, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return 0, err
			}
			count += int(affected)
		}
		return count, nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("rules saved", "offered", len(items), "stored", stored)
	return stored, nil
}

func (r *repo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidID
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM rules WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	// cache removal only on confirmed delete, so cached validators can
	// never survive their rule
	if r.invalidator != nil {
		r.invalidator.Invalidate(id)
	}

	r.logger.Info("rule deleted", "id", id)
	return nil
}

// RemoveForDocument deletes every rule extracted from the document and
// invalidates each cached validator. Must run before the document row is
// deleted; the FK cascade would otherwise remove the rules without the
// cache ever hearing about them.
func (r *repo) RemoveForDocument(ctx context.Context, documentID uuid.UUID) error {
	ids, err := repository.QueryMany(
		ctx, r.db,
		"SELECT id FROM rules WHERE source_document_id = $1",
		[]any{documentID},
		func(row repository.Scanner) (string, error) {
			var id string
			err := row.Scan(&id)
			return id, err
		},
	)
	if err != nil {
		return fmt.Errorf("query document rules: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, "DELETE FROM rules WHERE source_document_id = $1", documentID)
		return struct{}{}, err
	})
	if err != nil {
		return fmt.Errorf("delete document rules: %w", err)
	}

	if r.invalidator != nil {
		for _, id := range ids {
			r.invalidator.Invalidate(id)
		}
	}

	r.logger.Info("document rules removed", "document_id", documentID, "count", len(ids))
	return nil
}
