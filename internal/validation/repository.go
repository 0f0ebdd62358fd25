package validation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/compiler"
	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/pkg/pagination"
	"github.com/wardenlabs/warden/pkg/query"
	"github.com/wardenlabs/warden/pkg/repository"
)

type repo struct {
	db         *sql.DB
	engine     *Engine
	compiler   *compiler.Compiler
	rules      rules.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the validation system over the rule store and a shared
// validator compiler.
func New(
	db *sql.DB,
	comp *compiler.Compiler,
	ruleStore rules.System,
	logger *slog.Logger,
	pageCfg pagination.Config,
	cfg *Config,
) System {
	logger = logger.With("system", "validation")
	return &repo{
		db:         db,
		engine:     NewEngine(comp, logger, cfg),
		compiler:   comp,
		rules:      ruleStore,
		logger:     logger,
		pagination: pageCfg,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

// Generate returns the rendered source view per rule. Compilation
// failures are per-rule entries; unknown rule ids fail the call.
func (r *repo) Generate(ctx context.Context, ruleIDs []string) ([]GeneratedSource, error) {
	if len(ruleIDs) == 0 {
		return nil, fmt.Errorf("%w: no rule ids", ErrInvalidInput)
	}

	items, err := r.rules.FindAll(ctx, ruleIDs)
	if err != nil {
		return nil, err
	}

	out := make([]GeneratedSource, 0, len(items))
	for _, res := range r.compiler.CompileAll(items) {
		entry := GeneratedSource{RuleID: res.Rule.ID, RuleName: res.Rule.Name}
		if res.Err != nil {
			entry.Error = res.Err.Error()
		} else {
			entry.Source = res.Validator.Source
		}
		out = append(out, entry)
	}
	return out, nil
}

// Run validates a dataset against the named rules and persists flag
// outcomes as open flagged items.
func (r *repo) Run(ctx context.Context, ruleIDs []string, ds *Dataset) (*RunOutput, error) {
	if len(ruleIDs) == 0 {
		return nil, fmt.Errorf("%w: no rule ids", ErrInvalidInput)
	}
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("%w: empty dataset", ErrInvalidInput)
	}

	items, err := r.rules.FindAll(ctx, ruleIDs)
	if err != nil {
		return nil, err
	}

	outcomes := r.engine.Validate(ctx, ds, items)

	flagged, err := r.persistFlags(ctx, outcomes)
	if err != nil {
		return nil, fmt.Errorf("persist flagged items: %w", err)
	}

	return &RunOutput{Outcomes: outcomes, Flagged: flagged}, nil
}

func (r *repo) persistFlags(ctx context.Context, outcomes []Outcome) (int, error) {
	q := `
		INSERT INTO flagged_items(id, rule_id, rule_name, row_index, field, field_value, error_message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int, error) {
		count := 0
		for _, o := range outcomes {
			if o.Kind != KindFlag {
				continue
			}
			if _, err := tx.ExecContext(
				ctx, q,
				uuid.New(),
				o.RuleID,
				o.RuleName,
				o.RowIndex,
				o.Field,
				o.FieldValue,
				o.Message,
				FlagStatusOpen,
			); err != nil {
				return 0, err
			}
			count++
		}
		return count, nil
	})
}

func (r *repo) ListFlagged(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[FlaggedItem], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "RuleName", "Field", "ErrorMessage")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count flagged items: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanFlaggedItem)
	if err != nil {
		return nil, fmt.Errorf("query flagged items: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) FindFlagged(ctx context.Context, ids []uuid.UUID) ([]FlaggedItem, error) {
	if len(ids) == 0 {
		return []FlaggedItem{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE f.id IN (%s)",
		projection.Columns(), projection.From(), strings.Join(placeholders, ", "),
	)

	found, err := repository.QueryMany(ctx, r.db, q, args, scanFlaggedItem)
	if err != nil {
		return nil, fmt.Errorf("query flagged items by id: %w", err)
	}

	if len(found) != len(ids) {
		present := make(map[uuid.UUID]bool, len(found))
		for _, item := range found {
			present[item.ID] = true
		}
		for _, id := range ids {
			if !present[id] {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
		}
	}
	return found, nil
}

func (r *repo) OpenFlagged(ctx context.Context, ruleID string) ([]FlaggedItem, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE f.rule_id = $1 AND f.status = $2 ORDER BY f.row_index, f.created_at",
		projection.Columns(), projection.From(),
	)

	items, err := repository.QueryMany(ctx, r.db, q, []any{ruleID, FlagStatusOpen}, scanFlaggedItem)
	if err != nil {
		return nil, fmt.Errorf("query open flagged items: %w", err)
	}
	return items, nil
}

// Resolve transitions an open flagged item to resolved. Resolving twice
// reports ErrResolved.
func (r *repo) Resolve(ctx context.Context, id uuid.UUID) (*FlaggedItem, error) {
	q := `
		UPDATE flagged_items
		SET status = $1, resolved_at = now()
		WHERE id = $2 AND status = $3
		RETURNING id, rule_id, rule_name, row_index, field, field_value, error_message, status, created_at, resolved_at`

	item, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (FlaggedItem, error) {
		return repository.QueryOne(
			ctx, tx, q,
			[]any{FlagStatusResolved, id, FlagStatusOpen},
			scanFlaggedItem,
		)
	})
	if err == nil {
		r.logger.Info("flagged item resolved", "id", id)
		return &item, nil
	}

	// distinguish a missing row from one already resolved
	existing, findErr := repository.QueryOne(
		ctx, r.db,
		"SELECT status FROM flagged_items WHERE id = $1",
		[]any{id},
		func(s repository.Scanner) (string, error) {
			var status string
			return status, s.Scan(&status)
		},
	)
	if findErr != nil {
		return nil, repository.MapError(findErr, ErrNotFound, ErrResolved)
	}
	if existing == FlagStatusResolved {
		return nil, fmt.Errorf("%w: %s", ErrResolved, id)
	}
	return nil, repository.MapError(err, ErrNotFound, ErrResolved)
}
