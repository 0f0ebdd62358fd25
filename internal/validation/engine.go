package validation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/wardenlabs/warden/internal/compiler"
	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/pkg/condition"
)

// Engine evaluates compiled validators over datasets. Rows run in
// parallel under a worker bound; validators and the dataset are
// read-only to the workers, and results merge after all units finish so
// output ordering is deterministic for identical input.
type Engine struct {
	compiler *compiler.Compiler
	logger   *slog.Logger
	cfg      *Config
}

// NewEngine creates an Engine over a validator compiler.
func NewEngine(comp *compiler.Compiler, logger *slog.Logger, cfg *Config) *Engine {
	return &Engine{
		compiler: comp,
		logger:   logger.With("system", "validation"),
		cfg:      cfg,
	}
}

// Validate runs every rule against every row and returns the ordered
// outcome sequence: rule-scoped compilation errors first, then row
// entries ordered (row index asc, dataset field first-seen). Per-unit
// failures are entries, never batch failures.
func (e *Engine) Validate(ctx context.Context, ds *Dataset, items []rules.Rule) []Outcome {
	compiled := e.compiler.CompileAll(items)

	var head []Outcome
	validators := make([]*compiler.Validator, 0, len(compiled))
	for _, res := range compiled {
		if res.Err != nil {
			head = append(head, Outcome{
				Kind:     KindCompilationError,
				RowIndex: ruleScoped,
				RuleID:   res.Rule.ID,
				RuleName: res.Rule.Name,
				Message:  res.Err.Error(),
			})
			continue
		}
		validators = append(validators, res.Validator)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.TimeoutDuration())
	defer cancel()

	perRow := make([][]Outcome, ds.Len())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i := range ds.Rows {
		g.Go(func() error {
			perRow[i] = evalRow(ctx, ds.Rows[i], i, validators)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; units report through outcomes

	out := head
	for _, entries := range perRow {
		sort.SliceStable(entries, func(a, b int) bool {
			return ds.fieldIndex(entries[a].Field) < ds.fieldIndex(entries[b].Field)
		})
		out = append(out, entries...)
	}

	e.logger.Info(
		"validation run complete",
		"rows", ds.Len(),
		"rules", len(items),
		"outcomes", len(out),
	)
	return out
}

// evalRow resolves every validator against one row. Units past the
// batch deadline become timeout entries; a panicking validator yields an
// execution error entry for that unit only.
func evalRow(ctx context.Context, row condition.Row, index int, validators []*compiler.Validator) []Outcome {
	var out []Outcome

	for _, v := range validators {
		if ctx.Err() != nil {
			out = append(out, Outcome{
				Kind:     KindTimeout,
				RowIndex: index,
				Field:    v.Field,
				RuleID:   v.RuleID,
				RuleName: v.RuleName,
				Message:  "validation deadline exceeded before unit ran",
			})
			continue
		}

		if entry := evalUnit(row, index, v); entry != nil {
			out = append(out, *entry)
		}
	}
	return out
}

func evalUnit(row condition.Row, index int, v *compiler.Validator) (entry *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			entry = &Outcome{
				Kind:     KindExecutionError,
				RowIndex: index,
				Field:    v.Field,
				RuleID:   v.RuleID,
				RuleName: v.RuleName,
				Message:  fmt.Sprintf("validator panic: %v", r),
			}
		}
	}()

	result := v.Eval(row)
	switch result.Status {
	case condition.StatusViolated:
		return &Outcome{
			Kind:       KindFlag,
			RowIndex:   index,
			Field:      v.Field,
			FieldValue: fieldValue(row, v.Field),
			RuleID:     v.RuleID,
			RuleName:   v.RuleName,
			Message:    v.ErrorMessage,
		}
	case condition.StatusMismatch:
		return &Outcome{
			Kind:       KindFlag,
			RowIndex:   index,
			Field:      result.Field,
			FieldValue: fieldValue(row, result.Field),
			RuleID:     v.RuleID,
			RuleName:   v.RuleName,
			Message:    fmt.Sprintf("type mismatch: %s is not a valid %s", result.Field, result.Want),
		}
	default:
		// satisfied and not-applicable produce no entry
		return nil
	}
}

func fieldValue(row condition.Row, field string) string {
	if v, ok := row[field]; ok {
		return v.String()
	}
	return ""
}
