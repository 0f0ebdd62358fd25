package remediation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/capability"
	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/internal/validation"
)

// System defines the public contract for remediation operations.
type System interface {
	Handler() *Handler

	// Advise resolves the rule and its flagged items, then composes a
	// plan. With no explicit item ids, every open flagged item for the
	// rule is considered.
	Advise(ctx context.Context, ruleID string, itemIDs []uuid.UUID) (*Plan, error)
}

type system struct {
	advisor    *Advisor
	rules      rules.System
	validation validation.System
	logger     *slog.Logger
}

// New creates the remediation system over the rule and validation
// domains.
func New(
	cap capability.System,
	ruleStore rules.System,
	validationSys validation.System,
	logger *slog.Logger,
	cfg *capability.Config,
) System {
	logger = logger.With("system", "remediation")
	return &system{
		advisor:    NewAdvisor(cap, logger, cfg),
		rules:      ruleStore,
		validation: validationSys,
		logger:     logger,
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Advise(ctx context.Context, ruleID string, itemIDs []uuid.UUID) (*Plan, error) {
	rule, err := s.rules.Find(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	var items []validation.FlaggedItem
	if len(itemIDs) > 0 {
		items, err = s.validation.FindFlagged(ctx, itemIDs)
	} else {
		items, err = s.validation.OpenFlagged(ctx, rule.ID)
	}
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: rule %s has no open flagged items", ErrInvalidInput, rule.ID)
	}

	return s.advisor.Suggest(ctx, *rule, items)
}
