// Package remediation implements the remediation advisory domain for
// Warden: turning a rule plus its flagged items into a structured
// four-slot remediation plan.
package remediation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/wardenlabs/warden/internal/capability"
	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/internal/validation"
	"github.com/wardenlabs/warden/pkg/formatting"
)

// Plan is a structured remediation proposal for one rule's violations.
// Rendering to display text is the caller's concern.
type Plan struct {
	RuleID             string   `json:"rule_id"`
	ImmediateAction    string   `json:"immediate_action"`
	RootCause          string   `json:"root_cause"`
	PreventiveMeasures []string `json:"preventive_measures"`
	Justification      string   `json:"justification"`
}

type planPayload struct {
	ImmediateAction    string   `json:"immediate_action"`
	RootCause          string   `json:"root_cause"`
	PreventiveMeasures []string `json:"preventive_measures"`
	Justification      string   `json:"justification"`
}

// sampleLimit caps how many flagged items are quoted in the prompt.
const sampleLimit = 10

// Advisor composes remediation plans via the language model capability.
// It holds no storage access, so it tests with a fake capability.
type Advisor struct {
	capability capability.System
	logger     *slog.Logger
	withCtx    func(context.Context) (context.Context, context.CancelFunc)
}

// NewAdvisor creates an Advisor over the given capability. The timeout
// bounds each capability call.
func NewAdvisor(cap capability.System, logger *slog.Logger, cfg *capability.Config) *Advisor {
	return &Advisor{
		capability: cap,
		logger:     logger.With("system", "remediation"),
		withCtx: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return context.WithTimeout(ctx, cfg.TimeoutDuration())
		},
	}
}

// Suggest builds a plan for the rule's flagged items. Every item must
// belong to the rule; a mixed batch is rejected before any capability
// call.
func (a *Advisor) Suggest(
	ctx context.Context,
	rule rules.Rule,
	items []validation.FlaggedItem,
) (*Plan, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no flagged items", ErrInvalidInput)
	}
	for _, item := range items {
		if item.RuleID != rule.ID {
			return nil, fmt.Errorf(
				"%w: flagged item %s belongs to rule %s, not %s",
				ErrInvalidInput, item.ID, item.RuleID, rule.ID,
			)
		}
	}

	ctx, cancel := a.withCtx(ctx)
	defer cancel()

	response, err := a.capability.Complete(ctx, adviseInstructions, composePrompt(rule, items))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	payload, err := formatting.ParseJSON[planPayload](response)
	if err != nil {
		return nil, fmt.Errorf("%w: unusable completion: %v", ErrUnavailable, err)
	}
	if err := validatePayload(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	a.logger.Info("remediation plan composed", "rule_id", rule.ID, "items", len(items))
	return &Plan{
		RuleID:             rule.ID,
		ImmediateAction:    payload.ImmediateAction,
		RootCause:          payload.RootCause,
		PreventiveMeasures: payload.PreventiveMeasures,
		Justification:      payload.Justification,
	}, nil
}

// composePrompt aggregates the flagged items into the fixed-slot user
// message: rule context, affected fields and rows, and a bounded sample
// of offending values.
func composePrompt(rule rules.Rule, items []validation.FlaggedItem) string {
	fields := make(map[string]bool)
	rows := make(map[int]bool)
	for _, item := range items {
		fields[item.Field] = true
		rows[item.RowIndex] = true
	}

	fieldList := make([]string, 0, len(fields))
	for f := range fields {
		fieldList = append(fieldList, f)
	}
	sort.Strings(fieldList)

	var b strings.Builder
	fmt.Fprintf(&b, "Rule: %s\n", rule.Name)
	fmt.Fprintf(&b, "Condition: %s\n", rule.Condition)
	fmt.Fprintf(&b, "Error message: %s\n", rule.ErrorMessage)
	if rule.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rule.Description)
	}
	fmt.Fprintf(&b, "\nViolations: %d flagged items across %d rows\n", len(items), len(rows))
	fmt.Fprintf(&b, "Affected fields: %s\n", strings.Join(fieldList, ", "))

	b.WriteString("\nSamples:\n")
	for i, item := range items {
		if i == sampleLimit {
			fmt.Fprintf(&b, "... and %d more\n", len(items)-sampleLimit)
			break
		}
		fmt.Fprintf(&b, "- row %d, %s = %q: %s\n", item.RowIndex, item.Field, item.FieldValue, item.ErrorMessage)
	}
	return b.String()
}

func validatePayload(p planPayload) error {
	switch {
	case strings.TrimSpace(p.ImmediateAction) == "":
		return errors.New("plan missing immediate_action")
	case strings.TrimSpace(p.RootCause) == "":
		return errors.New("plan missing root_cause")
	case len(p.PreventiveMeasures) == 0:
		return errors.New("plan missing preventive_measures")
	case strings.TrimSpace(p.Justification) == "":
		return errors.New("plan missing justification")
	}
	return nil
}
