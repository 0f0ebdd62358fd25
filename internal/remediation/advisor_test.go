package remediation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/capability"
	"github.com/wardenlabs/warden/internal/remediation"
	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/internal/validation"
)

type fakeCapability struct {
	response string
	err      error
	calls    int
	prompt   string
}

func (f *fakeCapability) Complete(ctx context.Context, instructions, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAdvisor(t *testing.T, cap *fakeCapability) *remediation.Advisor {
	t.Helper()
	cfg := &capability.Config{APIKey: "test"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	return remediation.NewAdvisor(cap, discard(), cfg)
}

func mustRule(t *testing.T) rules.Rule {
	t.Helper()
	r, err := rules.NewRule("positive amount", "Amounts are positive.", "amount > 0", "amount must be positive", uuid.New())
	if err != nil {
		t.Fatalf("rules.NewRule() error: %v", err)
	}
	return r
}

func flagged(rule rules.Rule, row int, value string) validation.FlaggedItem {
	return validation.FlaggedItem{
		ID:           uuid.New(),
		RuleID:       rule.ID,
		RuleName:     rule.Name,
		RowIndex:     row,
		Field:        "amount",
		FieldValue:   value,
		ErrorMessage: rule.ErrorMessage,
		Status:       validation.FlagStatusOpen,
	}
}

const validPlan = `{
	"immediate_action": "Quarantine the flagged rows and re-request source values.",
	"root_cause": "Upstream export emits negative balances for reversed transactions.",
	"preventive_measures": ["Filter reversals before export", "Add a sign check to ingestion"],
	"justification": "All flagged values are negative, matching the reversal pattern."
}`

func TestSuggest(t *testing.T) {
	cap := &fakeCapability{response: validPlan}
	a := testAdvisor(t, cap)
	rule := mustRule(t)

	items := []validation.FlaggedItem{
		flagged(rule, 3, "-120.50"),
		flagged(rule, 7, "-3"),
	}

	plan, err := a.Suggest(context.Background(), rule, items)
	if err != nil {
		t.Fatalf("Suggest() error: %v", err)
	}

	if plan.RuleID != rule.ID {
		t.Errorf("RuleID = %s, want %s", plan.RuleID, rule.ID)
	}
	if plan.ImmediateAction == "" || plan.RootCause == "" || plan.Justification == "" {
		t.Errorf("plan has empty slots: %+v", plan)
	}
	if len(plan.PreventiveMeasures) != 2 {
		t.Errorf("PreventiveMeasures = %v", plan.PreventiveMeasures)
	}

	if !strings.Contains(cap.prompt, rule.Condition) {
		t.Error("prompt missing rule condition")
	}
	if !strings.Contains(cap.prompt, "-120.50") {
		t.Error("prompt missing flagged sample values")
	}
}

func TestSuggestRejectsMixedRules(t *testing.T) {
	cap := &fakeCapability{response: validPlan}
	a := testAdvisor(t, cap)
	rule := mustRule(t)

	other, err := rules.NewRule("other", "", "exists(code)", "code required", uuid.New())
	if err != nil {
		t.Fatalf("rules.NewRule() error: %v", err)
	}

	items := []validation.FlaggedItem{
		flagged(rule, 1, "-1"),
		flagged(other, 2, ""),
	}

	_, err = a.Suggest(context.Background(), rule, items)
	if !errors.Is(err, remediation.ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
	if cap.calls != 0 {
		t.Errorf("capability called %d times for a mixed batch, want 0", cap.calls)
	}
}

func TestSuggestRejectsEmptyBatch(t *testing.T) {
	cap := &fakeCapability{response: validPlan}
	a := testAdvisor(t, cap)

	_, err := a.Suggest(context.Background(), mustRule(t), nil)
	if !errors.Is(err, remediation.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
	if cap.calls != 0 {
		t.Errorf("capability called on empty batch")
	}
}

func TestSuggestErrorMapping(t *testing.T) {
	rule := mustRule(t)
	items := []validation.FlaggedItem{flagged(rule, 0, "-1")}

	tests := []struct {
		name   string
		capErr error
		want   error
	}{
		{"deadline", context.DeadlineExceeded, remediation.ErrTimeout},
		{"transport", errors.New("dial tcp: refused"), remediation.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAdvisor(t, &fakeCapability{err: tt.capErr})
			_, err := a.Suggest(context.Background(), rule, items)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSuggestRejectsIncompletePlan(t *testing.T) {
	incomplete := `{"immediate_action": "do something", "root_cause": "", "preventive_measures": [], "justification": ""}`
	a := testAdvisor(t, &fakeCapability{response: incomplete})
	rule := mustRule(t)

	_, err := a.Suggest(context.Background(), rule, []validation.FlaggedItem{flagged(rule, 0, "-1")})
	if !errors.Is(err, remediation.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
