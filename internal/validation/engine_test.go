package validation_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/compiler"
	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/internal/validation"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEngine(t *testing.T, cfg *validation.Config) *validation.Engine {
	t.Helper()
	if cfg == nil {
		cfg = &validation.Config{}
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	return validation.NewEngine(compiler.New(discard()), discard(), cfg)
}

func mustRule(t *testing.T, name, cond, message string) rules.Rule {
	t.Helper()
	r, err := rules.NewRule(name, "", cond, message, uuid.New())
	if err != nil {
		t.Fatalf("rules.NewRule(%q) error: %v", cond, err)
	}
	return r
}

func csvDataset(t *testing.T, text string) *validation.Dataset {
	t.Helper()
	ds, err := validation.DatasetFromCSV(strings.NewReader(text))
	if err != nil {
		t.Fatalf("DatasetFromCSV() error: %v", err)
	}
	return ds
}

func TestValidateFlagsViolationsAndMismatches(t *testing.T) {
	e := testEngine(t, nil)
	rule := mustRule(t, "description length", "len(description) <= 10", "description too long")

	ds := csvDataset(t, strings.Join([]string{
		"description,amount",
		"short,10",
		"a very long description,20",
		",30",
	}, "\n"))

	// amount rule hits the mismatch path on a non-numeric value
	amount := mustRule(t, "positive amount", "amount > 0", "amount must be positive")
	mixed := csvDataset(t, strings.Join([]string{
		"amount",
		"50",
		"-3",
		"bad",
	}, "\n"))

	outcomes := e.Validate(context.Background(), ds, []rules.Rule{rule})
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes, want 1: %+v", len(outcomes), outcomes)
	}

	flag := outcomes[0]
	if flag.Kind != validation.KindFlag {
		t.Errorf("Kind = %s, want flag", flag.Kind)
	}
	if flag.RowIndex != 1 {
		t.Errorf("RowIndex = %d, want 1", flag.RowIndex)
	}
	if flag.Message != "description too long" {
		t.Errorf("Message = %q, want the rule's error message", flag.Message)
	}
	if flag.FieldValue != "a very long description" {
		t.Errorf("FieldValue = %q", flag.FieldValue)
	}

	// row 2 has no description at all: not applicable, no flag

	mixedOutcomes := e.Validate(context.Background(), mixed, []rules.Rule{amount})
	if len(mixedOutcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2: %+v", len(mixedOutcomes), mixedOutcomes)
	}

	if mixedOutcomes[0].RowIndex != 1 || mixedOutcomes[0].Message != "amount must be positive" {
		t.Errorf("violation outcome = %+v", mixedOutcomes[0])
	}
	if mixedOutcomes[1].RowIndex != 2 || !strings.Contains(mixedOutcomes[1].Message, "type mismatch") {
		t.Errorf("mismatch outcome = %+v", mixedOutcomes[1])
	}
	if mixedOutcomes[1].FieldValue != "bad" {
		t.Errorf("mismatch FieldValue = %q, want bad", mixedOutcomes[1].FieldValue)
	}
}

func TestValidateOrderingDeterministic(t *testing.T) {
	e := testEngine(t, &validation.Config{Workers: 8})

	items := []rules.Rule{
		mustRule(t, "b present", "exists(b)", "b required"),
		mustRule(t, "a present", "exists(a)", "a required"),
	}

	var rows []string
	rows = append(rows, "a,b")
	for range 40 {
		rows = append(rows, ",") // both fields empty: two flags per row
	}
	text := strings.Join(rows, "\n")

	first := e.Validate(context.Background(), csvDataset(t, text), items)

	for range 5 {
		again := e.Validate(context.Background(), csvDataset(t, text), items)
		if len(again) != len(first) {
			t.Fatalf("outcome count varies: %d vs %d", len(again), len(first))
		}
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("outcome %d varies across runs: %+v vs %+v", i, first[i], again[i])
			}
		}
	}

	// within each row, field a (first-seen) sorts before field b
	for i := 0; i+1 < len(first); i += 2 {
		if first[i].RowIndex != first[i+1].RowIndex {
			t.Fatalf("outcome %d: row pairing broken", i)
		}
		if first[i].Field != "a" || first[i+1].Field != "b" {
			t.Fatalf("outcome %d: field order %s,%s, want a,b", i, first[i].Field, first[i+1].Field)
		}
	}
}

func TestValidateCompileFailureIsolated(t *testing.T) {
	e := testEngine(t, nil)

	items := []rules.Rule{
		{ID: "broken", Name: "broken", Condition: "not a condition ==", ErrorMessage: "x"},
		mustRule(t, "positive", "amount > 0", "amount must be positive"),
	}

	ds := csvDataset(t, "amount\n-1")

	outcomes := e.Validate(context.Background(), ds, items)
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2: %+v", len(outcomes), outcomes)
	}

	if outcomes[0].Kind != validation.KindCompilationError {
		t.Errorf("first outcome kind = %s, want compilation_error", outcomes[0].Kind)
	}
	if outcomes[0].RowIndex != -1 {
		t.Errorf("compilation error RowIndex = %d, want -1", outcomes[0].RowIndex)
	}
	if outcomes[1].Kind != validation.KindFlag {
		t.Errorf("sibling rule did not run: %+v", outcomes[1])
	}
}

func TestValidateDeadlineProducesTimeoutEntries(t *testing.T) {
	e := testEngine(t, &validation.Config{Workers: 2, Timeout: "30s"})

	items := []rules.Rule{mustRule(t, "positive", "amount > 0", "x")}
	ds := csvDataset(t, "amount\n-1\n-2\n-3")

	// an expired parent guarantees every worker observes a dead context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := e.Validate(ctx, ds, items)
	if len(outcomes) != ds.Len() {
		t.Fatalf("got %d outcomes, want one per unit (%d)", len(outcomes), ds.Len())
	}
	for _, o := range outcomes {
		if o.Kind != validation.KindTimeout {
			t.Errorf("outcome kind = %s, want timeout: %+v", o.Kind, o)
		}
	}
}
