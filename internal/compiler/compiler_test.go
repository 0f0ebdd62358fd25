package compiler_test

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/compiler"
	"github.com/wardenlabs/warden/internal/rules"
	"github.com/wardenlabs/warden/pkg/condition"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustRule(t *testing.T, name, cond, message string) rules.Rule {
	t.Helper()
	r, err := rules.NewRule(name, "", cond, message, uuid.New())
	if err != nil {
		t.Fatalf("rules.NewRule(%q) error: %v", cond, err)
	}
	return r
}

func TestCompileProducesWorkingValidator(t *testing.T) {
	c := compiler.New(discard())
	rule := mustRule(t, "description length", "len(description) <= 100", "too long")

	v, err := c.Compile(rule)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	if v.RuleID != rule.ID {
		t.Errorf("RuleID = %s, want %s", v.RuleID, rule.ID)
	}
	if v.Field != "description" {
		t.Errorf("Field = %q, want description", v.Field)
	}
	if v.ErrorMessage != "too long" {
		t.Errorf("ErrorMessage = %q", v.ErrorMessage)
	}

	ok := v.Eval(condition.Row{"description": condition.Text("short")})
	if ok.Status != condition.StatusSatisfied {
		t.Errorf("short description status = %v, want satisfied", ok.Status)
	}

	bad := v.Eval(condition.Row{"description": condition.Text(strings.Repeat("x", 150))})
	if bad.Status != condition.StatusViolated {
		t.Errorf("long description status = %v, want violated", bad.Status)
	}
}

func TestCompileCachedEquivalence(t *testing.T) {
	c := compiler.New(discard())
	rule := mustRule(t, "positive amount", "amount > 0", "must be positive")

	cold, err := c.Compile(rule)
	if err != nil {
		t.Fatalf("cold Compile() error: %v", err)
	}
	warm, err := c.Compile(rule)
	if err != nil {
		t.Fatalf("warm Compile() error: %v", err)
	}

	if cold != warm {
		t.Error("cache miss and hit returned distinct validators")
	}

	rows := []condition.Row{
		{"amount": condition.Number(10)},
		{"amount": condition.Number(-5)},
		{"amount": condition.Text("bad")},
		{},
	}
	for i, row := range rows {
		if cold.Eval(row) != warm.Eval(row) {
			t.Errorf("row %d: cached validator diverges from cold compile", i)
		}
	}
}

func TestCompileConcurrentFirstUse(t *testing.T) {
	c := compiler.New(discard())
	rule := mustRule(t, "currency present", "exists(currency)", "currency required")

	const workers = 16
	results := make([]*compiler.Validator, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Compile(rule)
			if err != nil {
				t.Errorf("concurrent Compile() error: %v", err)
				return
			}
			results[i] = v
		}()
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent compilations produced distinct validators")
		}
	}
	if c.Size() != 1 {
		t.Errorf("cache size = %d, want 1", c.Size())
	}
}

func TestCompileAllIsolatesFailures(t *testing.T) {
	c := compiler.New(discard())

	items := []rules.Rule{
		mustRule(t, "r1", "amount > 0", "x"),
		mustRule(t, "r2", "len(code) == 3", "x"),
		{ID: "broken", Name: "broken", Condition: "amount >>> 0", ErrorMessage: "x"},
		mustRule(t, "r4", "exists(date)", "x"),
		mustRule(t, "r5", "status != 'void'", "x"),
	}

	out := c.CompileAll(items)
	if len(out) != len(items) {
		t.Fatalf("got %d results, want %d", len(out), len(items))
	}

	for i, res := range out {
		if i == 2 {
			var ce *compiler.CompilationError
			if !errors.As(res.Err, &ce) {
				t.Errorf("broken rule error = %v, want *CompilationError", res.Err)
			}
			continue
		}
		if res.Err != nil {
			t.Errorf("rule %s failed alongside a broken sibling: %v", res.Rule.Name, res.Err)
		}
		if res.Validator == nil {
			t.Errorf("rule %s missing validator", res.Rule.Name)
		}
	}
}

func TestInvalidate(t *testing.T) {
	c := compiler.New(discard())
	rule := mustRule(t, "positive", "amount > 0", "x")

	if _, err := c.Compile(rule); err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if c.Size() != 1 {
		t.Fatalf("cache size = %d, want 1", c.Size())
	}

	c.Invalidate(rule.ID)
	if c.Size() != 0 {
		t.Errorf("cache size after Invalidate = %d, want 0", c.Size())
	}
}

func TestCacheConsistencyViolation(t *testing.T) {
	c := compiler.New(discard())
	rule := mustRule(t, "positive", "amount > 0", "x")

	if _, err := c.Compile(rule); err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	// same identity, different condition: must abort, never serve stale code
	tampered := rule
	tampered.Condition = "amount > 100"

	_, err := c.Compile(tampered)
	if !errors.Is(err, compiler.ErrCacheConsistency) {
		t.Errorf("error = %v, want ErrCacheConsistency", err)
	}
}

func TestValidatorSource(t *testing.T) {
	c := compiler.New(discard())
	rule := mustRule(t, "description length", "len(description) <= 100", "too long")

	v, err := c.Compile(rule)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	if !strings.Contains(v.Source, "ValidateDescriptionLength") {
		t.Errorf("source missing derived function name:\n%s", v.Source)
	}
	if !strings.Contains(v.Source, "too long") {
		t.Errorf("source missing bound error message:\n%s", v.Source)
	}

	again, _ := c.Compile(rule)
	if again.Source != v.Source {
		t.Error("rendered source is not deterministic")
	}
}
