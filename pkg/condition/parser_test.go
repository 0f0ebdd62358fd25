package condition_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/wardenlabs/warden/pkg/condition"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"numeric comparison", "amount <= 10000", "amount <= 10000"},
		{"negative literal", "balance >= -500.25", "balance >= -500.25"},
		{"text equality", "currency == 'USD'", "currency == 'USD'"},
		{"double quotes", `status != "closed"`, "status != 'closed'"},
		{"date literal", "trade_date < '2024-01-02'", "trade_date < '2024-01-02'"},
		{"exists comparison", "exists(currency) == false", "exists(currency) == false"},
		{"bare exists", "exists(currency)", "exists(currency)"},
		{"length check", "len(account_id) == 10", "len(account_id) == 10"},
		{"conjunction", "amount > 0 and amount <= 10000", "amount > 0 and amount <= 10000"},
		{"disjunction", "currency == 'USD' or currency == 'EUR'", "currency == 'USD' or currency == 'EUR'"},
		{"negation", "not exists(notes)", "not exists(notes)"},
		{"grouping", "(amount > 0 and amount < 100) or exists(waiver)", "(amount > 0 and amount < 100) or exists(waiver)"},
		{"keyword case", "amount > 0 AND amount < 10", "amount > 0 and amount < 10"},
		{"underscore number", "amount <= 10_000", "amount <= 10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := condition.Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got := node.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fragment string
	}{
		{"empty", "", ""},
		{"bare field", "amount", ""},
		{"missing literal", "amount <=", ""},
		{"single equals", "amount = 10", "= 10"},
		{"unterminated string", "currency == 'USD", "'USD"},
		{"unknown call", "sum(amount) > 0", "(amount) > 0"},
		{"trailing input", "amount > 0 extra", "extra"},
		{"unclosed paren", "(amount > 0", ""},
		{"ordering on bool", "exists(currency) < true", ""},
		{"exists vs number", "exists(currency) == 1", ""},
		{"len vs string", "len(name) == 'ten'", ""},
		{"arbitrary code", "import os; os.system('rm')", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := condition.Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.input)
			}

			var perr *condition.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if tt.fragment != "" && !strings.Contains(perr.Fragment, tt.fragment) {
				t.Errorf("Fragment = %q, want containing %q", perr.Fragment, tt.fragment)
			}
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	const input = "amount <= 10000 and exists(currency)"

	first, err := condition.Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	second, err := condition.Parse(input)
	if err != nil {
		t.Fatal(err)
	}

	if first.String() != second.String() {
		t.Errorf("repeated parse diverged: %q vs %q", first, second)
	}
}

func TestFields(t *testing.T) {
	node, err := condition.Parse("amount > 0 and exists(currency) and amount < 100 or len(account_id) == 10")
	if err != nil {
		t.Fatal(err)
	}

	got := condition.Fields(node)
	want := []string{"amount", "currency", "account_id"}
	if len(got) != len(want) {
		t.Fatalf("Fields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Fields[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
