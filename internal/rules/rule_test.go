package rules_test

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/rules"
)

func TestNewRuleCanonicalizesCondition(t *testing.T) {
	docID := uuid.New()

	tests := []struct {
		name      string
		condition string
		canonical string
	}{
		{
			name:      "whitespace normalized",
			condition: "len(  description )<=100",
			canonical: "len(description) <= 100",
		},
		{
			name:      "boolean keywords lowercased",
			condition: "exists(currency) == TRUE",
			canonical: "exists(currency) == true",
		},
		{
			name:      "double quotes normalized to single",
			condition: `status == "active" and amount > 0`,
			canonical: `status == 'active' and amount > 0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := rules.NewRule("check", "desc", tt.condition, "failed", docID)
			if err != nil {
				t.Fatalf("NewRule() error: %v", err)
			}
			if r.Condition != tt.canonical {
				t.Errorf("Condition = %q, want %q", r.Condition, tt.canonical)
			}
		})
	}
}

func TestNewRuleRejectsInvalidCondition(t *testing.T) {
	_, err := rules.NewRule("check", "desc", "import os; os.system('x')", "failed", uuid.New())
	if err == nil {
		t.Fatal("NewRule() accepted an invalid condition")
	}
}

func TestIdentityStability(t *testing.T) {
	docID := uuid.New()

	a, err := rules.NewRule("max length", "", "len(description) <= 100", "too long", docID)
	if err != nil {
		t.Fatalf("NewRule() error: %v", err)
	}

	// same semantics, different surface form
	b, err := rules.NewRule("max length", "", "len( description )   <= 100", "too long", docID)
	if err != nil {
		t.Fatalf("NewRule() error: %v", err)
	}

	if a.ID != b.ID {
		t.Errorf("equivalent rules got distinct identities: %s vs %s", a.ID, b.ID)
	}

	other, err := rules.NewRule("max length", "", "len(description) <= 100", "too long", uuid.New())
	if err != nil {
		t.Fatalf("NewRule() error: %v", err)
	}
	if a.ID == other.ID {
		t.Error("rules from different documents share an identity")
	}

	renamed, err := rules.NewRule("maximum length", "", "len(description) <= 100", "too long", docID)
	if err != nil {
		t.Fatalf("NewRule() error: %v", err)
	}
	if a.ID == renamed.ID {
		t.Error("rules with different names share an identity")
	}
}

func TestNewRuleTruncatesFields(t *testing.T) {
	r, err := rules.NewRule(
		strings.Repeat("n", rules.MaxNameLen+50),
		strings.Repeat("d", rules.MaxDescriptionLen+50),
		"amount > 0",
		strings.Repeat("e", rules.MaxErrorMessage+50),
		uuid.New(),
	)
	if err != nil {
		t.Fatalf("NewRule() error: %v", err)
	}

	if len(r.Name) != rules.MaxNameLen {
		t.Errorf("Name length = %d, want %d", len(r.Name), rules.MaxNameLen)
	}
	if len(r.Description) != rules.MaxDescriptionLen {
		t.Errorf("Description length = %d, want %d", len(r.Description), rules.MaxDescriptionLen)
	}
	if len(r.ErrorMessage) != rules.MaxErrorMessage {
		t.Errorf("ErrorMessage length = %d, want %d", len(r.ErrorMessage), rules.MaxErrorMessage)
	}
}

func TestNewRuleRejectsOverlongCondition(t *testing.T) {
	long := "len(" + strings.Repeat("a", rules.MaxConditionLen) + ") <= 10"

	_, err := rules.NewRule("check", "desc", long, "failed", uuid.New())
	if !errors.Is(err, rules.ErrConditionTooLong) {
		t.Fatalf("NewRule() error = %v, want ErrConditionTooLong", err)
	}

	// at the cap, the condition is stored intact
	field := strings.Repeat("b", rules.MaxConditionLen-len("len() <= 10"))
	exact := "len(" + field + ") <= 10"
	r, err := rules.NewRule("check", "desc", exact, "failed", uuid.New())
	if err != nil {
		t.Fatalf("NewRule() error: %v", err)
	}
	if r.Condition != exact {
		t.Errorf("Condition altered: got %d bytes, want %d", len(r.Condition), len(exact))
	}
	if _, err := r.Compile(); err != nil {
		t.Errorf("stored condition no longer parses: %v", err)
	}
}

func TestCompile(t *testing.T) {
	r, err := rules.NewRule("positive", "", "amount > 0", "must be positive", uuid.New())
	if err != nil {
		t.Fatalf("NewRule() error: %v", err)
	}

	node, err := r.Compile()
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if node.String() != r.Condition {
		t.Errorf("compiled condition = %q, want %q", node.String(), r.Condition)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", rules.ErrNotFound, http.StatusNotFound},
		{"duplicate", rules.ErrDuplicate, http.StatusConflict},
		{"invalid id", rules.ErrInvalidID, http.StatusBadRequest},
		{"unknown", http.ErrBodyNotAllowed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFiltersFromQuery(t *testing.T) {
	docID := uuid.New()

	values := url.Values{}
	values.Set("name", "length")
	values.Set("source_document_id", docID.String())

	f := rules.FiltersFromQuery(values)
	if f.Name == nil || *f.Name != "length" {
		t.Errorf("Name filter not extracted: %v", f.Name)
	}
	if f.SourceDocumentID == nil || *f.SourceDocumentID != docID {
		t.Errorf("SourceDocumentID filter not extracted: %v", f.SourceDocumentID)
	}

	empty := rules.FiltersFromQuery(url.Values{})
	if empty.Name != nil || empty.SourceDocumentID != nil {
		t.Error("empty query produced non-nil filters")
	}

	bad := url.Values{}
	bad.Set("source_document_id", "not-a-uuid")
	if f := rules.FiltersFromQuery(bad); f.SourceDocumentID != nil {
		t.Error("invalid uuid produced a document filter")
	}
}
