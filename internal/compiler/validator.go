// Package compiler turns stored rules into cached, executable
// validators. Conditions compile to typed AST predicates; nothing is
// ever evaluated as program text.
package compiler

import (
	"strings"
	"unicode"

	"github.com/wardenlabs/warden/pkg/condition"
)

// Validator is the compiled artifact of exactly one rule: a pure row
// predicate plus the bound flag payload and a rendered source view for
// audit. Validators never mutate their input row and are safe for
// concurrent use.
type Validator struct {
	RuleID       string `json:"rule_id"`
	RuleName     string `json:"rule_name"`
	Field        string `json:"field"`
	ErrorMessage string `json:"error_message"`
	Source       string `json:"source"`

	node      condition.Node
	condition string
}

// Eval applies the compiled predicate to a row.
func (v *Validator) Eval(row condition.Row) condition.Result {
	return v.node.Eval(row)
}

// Fields returns the dataset fields the predicate references, in
// first-seen order.
func (v *Validator) Fields() []string {
	return condition.Fields(v.node)
}

// funcName derives an exported Go-style identifier for the rendered
// source view from the rule name.
func funcName(ruleName string) string {
	var b strings.Builder
	b.WriteString("Validate")

	upper := true
	for _, r := range ruleName {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if upper {
				r = unicode.ToUpper(r)
				upper = false
			}
			b.WriteRune(r)
		default:
			upper = true
		}
	}

	if b.Len() == len("Validate") {
		b.WriteString("Rule")
	}
	return b.String()
}
