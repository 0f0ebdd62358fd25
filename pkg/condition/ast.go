package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// Status classifies the result of evaluating a condition against a row.
type Status int

const (
	// StatusSatisfied means the row meets the condition. No flag.
	StatusSatisfied Status = iota
	// StatusViolated means the row breaks the condition and is flagged.
	StatusViolated
	// StatusNotApplicable means a referenced field is absent from the row.
	// Not-applicable rows are never flagged.
	StatusNotApplicable
	// StatusMismatch means a referenced field is present but its value
	// cannot be viewed as the type the condition requires.
	StatusMismatch
)

func (s Status) String() string {
	switch s {
	case StatusViolated:
		return "violated"
	case StatusNotApplicable:
		return "not_applicable"
	case StatusMismatch:
		return "mismatch"
	default:
		return "satisfied"
	}
}

// Result carries the evaluation status plus mismatch detail when Status is
// StatusMismatch.
type Result struct {
	Status Status
	Field  string
	Want   Kind
}

func satisfied() Result     { return Result{Status: StatusSatisfied} }
func violated() Result      { return Result{Status: StatusViolated} }
func notApplicable() Result { return Result{Status: StatusNotApplicable} }

func mismatch(field string, want Kind) Result {
	return Result{Status: StatusMismatch, Field: field, Want: want}
}

// Op is a comparison operator.
type Op int

const (
	OpLT Op = iota
	OpLE
	OpGT
	OpGE
	OpEQ
	OpNE
)

func (o Op) String() string {
	switch o {
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	case OpNE:
		return "!="
	default:
		return "=="
	}
}

// Node is a typed condition AST node. A condition expresses the validity
// constraint for a row; evaluation to StatusViolated produces a flag.
type Node interface {
	Eval(Row) Result
	String() string
	collectFields(seen map[string]bool, out *[]string)
}

// Fields returns the field names a condition references, in AST order
// without duplicates. The first entry binds the error descriptor.
func Fields(n Node) []string {
	seen := make(map[string]bool)
	var out []string
	n.collectFields(seen, &out)
	return out
}

type operandFn int

const (
	fnNone operandFn = iota
	fnLen
	fnExists
)

// Compare checks a single field (raw, len(field), or exists(field))
// against a literal value.
type Compare struct {
	Field string
	Fn    operandFn
	Op    Op
	Lit   Value
}

func (c *Compare) Eval(row Row) Result {
	switch c.Fn {
	case fnExists:
		_, present := row[c.Field]
		return compareValues(Bool(present), c.Op, c.Lit, c.Field)
	case fnLen:
		v, ok := row[c.Field]
		if !ok {
			return notApplicable()
		}
		text, ok := v.as(KindText)
		if !ok {
			// numbers and dates re-render to text for length purposes
			text = Text(v.String())
		}
		return compareValues(Number(float64(len(text.Str))), c.Op, c.Lit, c.Field)
	default:
		v, ok := row[c.Field]
		if !ok {
			return notApplicable()
		}
		coerced, ok := v.as(c.Lit.Kind)
		if !ok {
			return mismatch(c.Field, c.Lit.Kind)
		}
		return compareValues(coerced, c.Op, c.Lit, c.Field)
	}
}

func compareValues(lhs Value, op Op, rhs Value, field string) Result {
	if lhs.Kind != rhs.Kind {
		return mismatch(field, rhs.Kind)
	}

	var cmp int
	switch lhs.Kind {
	case KindNumber:
		switch {
		case lhs.Num < rhs.Num:
			cmp = -1
		case lhs.Num > rhs.Num:
			cmp = 1
		}
	case KindText:
		cmp = strings.Compare(lhs.Str, rhs.Str)
	case KindDate:
		cmp = lhs.Time.Compare(rhs.Time)
	case KindBool:
		if lhs.Bool != rhs.Bool {
			cmp = 1
		}
	}

	var ok bool
	switch op {
	case OpLT:
		ok = cmp < 0
	case OpLE:
		ok = cmp <= 0
	case OpGT:
		ok = cmp > 0
	case OpGE:
		ok = cmp >= 0
	case OpEQ:
		ok = cmp == 0
	case OpNE:
		ok = cmp != 0
	}

	if ok {
		return satisfied()
	}
	return violated()
}

func (c *Compare) String() string {
	var lhs string
	switch c.Fn {
	case fnExists:
		lhs = fmt.Sprintf("exists(%s)", c.Field)
	case fnLen:
		lhs = fmt.Sprintf("len(%s)", c.Field)
	default:
		lhs = c.Field
	}
	return fmt.Sprintf("%s %s %s", lhs, c.Op, renderLiteral(c.Lit))
}

func (c *Compare) collectFields(seen map[string]bool, out *[]string) {
	if !seen[c.Field] {
		seen[c.Field] = true
		*out = append(*out, c.Field)
	}
}

// Exists is a bare presence check: exists(field) used as a boolean
// expression without an explicit comparison.
type Exists struct {
	Field string
}

func (e *Exists) Eval(row Row) Result {
	if _, present := row[e.Field]; present {
		return satisfied()
	}
	return violated()
}

func (e *Exists) String() string {
	return fmt.Sprintf("exists(%s)", e.Field)
}

func (e *Exists) collectFields(seen map[string]bool, out *[]string) {
	if !seen[e.Field] {
		seen[e.Field] = true
		*out = append(*out, e.Field)
	}
}

// And requires every child condition to hold.
type And struct {
	Left, Right Node
}

func (a *And) Eval(row Row) Result {
	l := a.Left.Eval(row)
	r := a.Right.Eval(row)
	return combineAnd(l, r)
}

func combineAnd(l, r Result) Result {
	if l.Status == StatusMismatch {
		return l
	}
	if r.Status == StatusMismatch {
		return r
	}
	if l.Status == StatusViolated || r.Status == StatusViolated {
		return violated()
	}
	if l.Status == StatusNotApplicable && r.Status == StatusNotApplicable {
		return notApplicable()
	}
	return satisfied()
}

func (a *And) String() string {
	return fmt.Sprintf("%s and %s", group(a.Left), group(a.Right))
}

func (a *And) collectFields(seen map[string]bool, out *[]string) {
	a.Left.collectFields(seen, out)
	a.Right.collectFields(seen, out)
}

// Or requires at least one child condition to hold.
type Or struct {
	Left, Right Node
}

func (o *Or) Eval(row Row) Result {
	l := o.Left.Eval(row)
	r := o.Right.Eval(row)

	if l.Status == StatusSatisfied || r.Status == StatusSatisfied {
		return satisfied()
	}
	if l.Status == StatusMismatch {
		return l
	}
	if r.Status == StatusMismatch {
		return r
	}
	if l.Status == StatusNotApplicable && r.Status == StatusNotApplicable {
		return notApplicable()
	}
	return violated()
}

func (o *Or) String() string {
	return fmt.Sprintf("%s or %s", group(o.Left), group(o.Right))
}

func (o *Or) collectFields(seen map[string]bool, out *[]string) {
	o.Left.collectFields(seen, out)
	o.Right.collectFields(seen, out)
}

// Not inverts its child. Not-applicable and mismatch pass through.
type Not struct {
	Child Node
}

func (n *Not) Eval(row Row) Result {
	r := n.Child.Eval(row)
	switch r.Status {
	case StatusSatisfied:
		return violated()
	case StatusViolated:
		return satisfied()
	default:
		return r
	}
}

func (n *Not) String() string {
	return fmt.Sprintf("not %s", group(n.Child))
}

func (n *Not) collectFields(seen map[string]bool, out *[]string) {
	n.Child.collectFields(seen, out)
}

func group(n Node) string {
	switch n.(type) {
	case *And, *Or:
		return "(" + n.String() + ")"
	default:
		return n.String()
	}
}

func renderLiteral(v Value) string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return "'" + v.Time.Format("2006-01-02") + "'"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return "'" + v.Str + "'"
	}
}
