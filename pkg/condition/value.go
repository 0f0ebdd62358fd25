// Package condition implements the restricted rule grammar: typed cell
// values, a lexer and recursive-descent parser producing tagged AST nodes,
// and evaluation of those nodes against a row of named fields.
//
// The grammar is deliberately closed. Conditions support comparisons
// against literals, and/or/not combinators, exists(field) presence checks,
// and len(field) string length. Nothing in a condition can perform I/O,
// call into the runtime, or evaluate text as code.
package condition

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies the type of a Value.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return "text"
	}
}

// Value is a single typed cell. Rows map field names to Values.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Time time.Time
	Bool bool
}

// Row maps field names to typed values. A field absent from the map is
// treated as missing, which is distinct from an empty text value.
type Row map[string]Value

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// Text creates a text Value.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// Number creates a numeric Value.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Date creates a date Value.
func Date(t time.Time) Value { return Value{Kind: KindDate, Time: t} }

// Bool creates a boolean Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// From converts a decoded JSON value into a typed Value. Numbers and bools
// map directly; strings pass through Coerce; any other type is rendered as
// text. Nil yields an empty text value.
func From(v any) Value {
	switch t := v.(type) {
	case nil:
		return Text("")
	case float64:
		return Number(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case bool:
		return Bool(t)
	case string:
		return Coerce(t)
	case time.Time:
		return Date(t)
	default:
		return Text(fmt.Sprintf("%v", t))
	}
}

// Coerce applies the only implicit conversions the data model allows:
// numeric strings parse to numbers, ISO-8601-like strings parse to dates,
// everything else stays text.
func Coerce(s string) Value {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date(t)
		}
	}
	return Text(s)
}

// String renders the value for display and flagged-item capture.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return v.Time.Format("2006-01-02")
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// as attempts to view the value as the target kind, applying string
// coercion when the kinds differ. The second return reports success.
func (v Value) as(target Kind) (Value, bool) {
	if v.Kind == target {
		return v, true
	}
	if v.Kind == KindText {
		coerced := Coerce(v.Str)
		if coerced.Kind == target {
			return coerced, true
		}
	}
	return Value{}, false
}
