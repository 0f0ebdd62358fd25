package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// Render produces the inspectable source view of a compiled condition: a
// deterministic Go-style function an operator can audit. The text mirrors
// exactly what evaluation does; it is a read view of the compiled
// artifact, not a second code path.
func Render(n Node, fnName, field, message string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// Flags a row when the condition below does not hold:\n")
	fmt.Fprintf(&sb, "//   %s\n", n.String())
	fmt.Fprintf(&sb, "func %s(row map[string]any) (flag bool, field string, message string) {\n", fnName)
	fmt.Fprintf(&sb, "\tif !(%s) {\n", renderExpr(n))
	fmt.Fprintf(&sb, "\t\treturn true, %q, %q\n", field, message)
	fmt.Fprintf(&sb, "\t}\n")
	fmt.Fprintf(&sb, "\treturn false, \"\", \"\"\n")
	fmt.Fprintf(&sb, "}\n")
	return sb.String()
}

func renderExpr(n Node) string {
	switch t := n.(type) {
	case *And:
		return fmt.Sprintf("(%s && %s)", renderExpr(t.Left), renderExpr(t.Right))
	case *Or:
		return fmt.Sprintf("(%s || %s)", renderExpr(t.Left), renderExpr(t.Right))
	case *Not:
		return fmt.Sprintf("!(%s)", renderExpr(t.Child))
	case *Exists:
		return fmt.Sprintf("exists(row, %q)", t.Field)
	case *Compare:
		return renderCompare(t)
	default:
		return n.String()
	}
}

func renderCompare(c *Compare) string {
	var lhs string
	switch c.Fn {
	case fnExists:
		lhs = fmt.Sprintf("exists(row, %q)", c.Field)
	case fnLen:
		lhs = fmt.Sprintf("len(str(row[%q]))", c.Field)
	default:
		switch c.Lit.Kind {
		case KindNumber:
			lhs = fmt.Sprintf("num(row[%q])", c.Field)
		case KindDate:
			lhs = fmt.Sprintf("date(row[%q])", c.Field)
		case KindBool:
			lhs = fmt.Sprintf("boolean(row[%q])", c.Field)
		default:
			lhs = fmt.Sprintf("str(row[%q])", c.Field)
		}
	}
	return fmt.Sprintf("%s %s %s", lhs, goOp(c.Op), goLiteral(c.Lit))
}

func goOp(op Op) string {
	if op == OpEQ {
		return "=="
	}
	return op.String()
}

func goLiteral(v Value) string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindDate:
		return fmt.Sprintf("date(%q)", v.Time.Format("2006-01-02"))
	case KindBool:
		return strconv.FormatBool(v.Bool)
	default:
		return strconv.Quote(v.Str)
	}
}
