package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a condition that does not fit the grammar. Fragment
// names the unparsable portion of the input.
type ParseError struct {
	Input    string
	Fragment string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse condition: %s at %q", e.Reason, e.Fragment)
}

// Parse compiles condition text into a typed AST. The grammar:
//
//	expr   := term ('or' term)*
//	term   := factor ('and' factor)*
//	factor := 'not' factor | '(' expr ')' | check
//	check  := operand op literal | 'exists' '(' field ')'
//	operand := field | 'len' '(' field ')' | 'exists' '(' field ')'
//	op     := < | <= | > | >= | == | !=
//
// Literals are numbers, quoted strings (coerced to dates or numbers when
// they read as such), or true/false. Anything else is rejected.
func Parse(input string) (Node, error) {
	p := &parser{lex: &lexer{input: input}, input: input}
	if err := p.advance(); err != nil {
		return nil, err
	}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected trailing input")
	}
	return node, nil
}

type parser struct {
	lex   *lexer
	input string
	tok   token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return &ParseError{Input: p.input, Fragment: p.remainder(), Reason: err.Error()}
	}
	p.tok = tok
	return nil
}

func (p *parser) remainder() string {
	frag := strings.TrimSpace(p.input[min(p.tok.pos, len(p.input)):])
	if frag == "" {
		frag = p.input
	}
	if len(frag) > 40 {
		frag = frag[:40]
	}
	return frag
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{
		Input:    p.input,
		Fragment: p.remainder(),
		Reason:   fmt.Sprintf(format, args...),
	}
}

func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokOr {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokAnd {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &And{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (Node, error) {
	switch p.tok.kind {
	case tokNot:
		if err := p.advance(); err != nil {
			return nil, err
		}
		child, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &Not{Child: child}, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("expected closing parenthesis")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return p.parseCheck()
	}
}

func (p *parser) parseCheck() (Node, error) {
	field, fn, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	op, ok := comparisonOp(p.tok.kind)
	if !ok {
		if fn == fnExists {
			// bare presence check: exists(field)
			return &Exists{Field: field}, nil
		}
		return nil, p.errorf("expected comparison operator after %q", field)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	if lit.Kind == KindBool && op != OpEQ && op != OpNE {
		return nil, p.errorf("operator %s not valid for boolean literal", op)
	}
	if fn == fnExists && lit.Kind != KindBool {
		return nil, p.errorf("exists(%s) compares only against true or false", field)
	}
	if fn == fnLen && lit.Kind != KindNumber {
		return nil, p.errorf("len(%s) compares only against numbers", field)
	}

	return &Compare{Field: field, Fn: fn, Op: op, Lit: lit}, nil
}

func (p *parser) parseOperand() (string, operandFn, error) {
	switch p.tok.kind {
	case tokIdent:
		field := p.tok.text
		if err := p.advance(); err != nil {
			return "", fnNone, err
		}
		return field, fnNone, nil
	case tokLen:
		field, err := p.parseCall("len")
		return field, fnLen, err
	case tokExists:
		field, err := p.parseCall("exists")
		return field, fnExists, err
	default:
		return "", fnNone, p.errorf("expected field reference")
	}
}

func (p *parser) parseCall(name string) (string, error) {
	if err := p.advance(); err != nil {
		return "", err
	}
	if p.tok.kind != tokLParen {
		return "", p.errorf("expected ( after %s", name)
	}
	if err := p.advance(); err != nil {
		return "", err
	}
	if p.tok.kind != tokIdent {
		return "", p.errorf("expected field name in %s(...)", name)
	}
	field := p.tok.text
	if err := p.advance(); err != nil {
		return "", err
	}
	if p.tok.kind != tokRParen {
		return "", p.errorf("expected ) after %s(%s", name, field)
	}
	if err := p.advance(); err != nil {
		return "", err
	}
	return field, nil
}

func (p *parser) parseLiteral() (Value, error) {
	switch p.tok.kind {
	case tokNumber:
		f, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return Value{}, p.errorf("malformed number %q", p.tok.text)
		}
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		return Number(f), nil

	case tokString:
		text := p.tok.text
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		return Coerce(text), nil

	case tokBool:
		b := p.tok.text == "true"
		if err := p.advance(); err != nil {
			return Value{}, err
		}
		return Bool(b), nil

	default:
		return Value{}, p.errorf("expected literal value")
	}
}

func comparisonOp(k tokenKind) (Op, bool) {
	switch k {
	case tokLT:
		return OpLT, true
	case tokLE:
		return OpLE, true
	case tokGT:
		return OpGT, true
	case tokGE:
		return OpGE, true
	case tokEQ:
		return OpEQ, true
	case tokNE:
		return OpNE, true
	default:
		return 0, false
	}
}
