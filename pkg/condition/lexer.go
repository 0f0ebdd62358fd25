package condition

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokBool
	tokAnd
	tokOr
	tokNot
	tokExists
	tokLen
	tokLParen
	tokRParen
	tokLT
	tokLE
	tokGT
	tokGE
	tokEQ
	tokNE
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var keywords = map[string]tokenKind{
	"and":    tokAnd,
	"or":     tokOr,
	"not":    tokNot,
	"exists": tokExists,
	"len":    tokLen,
	"true":   tokBool,
	"false":  tokBool,
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == '<':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return token{kind: tokLE, text: "<=", pos: start}, nil
		}
		return token{kind: tokLT, text: "<", pos: start}, nil
	case c == '>':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return token{kind: tokGE, text: ">=", pos: start}, nil
		}
		return token{kind: tokGT, text: ">", pos: start}, nil
	case c == '=':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return token{kind: tokEQ, text: "==", pos: start}, nil
		}
		return token{}, fmt.Errorf("unexpected character %q at %d (did you mean ==?)", "=", start)
	case c == '!':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return token{kind: tokNE, text: "!=", pos: start}, nil
		}
		return token{}, fmt.Errorf("unexpected character %q at %d (did you mean !=?)", "!", start)
	case c == '\'' || c == '"':
		return l.lexString(c)
	case c == '-' || unicode.IsDigit(rune(c)):
		return l.lexNumber()
	case isIdentStart(c):
		return l.lexIdent()
	default:
		return token{}, fmt.Errorf("unexpected character %q at %d", string(c), start)
	}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
}

func (l *lexer) lexString(quote byte) (token, error) {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == quote {
			l.pos++
			return token{kind: tokString, text: sb.String(), pos: start}, nil
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, fmt.Errorf("unterminated string at %d", start)
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	digits := false
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if unicode.IsDigit(rune(c)) {
			digits = true
			l.pos++
			continue
		}
		if c == '.' || c == '_' {
			l.pos++
			continue
		}
		break
	}
	if !digits {
		return token{}, fmt.Errorf("malformed number at %d", start)
	}
	text := strings.ReplaceAll(l.input[start:l.pos], "_", "")
	return token{kind: tokNumber, text: text, pos: start}, nil
}

func (l *lexer) lexIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	text := l.input[start:l.pos]
	if kind, ok := keywords[strings.ToLower(text)]; ok {
		return token{kind: kind, text: strings.ToLower(text), pos: start}, nil
	}
	return token{kind: tokIdent, text: text, pos: start}, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c))
}

func isIdentPart(c byte) bool {
	return c == '_' || c == '.' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}
