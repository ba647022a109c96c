package syntax

import (
	"strings"

	"modlink/internal/source"
)

type tokKind uint8

const (
	tokIdent tokKind = iota + 1
	tokNumber
	tokString
	tokOp
)

type token struct {
	kind tokKind
	text string
	span source.Span
}

func (t token) is(op string) bool {
	return t.kind == tokOp && t.text == op
}

func (t token) isIdent(name string) bool {
	return t.kind == tokIdent && t.text == name
}

// line is one logical line: physical lines joined while brackets are open.
type line struct {
	indent int
	toks   []token
	span   source.Span
}

func (l line) text() string {
	parts := make([]string, len(l.toks))
	for i, t := range l.toks {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}

var multiOps = []string{
	"//=", "**=", "<<=", ">>=",
	"->", ":=", "==", "!=", "<=", ">=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "//", "**", "<<", ">>",
}

func isAssignOp(t token) bool {
	if t.kind != tokOp {
		return false
	}
	switch t.text {
	case "=", "+=", "-=", "*=", "/=", "//=", "%=", "**=", "<<=", ">>=", "&=", "|=", "^=":
		return true
	}
	return false
}

func joinTexts(toks []token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.text)
	}
	return b.String()
}

func cover(toks []token) source.Span {
	if len(toks) == 0 {
		return source.Span{}
	}
	return toks[0].span.Cover(toks[len(toks)-1].span)
}
