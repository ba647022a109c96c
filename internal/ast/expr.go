package ast

import (
	"strings"

	"modlink/internal/source"
)

// Expr is the small expression language used by `exports:` and
// `implements:`. Variants: *Name, *Attribute, *Call, *Tuple, *Literal.
type Expr interface {
	Pos() source.Span
	exprNode()
}

type Name struct {
	Ident string
	Span  source.Span
}

// Attribute is `Value.Attr`.
type Attribute struct {
	Value    Expr
	Attr     string
	AttrSpan source.Span
	Span     source.Span
}

type Call struct {
	Func Expr
	Args []Expr
	Span source.Span
}

type Tuple struct {
	Elts []Expr
	Span source.Span
}

// Literal is a number or string argument; it never resolves to a declaration.
type Literal struct {
	Text string
	Span source.Span
}

func (e *Name) Pos() source.Span      { return e.Span }
func (e *Attribute) Pos() source.Span { return e.Span }
func (e *Call) Pos() source.Span      { return e.Span }
func (e *Tuple) Pos() source.Span     { return e.Span }
func (e *Literal) Pos() source.Span   { return e.Span }

func (*Name) exprNode()      {}
func (*Attribute) exprNode() {}
func (*Call) exprNode()      {}
func (*Tuple) exprNode()     {}
func (*Literal) exprNode()   {}

// FlattenExports appends e to dst, expanding nested tuples left to right.
func FlattenExports(dst []Expr, e Expr) []Expr {
	if t, ok := e.(*Tuple); ok {
		for _, elt := range t.Elts {
			dst = FlattenExports(dst, elt)
		}
		return dst
	}
	return append(dst, e)
}

// Render prints e in normalized source form ("lib.__at__(self).foo").
func Render(e Expr) string {
	var b strings.Builder
	render(&b, e)
	return b.String()
}

func render(b *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *Name:
		b.WriteString(e.Ident)
	case *Literal:
		b.WriteString(e.Text)
	case *Attribute:
		render(b, e.Value)
		b.WriteByte('.')
		b.WriteString(e.Attr)
	case *Call:
		render(b, e.Func)
		b.WriteByte('(')
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			render(b, a)
		}
		b.WriteByte(')')
	case *Tuple:
		b.WriteByte('(')
		for i, a := range e.Elts {
			if i > 0 {
				b.WriteString(", ")
			}
			render(b, a)
		}
		b.WriteByte(')')
	}
}

// Root returns the leftmost Name of an attribute/call chain, or nil.
func Root(e Expr) *Name {
	for {
		switch x := e.(type) {
		case *Name:
			return x
		case *Attribute:
			e = x.Value
		case *Call:
			e = x.Func
		default:
			return nil
		}
	}
}
