package syntax

import (
	"modlink/internal/ast"
	"modlink/internal/source"
)

type parseError struct {
	span source.Span
	msg  string
}

// parseExpr parses the export/implements expression language:
// names, attribute access, calls and parenthesised tuples.
func parseExpr(toks []token) (ast.Expr, *parseError) {
	ep := exprParser{toks: toks}
	e, err := ep.expr()
	if err != nil {
		return nil, err
	}
	if ep.pos != len(toks) {
		return nil, &parseError{span: toks[ep.pos].span, msg: "unexpected `" + toks[ep.pos].text + "`"}
	}
	return e, nil
}

type exprParser struct {
	toks []token
	pos  int
}

func (ep *exprParser) peek() (token, bool) {
	if ep.pos >= len(ep.toks) {
		return token{}, false
	}
	return ep.toks[ep.pos], true
}

func (ep *exprParser) errEnd() *parseError {
	sp := source.Span{}
	if n := len(ep.toks); n > 0 {
		last := ep.toks[n-1].span
		sp = source.Span{File: last.File, Start: last.End, End: last.End}
	}
	return &parseError{span: sp, msg: "unexpected end of expression"}
}

func (ep *exprParser) expr() (ast.Expr, *parseError) {
	t, ok := ep.peek()
	if !ok {
		return nil, ep.errEnd()
	}
	var e ast.Expr
	switch {
	case t.kind == tokIdent:
		ep.pos++
		e = &ast.Name{Ident: t.text, Span: t.span}
	case t.kind == tokNumber || t.kind == tokString:
		ep.pos++
		e = &ast.Literal{Text: t.text, Span: t.span}
	case t.is("("):
		ep.pos++
		elts, trailingComma, closeTok, err := ep.list(")")
		if err != nil {
			return nil, err
		}
		if len(elts) == 1 && !trailingComma {
			e = elts[0]
		} else {
			e = &ast.Tuple{Elts: elts, Span: t.span.Cover(closeTok.span)}
		}
	default:
		return nil, &parseError{span: t.span, msg: "unexpected `" + t.text + "`"}
	}
	for {
		t, ok := ep.peek()
		if !ok {
			return e, nil
		}
		switch {
		case t.is("."):
			ep.pos++
			name, ok := ep.peek()
			if !ok || name.kind != tokIdent {
				if !ok {
					return nil, ep.errEnd()
				}
				return nil, &parseError{span: name.span, msg: "expected attribute name"}
			}
			ep.pos++
			e = &ast.Attribute{Value: e, Attr: name.text, AttrSpan: name.span, Span: e.Pos().Cover(name.span)}
		case t.is("("):
			ep.pos++
			args, _, closeTok, err := ep.list(")")
			if err != nil {
				return nil, err
			}
			e = &ast.Call{Func: e, Args: args, Span: e.Pos().Cover(closeTok.span)}
		default:
			return e, nil
		}
	}
}

// list parses comma-separated expressions up to the closing token.
func (ep *exprParser) list(closer string) (elts []ast.Expr, trailingComma bool, closeTok token, err *parseError) {
	for {
		t, ok := ep.peek()
		if !ok {
			return nil, false, token{}, ep.errEnd()
		}
		if t.is(closer) {
			ep.pos++
			return elts, trailingComma, t, nil
		}
		e, perr := ep.expr()
		if perr != nil {
			return nil, false, token{}, perr
		}
		elts = append(elts, e)
		trailingComma = false
		t, ok = ep.peek()
		if !ok {
			return nil, false, token{}, ep.errEnd()
		}
		if t.is(",") {
			ep.pos++
			trailingComma = true
			continue
		}
		if !t.is(closer) {
			return nil, false, token{}, &parseError{span: t.span, msg: "expected `,` or `" + closer + "`"}
		}
	}
}
