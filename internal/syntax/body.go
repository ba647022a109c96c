package syntax

import (
	"modlink/internal/ast"
)

// scanBody summarizes statements: self storage reads and writes, self
// calls and dotted references rooted at other names. Targets on the left of
// an assignment are writes; augmented assignment is both a read and a write.
// Subscript contents are always reads.
func scanBody(stmts [][]token) ast.Body {
	var b ast.Body
	for _, toks := range stmts {
		lhsEnd, aug := -1, false
		depth := 0
		for i, t := range toks {
			switch {
			case t.is("(") || t.is("[") || t.is("{"):
				depth++
			case t.is(")") || t.is("]") || t.is("}"):
				depth--
			case depth == 0 && isAssignOp(t):
				lhsEnd, aug = i, t.text != "="
			}
			if lhsEnd >= 0 {
				break
			}
		}
		scanChains(toks, lhsEnd, aug, &b)
	}
	return b
}

func scanChains(toks []token, lhsEnd int, aug bool, b *ast.Body) {
	depth := 0
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.is("(") || t.is("[") || t.is("{"):
			depth++
			continue
		case t.is(")") || t.is("]") || t.is("}"):
			depth--
			continue
		case t.kind != tokIdent:
			continue
		case i > 0 && toks[i-1].is("."):
			continue
		}
		parts := []token{t}
		j := i
		for j+2 < len(toks) && toks[j+1].is(".") && toks[j+2].kind == tokIdent {
			parts = append(parts, toks[j+2])
			j += 2
		}
		i = j
		if len(parts) < 2 {
			continue
		}
		call := len(parts) == 2 && j+1 < len(toks) && toks[j+1].is("(")
		write := lhsEnd >= 0 && j < lhsEnd && depth == 0
		sp := parts[0].span.Cover(parts[1].span)
		if parts[0].text == "self" {
			ref := ast.Ref{Name: parts[1].text, Span: sp}
			switch {
			case call:
				b.SelfCalls = append(b.SelfCalls, ref)
			case write:
				b.Writes = append(b.Writes, ref)
				if aug {
					b.Reads = append(b.Reads, ref)
				}
			default:
				b.Reads = append(b.Reads, ref)
			}
			continue
		}
		b.ModuleRefs = append(b.ModuleRefs, ast.ModuleRef{
			Alias:  parts[0].text,
			Member: parts[1].text,
			Span:   sp,
			Write:  write,
			Call:   call,
		})
	}
}
