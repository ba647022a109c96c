package sema

import (
	"fmt"

	"modlink/internal/ast"
	"modlink/internal/diag"
	"modlink/internal/symbols"
)

// implementsTarget resolves the X of `implements: X` to an interface.
func (c *checker) implementsTarget(e ast.Expr) (InterfaceRef, bool) {
	var sym symbols.Symbol
	var ok bool
	switch x := e.(type) {
	case *ast.Name:
		sym, ok = c.table.Lookup(x.Ident)
	case *ast.Attribute:
		alias, isName := x.Value.(*ast.Name)
		if !isName {
			break
		}
		dep, imported := c.table.Import(c.arena, alias.Ident)
		if !imported {
			break
		}
		sym, ok = c.tables.Table(dep).Lookup(x.Attr)
	}
	if !ok {
		return InterfaceRef{}, false
	}
	return interfaceRefOf(c.arena, sym.Ref)
}

// checkImplements verifies every `implements:` declaration against the
// module's full surface. It returns the satisfied interfaces.
func (c *checker) checkImplements(entries []SurfaceEntry) ([]InterfaceRef, bool) {
	var out []InterfaceRef
	ok := true
	for _, decl := range c.mod.AST.Implements {
		written := ast.Render(decl.Target)
		ref, found := c.implementsTarget(decl.Target)
		if !found {
			c.report(diag.StructureException, decl.Target.Pos(), fmt.Sprintf("`%s` is not an interface!", written)).Emit()
			ok = false
			continue
		}
		if containsRef(out, ref) {
			c.report(diag.StructureException, decl.Target.Pos(), fmt.Sprintf("`%s` is implemented twice!", written)).Emit()
			ok = false
			continue
		}
		iface, _ := InterfaceOf(c.arena, c.tables, ref)
		notes := conformance(entries, iface)
		if len(notes) > 0 {
			b := c.report(diag.InterfaceViolation, decl.Target.Pos(),
				fmt.Sprintf("`%s` does not implement `%s`!", c.mod.Name(), written))
			for _, n := range notes {
				b.WithNote(n.Span, n.Msg)
			}
			b.Emit()
			ok = false
			continue
		}
		out = append(out, ref)
	}
	return out, ok
}

func containsRef(refs []InterfaceRef, ref InterfaceRef) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}
