package symbols

import (
	"fmt"

	"modlink/internal/ast"
	"modlink/internal/source"
)

// ExportHint accompanies every malformed export expression.
const ExportHint = "exports should look like <module>.<function | interface>"

// TargetKind tags the result of dotted-path resolution.
type TargetKind uint8

const (
	TargetInvalid TargetKind = iota
	TargetFunction
	TargetVariable
	// TargetInterface is `lib.IFace`: an inline interface of lib or an
	// interface file lib imports.
	TargetInterface
	// TargetModuleInterface is `lib.__interface__`.
	TargetModuleInterface
	// TargetRemoteProxy is `lib.__at__(addr)`: bound to lib's ABI, not to a declaration.
	TargetRemoteProxy
	// TargetValue is any other call result.
	TargetValue
)

func (k TargetKind) String() string {
	switch k {
	case TargetFunction:
		return "function"
	case TargetVariable:
		return "variable"
	case TargetInterface:
		return "interface"
	case TargetModuleInterface:
		return "module interface"
	case TargetRemoteProxy:
		return "remote proxy"
	case TargetValue:
		return "value"
	default:
		return "invalid"
	}
}

// Target is what an export expression denotes.
type Target struct {
	Kind   TargetKind
	Module ModuleID // модуль, к которому привязан путь (lib в lib.foo)
	Alias  string
	Member string
	Decl   DeclRef
	// InterfaceModule is set when an interface target is an imported interface file.
	InterfaceModule ModuleID
	Reason          string
	Hint            string
	Span            source.Span
}

func invalid(sp source.Span, reason, hint string) Target {
	return Target{Kind: TargetInvalid, Reason: reason, Hint: hint, Span: sp}
}

// Resolve maps an export expression written in module from to a Target.
// Call results never denote declarations: a remote proxy is reported as
// "invalid exports" and any other value as "invalid export of a value".
func Resolve(arena *Arena, tables Tables, from ModuleID, e ast.Expr) Target {
	r := pathResolver{arena: arena, tables: tables, from: from}
	t := r.path(e)
	switch t.Kind {
	case TargetRemoteProxy:
		return invalid(e.Pos(), "invalid exports", ExportHint)
	case TargetValue:
		return invalid(e.Pos(), "invalid export of a value", ExportHint)
	}
	return t
}

type pathResolver struct {
	arena  *Arena
	tables Tables
	from   ModuleID
}

func (r pathResolver) path(e ast.Expr) Target {
	switch x := e.(type) {
	case *ast.Attribute:
		switch v := x.Value.(type) {
		case *ast.Name:
			return r.member(v, x)
		case *ast.Call:
			inner := r.call(v)
			switch inner.Kind {
			case TargetRemoteProxy:
				if x.Attr == "__interface__" {
					return invalid(x.Span, fmt.Sprintf("`%s.__at__(...)` has no member '__interface__'", inner.Alias), "")
				}
				return Target{Kind: TargetValue, Module: inner.Module, Alias: inner.Alias, Span: x.Span}
			case TargetValue:
				return Target{Kind: TargetValue, Span: x.Span}
			}
			return inner
		}
		return invalid(x.Span, "invalid export", ExportHint)
	case *ast.Call:
		return r.call(x)
	}
	return invalid(e.Pos(), "invalid export", ExportHint)
}

// call classifies `lib.__at__(x)`, `lib.__interface__(x)` and other calls.
func (r pathResolver) call(c *ast.Call) Target {
	if a, ok := c.Func.(*ast.Attribute); ok {
		if n, ok := a.Value.(*ast.Name); ok && a.Attr == "__at__" {
			mod, ok := r.tables.Table(r.from).Import(r.arena, n.Ident)
			if !ok {
				return invalid(n.Span, fmt.Sprintf("`%s` is not an imported module", n.Ident), "")
			}
			return Target{Kind: TargetRemoteProxy, Module: mod, Alias: n.Ident, Span: c.Span}
		}
	}
	return Target{Kind: TargetValue, Span: c.Span}
}

func (r pathResolver) member(alias *ast.Name, x *ast.Attribute) Target {
	if alias.Ident == "self" {
		return invalid(x.Span, "invalid export", ExportHint)
	}
	modID, ok := r.tables.Table(r.from).Import(r.arena, alias.Ident)
	if !ok {
		return invalid(alias.Span, fmt.Sprintf("`%s` is not an imported module", alias.Ident), "")
	}
	target := r.arena.Get(modID)
	base := Target{Module: modID, Alias: alias.Ident, Member: x.Attr, Span: x.Span}
	dotted := alias.Ident + "." + x.Attr

	if x.Attr == "__at__" {
		return invalid(x.Span, fmt.Sprintf("not a function or interface: `%s`", dotted), ExportHint)
	}
	if target.IsInterface() {
		return invalid(x.Span, "cannot export from an interface file", ExportHint)
	}
	if x.Attr == "__interface__" {
		base.Kind = TargetModuleInterface
		return base
	}
	sym, ok := r.tables.Table(modID).Lookup(x.Attr)
	if !ok {
		return invalid(x.AttrSpan, fmt.Sprintf("`%s` has no member '%s'", alias.Ident, x.Attr), "")
	}
	base.Decl = sym.Ref
	switch sym.Ref.Kind {
	case DeclFunction:
		if fn := r.arena.Func(sym.Ref); fn.Visibility != ast.VisExternal {
			return invalid(x.Span, "can't export non-external functions!", "")
		}
		base.Kind = TargetFunction
		return base
	case DeclVariable:
		if v := r.arena.Var(sym.Ref); !v.Public {
			return invalid(x.Span, "not a public variable!", "")
		}
		base.Kind = TargetVariable
		return base
	case DeclInterface:
		base.Kind = TargetInterface
		return base
	case DeclImport:
		if dep := r.arena.ImportTarget(sym.Ref); r.arena.Get(dep).IsInterface() {
			base.Kind = TargetInterface
			base.InterfaceModule = dep
			return base
		}
	}
	return invalid(x.Span, fmt.Sprintf("not a function or interface: `%s`", dotted), ExportHint)
}
