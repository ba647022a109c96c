package sema

import (
	"strings"

	"modlink/internal/abi"
	"modlink/internal/ast"
	"modlink/internal/symbols"
)

// typeScope resolves user-defined type names as seen from one module.
type typeScope struct {
	arena  *symbols.Arena
	tables symbols.Tables
	module symbols.ModuleID
}

func (s typeScope) resolver() abi.Resolver {
	return s.resolve
}

func (s typeScope) resolve(name string) (abi.NamedKind, []*abi.TypeExpr, abi.Resolver) {
	table := s.tables.Table(s.module)
	if alias, rest, ok := strings.Cut(name, "."); ok {
		dep, ok := table.Import(s.arena, alias)
		if !ok {
			return abi.NamedUnknown, nil, nil
		}
		return typeScope{arena: s.arena, tables: s.tables, module: dep}.resolve(rest)
	}
	sym, ok := table.Lookup(name)
	if !ok {
		return abi.NamedUnknown, nil, nil
	}
	switch sym.Ref.Kind {
	case symbols.DeclInterface:
		return abi.NamedInterface, nil, nil
	case symbols.DeclFlag:
		return abi.NamedFlag, nil, nil
	case symbols.DeclImport:
		if s.arena.Get(s.arena.ImportTarget(sym.Ref)).IsInterface() {
			return abi.NamedInterface, nil, nil
		}
	case symbols.DeclStruct:
		st := s.arena.Struct(sym.Ref)
		fields := make([]*abi.TypeExpr, 0, len(st.Fields))
		for _, f := range st.Fields {
			t, err := abi.ParseType(f.Type)
			if err != nil {
				return abi.NamedUnknown, nil, nil
			}
			fields = append(fields, t)
		}
		return abi.NamedStruct, fields, s.resolve
	}
	return abi.NamedUnknown, nil, nil
}

// canonical renders a type annotation as an ABI type. Annotations the pass
// cannot canonicalise keep their source spelling; rejecting them is the type
// checker's business.
func (s typeScope) canonical(text string) string {
	if text == "" {
		return ""
	}
	t, err := abi.ParseType(text)
	if err != nil {
		return strings.Join(strings.Fields(text), "")
	}
	out, err := abi.Canonical(t, s.resolver())
	if err != nil {
		return t.String()
	}
	return out
}

func (s typeScope) canonicalExpr(t *abi.TypeExpr) string {
	out, err := abi.Canonical(t, s.resolver())
	if err != nil {
		return t.String()
	}
	return out
}

// signatureOf builds the external signature of fn declared in the scope's module.
func (s typeScope) signatureOf(fn *ast.FuncDecl) abi.Signature {
	sig := abi.Signature{
		Name:       fn.Name,
		Params:     make([]string, len(fn.Params)),
		Return:     s.canonical(fn.Return),
		Mutability: fn.Mutability,
		Defaults:   fn.Defaults(),
	}
	for i, p := range fn.Params {
		sig.Params[i] = s.canonical(p.Type)
	}
	return sig
}

// getterOf builds the signature of the accessor generated for a public variable.
func (s typeScope) getterOf(v *ast.VarDecl) abi.Signature {
	sig := abi.Signature{Name: v.Name, Mutability: abi.View}
	t, err := abi.ParseType(v.Type)
	if err != nil {
		sig.Return = strings.Join(strings.Fields(v.Type), "")
		return sig
	}
	params, ret := abi.GetterShape(t)
	sig.Params = make([]string, len(params))
	for i, p := range params {
		sig.Params[i] = s.canonicalExpr(p)
	}
	sig.Return = s.canonicalExpr(ret)
	return sig
}
