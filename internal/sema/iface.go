package sema

import (
	"fmt"

	"modlink/internal/abi"
	"modlink/internal/diag"
	"modlink/internal/source"
	"modlink/internal/symbols"
)

// InterfaceRef identifies an interface independent of the path used to
// reach it: an interface file by its module, an inline interface by its
// declaration.
type InterfaceRef struct {
	File   symbols.ModuleID
	Inline symbols.DeclRef
}

func (r InterfaceRef) IsValid() bool {
	return r.File.IsValid() || r.Inline.IsValid()
}

// Method is one interface requirement.
type Method struct {
	Sig  abi.Signature
	Span source.Span
}

// Interface is an ordered set of method signatures.
type Interface struct {
	Name    string
	Ref     InterfaceRef
	Span    source.Span
	Methods []Method
}

// InterfaceOf builds the interface ref points at. Method types are
// canonicalised in the scope of the module that declares them.
func InterfaceOf(arena *symbols.Arena, tables symbols.Tables, ref InterfaceRef) (*Interface, bool) {
	if ref.File.IsValid() {
		m := arena.Get(ref.File)
		if m == nil || !m.IsInterface() {
			return nil, false
		}
		scope := typeScope{arena: arena, tables: tables, module: ref.File}
		out := &Interface{Name: m.Name(), Ref: ref, Span: m.AST.Span}
		for _, fn := range m.AST.Funcs.Slice() {
			out.Methods = append(out.Methods, Method{Sig: scope.signatureOf(&fn), Span: fn.Span})
		}
		return out, true
	}
	decl := arena.Interface(ref.Inline)
	if decl == nil {
		return nil, false
	}
	scope := typeScope{arena: arena, tables: tables, module: ref.Inline.Module}
	out := &Interface{Name: decl.Name, Ref: ref, Span: decl.Span}
	for i := range decl.Methods {
		fn := &decl.Methods[i]
		out.Methods = append(out.Methods, Method{Sig: scope.signatureOf(fn), Span: fn.Span})
	}
	return out, true
}

// interfaceRefOf maps a symbol to the interface it denotes, if any.
func interfaceRefOf(arena *symbols.Arena, ref symbols.DeclRef) (InterfaceRef, bool) {
	switch ref.Kind {
	case symbols.DeclInterface:
		return InterfaceRef{Inline: ref}, true
	case symbols.DeclImport:
		dep := arena.ImportTarget(ref)
		if arena.Get(dep).IsInterface() {
			return InterfaceRef{File: dep}, true
		}
	}
	return InterfaceRef{}, false
}

// describe renders a signature with its return type and mutability for notes.
func describe(sig abi.Signature) string {
	s := sig.String()
	if sig.Return != "" {
		s += " -> " + sig.Return
	}
	return s + " " + sig.Mutability.String()
}

// conformance lists what entries lack to satisfy iface, one note per
// missing or mismatched method. An empty result means iface is satisfied.
func conformance(entries []SurfaceEntry, iface *Interface) []diag.Note {
	var notes []diag.Note
	for _, m := range iface.Methods {
		var found *SurfaceEntry
		for i := range entries {
			if entries[i].Name == m.Sig.Name {
				found = &entries[i]
				break
			}
		}
		switch {
		case found == nil:
			notes = append(notes, diag.Note{Span: m.Span, Msg: fmt.Sprintf("missing `%s`", describe(m.Sig))})
		case !found.Sig.Equivalent(m.Sig):
			notes = append(notes, diag.Note{Span: found.Span, Msg: fmt.Sprintf("`%s` does not match `%s`", describe(found.Sig), describe(m.Sig))})
		case !abi.Compatible(found.Sig.Mutability, m.Sig.Mutability):
			notes = append(notes, diag.Note{Span: found.Span, Msg: fmt.Sprintf("`%s` is %s, interface requires %s", found.Sig, found.Sig.Mutability, m.Sig.Mutability)})
		}
	}
	return notes
}
