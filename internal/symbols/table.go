package symbols

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"modlink/internal/diag"
	"modlink/internal/source"
)

// Table is the top-level namespace of one module. It is built once and
// read-only afterwards.
type Table struct {
	Module  ModuleID
	Symbols []Symbol // в порядке объявления
	index   map[string]int
}

// Tables gives read access to already built tables of other modules.
type Tables interface {
	Table(id ModuleID) *Table
}

func declIndex(i int) uint32 {
	n, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("declaration index overflow: %w", err))
	}
	return n
}

// BuildTable registers every top-level name of module id. A name declared
// twice is a NamespaceCollision pointing at both declarations.
func BuildTable(arena *Arena, id ModuleID, r diag.Reporter) *Table {
	m := arena.Get(id)
	if m == nil {
		panic(fmt.Errorf("symbols.BuildTable: invalid module %d", id))
	}
	mod := m.AST
	var pending []Symbol
	for i, imp := range mod.Imports {
		pending = append(pending, Symbol{
			Name:     imp.Alias,
			Ref:      DeclRef{Module: id, Kind: DeclImport, Index: declIndex(i)},
			Span:     imp.Span,
			NameSpan: imp.Span,
		})
	}
	for i, v := range mod.Vars.Slice() {
		pending = append(pending, Symbol{Name: v.Name, Ref: DeclRef{Module: id, Kind: DeclVariable, Index: declIndex(i + 1)}, Span: v.Span, NameSpan: v.NameSpan})
	}
	for i, f := range mod.Funcs.Slice() {
		pending = append(pending, Symbol{Name: f.Name, Ref: DeclRef{Module: id, Kind: DeclFunction, Index: declIndex(i + 1)}, Span: f.Span, NameSpan: f.NameSpan})
	}
	for i, in := range mod.Interfaces.Slice() {
		pending = append(pending, Symbol{Name: in.Name, Ref: DeclRef{Module: id, Kind: DeclInterface, Index: declIndex(i + 1)}, Span: in.Span, NameSpan: in.Span})
	}
	for i, s := range mod.Structs.Slice() {
		pending = append(pending, Symbol{Name: s.Name, Ref: DeclRef{Module: id, Kind: DeclStruct, Index: declIndex(i + 1)}, Span: s.Span, NameSpan: s.Span})
	}
	for i, fl := range mod.Flags {
		pending = append(pending, Symbol{Name: fl.Name, Ref: DeclRef{Module: id, Kind: DeclFlag, Index: declIndex(i)}, Span: fl.Span, NameSpan: fl.Span})
	}
	// порядок исходника, чтобы "prev" всегда был более ранним объявлением
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Span.Before(pending[j].Span)
	})

	t := &Table{
		Module:  id,
		Symbols: make([]Symbol, 0, len(pending)),
		index:   make(map[string]int, len(pending)),
	}
	for _, sym := range pending {
		if prev, ok := t.index[sym.Name]; ok {
			diag.NewReportBuilder(r, diag.NamespaceCollision, sym.NameSpan,
				fmt.Sprintf("Member '%s' already exists in self", sym.Name)).
				WithPrev(t.Symbols[prev].Span).
				Emit()
			continue
		}
		t.index[sym.Name] = len(t.Symbols)
		t.Symbols = append(t.Symbols, sym)
	}
	return t
}

// Lookup returns the symbol declared under name.
func (t *Table) Lookup(name string) (Symbol, bool) {
	if t == nil {
		return Symbol{}, false
	}
	i, ok := t.index[name]
	if !ok {
		return Symbol{}, false
	}
	return t.Symbols[i], true
}

// Import resolves an import alias to the module it names.
func (t *Table) Import(arena *Arena, alias string) (ModuleID, bool) {
	sym, ok := t.Lookup(alias)
	if !ok || sym.Ref.Kind != DeclImport {
		return NoModuleID, false
	}
	id := arena.ImportTarget(sym.Ref)
	return id, id.IsValid()
}

// Locals returns the functions and variables of the module in source order.
func (t *Table) Locals() []Symbol {
	if t == nil {
		return nil
	}
	out := make([]Symbol, 0, len(t.Symbols))
	for _, s := range t.Symbols {
		if s.Ref.Kind == DeclFunction || s.Ref.Kind == DeclVariable {
			out = append(out, s)
		}
	}
	return out
}

// NameOf is a convenience for diagnostics.
func NameOf(arena *Arena, ref DeclRef) (string, source.Span) {
	switch ref.Kind {
	case DeclFunction:
		if f := arena.Func(ref); f != nil {
			return f.Name, f.Span
		}
	case DeclVariable:
		if v := arena.Var(ref); v != nil {
			return v.Name, v.Span
		}
	case DeclInterface:
		if in := arena.Interface(ref); in != nil {
			return in.Name, in.Span
		}
	case DeclImport:
		if m := arena.Get(ref.Module); m != nil && int(ref.Index) < len(m.AST.Imports) {
			imp := m.AST.Imports[ref.Index]
			return imp.Alias, imp.Span
		}
	}
	return "", source.Span{}
}
