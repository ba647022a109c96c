package sema

import (
	"fmt"

	"modlink/internal/abi"
	"modlink/internal/ast"
	"modlink/internal/diag"
	"modlink/internal/source"
	"modlink/internal/symbols"
)

// ExportEntry is one declaration re-published by the exporting module.
type ExportEntry struct {
	Decl symbols.DeclRef
	Name string
	Sig  abi.Signature
	// Source is the bundle path of the module declaring Decl.
	Source   string
	DeclSpan source.Span
	// Via is the span of the export expression; ViaText is how it was written.
	Via     source.Span
	ViaText string
}

// ExportSet is the running set of exports of one module. Entries are unique
// by underlying declaration.
type ExportSet struct {
	entries []ExportEntry
	byDecl  map[symbols.DeclRef]int
}

func NewExportSet() *ExportSet {
	return &ExportSet{byDecl: make(map[symbols.DeclRef]int)}
}

// Find returns the entry exporting ref.
func (s *ExportSet) Find(ref symbols.DeclRef) (*ExportEntry, bool) {
	i, ok := s.byDecl[ref]
	if !ok {
		return nil, false
	}
	return &s.entries[i], true
}

// Insert adds e; it reports false if e.Decl is already present.
func (s *ExportSet) Insert(e ExportEntry) bool {
	if _, dup := s.byDecl[e.Decl]; dup {
		return false
	}
	s.byDecl[e.Decl] = len(s.entries)
	s.entries = append(s.entries, e)
	return true
}

// Entries returns exports in insertion order.
func (s *ExportSet) Entries() []ExportEntry { return s.entries }

func (s *ExportSet) Len() int { return len(s.entries) }

// candidate is a concrete function or variable an export item stands for.
type candidate struct {
	decl symbols.DeclRef
	name string
	sig  abi.Signature
}

// resolveExports walks the module's exports in source order. Processing
// stops at the first failing item.
func (c *checker) resolveExports() (*ExportSet, bool) {
	set := NewExportSet()
	for _, item := range c.mod.AST.ExportItems() {
		t := symbols.Resolve(c.arena, c.tables, c.id, item)
		if t.Kind == symbols.TargetInvalid {
			c.report(diag.StructureException, t.Span, t.Reason).WithHint(t.Hint).Emit()
			return set, false
		}
		cands, ok := c.expand(t, item)
		if !ok {
			return set, false
		}
		for _, cand := range cands {
			if !c.admit(set, t, cand, item) {
				return set, false
			}
		}
	}
	return set, true
}

// admit runs the guard, duplicate and local-collision checks for one
// candidate and inserts it on success.
func (c *checker) admit(set *ExportSet, t symbols.Target, cand candidate, item ast.Expr) bool {
	sp := item.Pos()
	if !c.guard(t.Alias, t.Module, cand.decl, sp) {
		return false
	}
	if prev, dup := set.Find(cand.decl); dup {
		c.report(diag.StructureException, sp, "already exported!").WithPrev(prev.Via).Emit()
		return false
	}
	if local, ok := c.table.Lookup(cand.name); ok && isMember(local.Ref.Kind) {
		c.report(diag.NamespaceCollision, sp, fmt.Sprintf("Member '%s' already exists in self", cand.name)).
			WithPrev(local.Span).
			Emit()
		return false
	}
	_, declSpan := symbols.NameOf(c.arena, cand.decl)
	set.Insert(ExportEntry{
		Decl:     cand.decl,
		Name:     cand.name,
		Sig:      cand.sig,
		Source:   c.arena.Get(cand.decl.Module).Path,
		DeclSpan: declSpan,
		Via:      sp,
		ViaText:  ast.Render(item),
	})
	return true
}

func isMember(k symbols.DeclKind) bool {
	return k == symbols.DeclFunction || k == symbols.DeclVariable
}

// expand turns a resolved target into the concrete declarations it exports.
func (c *checker) expand(t symbols.Target, item ast.Expr) ([]candidate, bool) {
	scope := typeScope{arena: c.arena, tables: c.tables, module: t.Module}
	switch t.Kind {
	case symbols.TargetFunction:
		return []candidate{{decl: t.Decl, name: t.Member, sig: scope.signatureOf(c.arena.Func(t.Decl))}}, true
	case symbols.TargetVariable:
		return []candidate{{decl: t.Decl, name: t.Member, sig: scope.getterOf(c.arena.Var(t.Decl))}}, true
	case symbols.TargetModuleInterface:
		return c.expandModule(t)
	case symbols.TargetInterface:
		return c.expandInterface(t, item)
	}
	c.report(diag.StructureException, t.Span, "invalid export").WithHint(symbols.ExportHint).Emit()
	return nil, false
}

// expandModule handles `lib.__interface__`: every external function of lib.
func (c *checker) expandModule(t symbols.Target) ([]candidate, bool) {
	lib := c.surfaces.Surface(t.Module)
	locals := lib.Locals()
	if len(locals) == 0 {
		m := c.arena.Get(t.Module)
		c.report(diag.StructureException, t.Span,
			fmt.Sprintf("%s (located at `%s`) has no external functions!", m.Name(), m.AbsPath)).Emit()
		return nil, false
	}
	out := make([]candidate, 0, len(locals))
	for _, e := range locals {
		out = append(out, candidate{decl: e.Impl, name: e.Name, sig: e.Sig})
	}
	return out, true
}

// expandInterface handles `lib.IFace`. lib must declare `implements: IFace`;
// conformance itself was verified when lib was checked.
func (c *checker) expandInterface(t symbols.Target, item ast.Expr) ([]candidate, bool) {
	ref, _ := interfaceRefOf(c.arena, t.Decl)
	lib := c.surfaces.Surface(t.Module)
	if lib == nil || !lib.Declares(ref) {
		dotted := ast.Render(item)
		c.report(diag.InterfaceViolation, t.Span,
			fmt.Sprintf("requested `%s` but `%s` does not implement `%s`!", dotted, t.Alias, dotted)).Emit()
		return nil, false
	}
	iface, ok := InterfaceOf(c.arena, c.tables, ref)
	if !ok {
		c.report(diag.StructureException, t.Span, "invalid export").WithHint(symbols.ExportHint).Emit()
		return nil, false
	}
	out := make([]candidate, 0, len(iface.Methods))
	for _, m := range iface.Methods {
		e, ok := lib.Lookup(m.Sig.Name)
		if !ok {
			continue
		}
		out = append(out, candidate{decl: e.Impl, name: e.Name, sig: e.Sig})
	}
	return out, true
}
