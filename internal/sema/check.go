package sema

import (
	"fmt"

	"modlink/internal/abi"
	"modlink/internal/ast"
	"modlink/internal/diag"
	"modlink/internal/source"
	"modlink/internal/symbols"
)

// Checker runs the module-composition checks for modules whose dependencies
// already have symbol tables and surfaces.
type Checker struct {
	arena    *symbols.Arena
	tables   symbols.Tables
	surfaces Surfaces
	reporter diag.Reporter
}

func NewChecker(arena *symbols.Arena, tables symbols.Tables, surfaces Surfaces, r diag.Reporter) *Checker {
	return &Checker{arena: arena, tables: tables, surfaces: surfaces, reporter: r}
}

// Check validates module id and returns its surface. The second result is
// false if any diagnostic was reported; the surface is then partial and must
// not reach code generation.
//
// Order: access grants, direct state access in bodies, exports (stopping at
// the first bad item), then `implements:` and selector collisions over the
// merged surface once everything before succeeded.
func (ch *Checker) Check(id symbols.ModuleID) (*Surface, bool) {
	m := ch.arena.Get(id)
	if m == nil {
		panic(fmt.Errorf("sema.Check: invalid module %d", id))
	}
	c := &checker{
		arena:    ch.arena,
		tables:   ch.tables,
		surfaces: ch.surfaces,
		next:     ch.reporter,
		id:       id,
		mod:      m,
		table:    ch.tables.Table(id),
		state:    NewStateAnalyzer(ch.arena, ch.tables),
	}
	return c.run()
}

// checker is the per-module context. It counts what it reports.
type checker struct {
	arena    *symbols.Arena
	tables   symbols.Tables
	surfaces Surfaces
	next     diag.Reporter
	errors   int

	id     symbols.ModuleID
	mod    *symbols.Module
	table  *symbols.Table
	state  *StateAnalyzer
	grants *grantSet
}

func (c *checker) Report(d diag.Diagnostic) {
	c.errors++
	if c.next != nil {
		c.next.Report(d)
	}
}

func (c *checker) report(kind diag.Kind, sp source.Span, msg string) *diag.ReportBuilder {
	return diag.NewReportBuilder(c, kind, sp, msg)
}

func (c *checker) run() (*Surface, bool) {
	s := &Surface{Module: c.id, Path: c.mod.Path}
	if c.mod.IsInterface() {
		s.Entries = c.interfaceEntries()
		return s, true
	}

	c.grants = c.collectGrants()
	s.Grants = c.grants.list
	c.guardBodies()

	s.Entries = c.localEntries()
	exports, ok := c.resolveExports()
	for _, e := range exports.Entries() {
		s.Entries = append(s.Entries, SurfaceEntry{
			Name:      e.Name,
			Sig:       e.Sig,
			Impl:      e.Decl,
			Origin:    OriginExported,
			Via:       e.ViaText,
			Span:      e.Via,
			Selectors: selectorsOf(e.Name, e.Sig),
		})
	}
	if !ok || c.errors > 0 {
		return s, false
	}

	s.Implements, ok = c.checkImplements(s.Entries)
	if !ok {
		return s, false
	}
	if !CheckSelectors(s, c) {
		return s, false
	}
	return s, c.errors == 0
}

func selectorsOf(name string, sig abi.Signature) []abi.MethodID {
	if name == "__default__" {
		return nil
	}
	return abi.MethodIDs(sig)
}

// localEntries lists external functions and public getters in source order.
// Deploy-only functions never reach the runtime surface.
func (c *checker) localEntries() []SurfaceEntry {
	scope := typeScope{arena: c.arena, tables: c.tables, module: c.id}
	var out []SurfaceEntry
	for _, sym := range c.table.Locals() {
		var sig abi.Signature
		switch sym.Ref.Kind {
		case symbols.DeclFunction:
			fn := c.arena.Func(sym.Ref)
			if fn.Visibility != ast.VisExternal {
				continue
			}
			sig = scope.signatureOf(fn)
		case symbols.DeclVariable:
			v := c.arena.Var(sym.Ref)
			if !v.Public {
				continue
			}
			sig = scope.getterOf(v)
		}
		out = append(out, SurfaceEntry{
			Name:      sym.Name,
			Sig:       sig,
			Impl:      sym.Ref,
			Origin:    OriginLocal,
			Span:      sym.Span,
			Selectors: selectorsOf(sym.Name, sig),
		})
	}
	return out
}

// interfaceEntries is the surface of an interface file: all its functions.
func (c *checker) interfaceEntries() []SurfaceEntry {
	scope := typeScope{arena: c.arena, tables: c.tables, module: c.id}
	var out []SurfaceEntry
	for _, sym := range c.table.Locals() {
		if sym.Ref.Kind != symbols.DeclFunction {
			continue
		}
		sig := scope.signatureOf(c.arena.Func(sym.Ref))
		out = append(out, SurfaceEntry{
			Name:      sym.Name,
			Sig:       sig,
			Impl:      sym.Ref,
			Span:      sym.Span,
			Selectors: selectorsOf(sym.Name, sig),
		})
	}
	return out
}

// CheckImplements verifies the `implements:` declarations of s.Module against s.
func CheckImplements(arena *symbols.Arena, tables symbols.Tables, s *Surface, r diag.Reporter) bool {
	c := &checker{
		arena:  arena,
		tables: tables,
		next:   r,
		id:     s.Module,
		mod:    arena.Get(s.Module),
		table:  tables.Table(s.Module),
	}
	_, ok := c.checkImplements(s.Entries)
	return ok
}
