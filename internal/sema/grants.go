package sema

import (
	"fmt"

	"modlink/internal/ast"
	"modlink/internal/diag"
	"modlink/internal/source"
	"modlink/internal/symbols"
)

// GrantMode is the kind of access a module declared.
type GrantMode uint8

const (
	GrantUses GrantMode = iota + 1
	GrantInitializes
)

func (m GrantMode) String() string {
	switch m {
	case GrantUses:
		return "uses"
	case GrantInitializes:
		return "initializes"
	}
	return "none"
}

// AccessGrant records `uses: To` or `initializes: To` declared in From.
type AccessGrant struct {
	From symbols.ModuleID
	To   symbols.ModuleID
	Mode GrantMode
	Span source.Span
}

// grantSet indexes grants by target module. initializes implies uses.
type grantSet struct {
	list []AccessGrant
	uses map[symbols.ModuleID]source.Span
	init map[symbols.ModuleID]source.Span
}

// Allows reports whether the module may touch to's state.
func (g *grantSet) Allows(to symbols.ModuleID) bool {
	_, u := g.uses[to]
	_, i := g.init[to]
	return u || i
}

// collectGrants reads every `uses:` and `initializes:` statement up front so
// their position relative to `exports:` does not matter.
func (c *checker) collectGrants() *grantSet {
	g := &grantSet{
		uses: make(map[symbols.ModuleID]source.Span),
		init: make(map[symbols.ModuleID]source.Span),
	}
	add := func(ref ast.NameRef, mode GrantMode) {
		to, ok := c.table.Import(c.arena, ref.Name)
		if !ok || c.arena.Get(to).IsInterface() {
			c.report(diag.StructureException, ref.Span, fmt.Sprintf("`%s` is not a module!", ref.Name)).Emit()
			return
		}
		seen := g.uses
		msg := fmt.Sprintf("`%s` is already used!", ref.Name)
		if mode == GrantInitializes {
			seen = g.init
			msg = fmt.Sprintf("`%s` initialized twice!", ref.Name)
		}
		if prev, dup := seen[to]; dup {
			c.report(diag.StructureException, ref.Span, msg).WithPrev(prev).Emit()
			return
		}
		seen[to] = ref.Span
		g.list = append(g.list, AccessGrant{From: c.id, To: to, Mode: mode, Span: ref.Span})
	}
	for _, u := range c.mod.AST.Uses {
		add(u, GrantUses)
	}
	for _, in := range c.mod.AST.Initializes {
		add(in.Module, GrantInitializes)
	}
	return g
}
