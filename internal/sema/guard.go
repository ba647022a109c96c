package sema

import (
	"fmt"

	"modlink/internal/diag"
	"modlink/internal/source"
	"modlink/internal/symbols"
)

const nonreentrantNote = "\n  note that use of the `@nonreentrant` decorator is also considered state access"

func accessHint(alias string) string {
	return fmt.Sprintf("add `uses: %s` or `initializes: %s` as a top-level statement to your contract", alias, alias)
}

// guard reports an ImmutableViolation at sp when decl touches state of the
// module imported as alias and the current module holds no grant for it.
func (c *checker) guard(alias string, to symbols.ModuleID, decl symbols.DeclRef, sp source.Span) bool {
	if c.grants.Allows(to) || !c.state.Touches(decl) {
		return true
	}
	c.immutableViolation(alias, sp)
	return false
}

func (c *checker) immutableViolation(alias string, sp source.Span) {
	c.report(diag.ImmutableViolation, sp, fmt.Sprintf("Cannot access `%s` state!", alias)+nonreentrantNote).
		WithHint(accessHint(alias)).
		Emit()
}

// guardBodies applies the grant check to direct references from the module's
// own function bodies (`lib1.counter += 1`, `lib1.bump()`). Every offending
// reference is reported.
func (c *checker) guardBodies() {
	for _, fn := range c.mod.AST.Funcs.Slice() {
		for _, mr := range fn.Body.ModuleRefs {
			dep, touches := c.state.moduleRef(c.id, mr)
			if !dep.IsValid() || !touches || c.grants.Allows(dep) {
				continue
			}
			c.immutableViolation(mr.Alias, mr.Span)
		}
	}
}
