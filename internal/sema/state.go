package sema

import (
	"modlink/internal/ast"
	"modlink/internal/symbols"
)

type touchMark uint8

const (
	touchUnknown touchMark = iota
	touchVisiting
	touchNo
	touchYes
)

// StateAnalyzer decides whether a declaration touches its module's storage.
// Results are memoised per DeclRef; an analyzer is not safe for concurrent use.
type StateAnalyzer struct {
	arena  *symbols.Arena
	tables symbols.Tables
	memo   map[symbols.DeclRef]touchMark
	depth  int

	// tentative is set when a negative answer depended on a function still
	// being visited; such answers are not memoised below the root call.
	tentative bool
}

func NewStateAnalyzer(arena *symbols.Arena, tables symbols.Tables) *StateAnalyzer {
	return &StateAnalyzer{arena: arena, tables: tables, memo: make(map[symbols.DeclRef]touchMark)}
}

// TouchesState is a one-shot helper around StateAnalyzer.
func TouchesState(arena *symbols.Arena, tables symbols.Tables, ref symbols.DeclRef) bool {
	return NewStateAnalyzer(arena, tables).Touches(ref)
}

// Touches reports whether ref reads or writes storage.
//
// Variables touch state when they live in storage (constants and immutables
// do not). Functions touch state when they are @nonreentrant, read or write a
// storage variable, call a touching function of self, or reach into an
// imported module's storage, touching functions or __init__. Calls through
// `lib.__at__(addr)` are external calls and never count.
func (s *StateAnalyzer) Touches(ref symbols.DeclRef) bool {
	switch ref.Kind {
	case symbols.DeclVariable:
		v := s.arena.Var(ref)
		return v != nil && v.IsStorage()
	case symbols.DeclFunction:
	default:
		return false
	}
	switch s.memo[ref] {
	case touchYes:
		return true
	case touchNo:
		return false
	case touchVisiting:
		// рекурсия: цикл сам по себе состояние не трогает
		s.tentative = true
		return false
	}
	s.memo[ref] = touchVisiting
	s.depth++
	res := s.function(ref)
	s.depth--
	switch {
	case res:
		s.memo[ref] = touchYes
	case s.tentative && s.depth > 0:
		delete(s.memo, ref)
	default:
		s.memo[ref] = touchNo
	}
	if s.depth == 0 {
		s.tentative = false
	}
	return res
}

func (s *StateAnalyzer) function(ref symbols.DeclRef) bool {
	fn := s.arena.Func(ref)
	if fn == nil {
		return false
	}
	if fn.Nonreentrant {
		return true
	}
	table := s.tables.Table(ref.Module)
	local := func(refs []ast.Ref) bool {
		for _, r := range refs {
			if sym, ok := table.Lookup(r.Name); ok && s.Touches(sym.Ref) {
				return true
			}
		}
		return false
	}
	if local(fn.Body.Reads) || local(fn.Body.Writes) || local(fn.Body.SelfCalls) {
		return true
	}
	for _, mr := range fn.Body.ModuleRefs {
		if _, touches := s.moduleRef(ref.Module, mr); touches {
			return true
		}
	}
	return false
}

// moduleRef resolves `alias.member` written in module from. It returns the
// imported module (NoModuleID when alias is not an import) and whether the
// reference touches that module's state.
func (s *StateAnalyzer) moduleRef(from symbols.ModuleID, mr ast.ModuleRef) (symbols.ModuleID, bool) {
	dep, ok := s.tables.Table(from).Import(s.arena, mr.Alias)
	if !ok || s.arena.Get(dep).IsInterface() {
		return symbols.NoModuleID, false
	}
	switch mr.Member {
	case "__at__", "__interface__":
		return dep, false
	case "__init__":
		return dep, true
	}
	sym, ok := s.tables.Table(dep).Lookup(mr.Member)
	if !ok {
		return dep, false
	}
	return dep, s.Touches(sym.Ref)
}
