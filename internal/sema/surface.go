package sema

import (
	"modlink/internal/abi"
	"modlink/internal/source"
	"modlink/internal/symbols"
)

// Origin says whether a surface entry is declared in the module or exported from an import.
type Origin uint8

const (
	OriginLocal Origin = iota
	OriginExported
)

func (o Origin) String() string {
	if o == OriginExported {
		return "exported"
	}
	return "local"
}

// SurfaceEntry is one externally callable member of a module.
type SurfaceEntry struct {
	Name   string
	Sig    abi.Signature
	Impl   symbols.DeclRef
	Origin Origin
	// Via is the export expression as written ("lib1.foo"); empty for locals.
	Via  string
	Span source.Span
	// Selectors lists one method ID per callable arity; empty for __default__.
	Selectors []abi.MethodID
}

// Surface is the final external interface of a checked module, handed to
// code generation together with the module's access grants.
type Surface struct {
	Module  symbols.ModuleID
	Path    string
	Entries []SurfaceEntry
	Grants  []AccessGrant
	// Implements lists the interfaces the module declared and satisfied.
	Implements []InterfaceRef
}

// Declares reports whether the module declared `implements:` for ref.
func (s *Surface) Declares(ref InterfaceRef) bool {
	if s == nil || !ref.IsValid() {
		return false
	}
	for _, r := range s.Implements {
		if r == ref {
			return true
		}
	}
	return false
}

// Lookup returns the first entry with the given external name.
func (s *Surface) Lookup(name string) (*SurfaceEntry, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Entries {
		if s.Entries[i].Name == name {
			return &s.Entries[i], true
		}
	}
	return nil, false
}

// Locals returns the entries declared by the module itself.
func (s *Surface) Locals() []SurfaceEntry {
	if s == nil {
		return nil
	}
	out := make([]SurfaceEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if e.Origin == OriginLocal {
			out = append(out, e)
		}
	}
	return out
}

// Surfaces gives read access to surfaces of already checked modules.
type Surfaces interface {
	Surface(id symbols.ModuleID) *Surface
}
