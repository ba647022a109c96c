package symbols

import (
	"fmt"

	"modlink/internal/source"
)

// DeclKind classifies what a top-level name denotes.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclImport
	DeclFunction
	DeclVariable
	DeclInterface
	DeclStruct
	DeclFlag
)

func (k DeclKind) String() string {
	switch k {
	case DeclImport:
		return "import"
	case DeclFunction:
		return "function"
	case DeclVariable:
		return "variable"
	case DeclInterface:
		return "interface"
	case DeclStruct:
		return "struct"
	case DeclFlag:
		return "flag"
	default:
		return "invalid"
	}
}

// DeclRef addresses a declaration by module and arena index; for imports
// Index is the position in ast.Module.Imports (0-based), for everything else
// it is the 1-based ast arena ID.
type DeclRef struct {
	Module ModuleID
	Kind   DeclKind
	Index  uint32
}

func (r DeclRef) IsValid() bool {
	return r.Module.IsValid() && r.Kind != DeclInvalid
}

func (r DeclRef) String() string {
	return fmt.Sprintf("%s#%d@%d", r.Kind, r.Index, r.Module)
}

// Symbol is one entry of a module's top-level namespace.
type Symbol struct {
	Name     string
	Ref      DeclRef
	Span     source.Span // вся декларация: для функции от `def` до конца тела
	NameSpan source.Span
}
