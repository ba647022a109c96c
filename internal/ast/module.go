package ast

import (
	"modlink/internal/source"
)

// ModuleKind distinguishes contract sources (.vy) from interface files (.vyi).
type ModuleKind uint8

const (
	ModuleContract ModuleKind = iota
	ModuleInterface
)

func (k ModuleKind) String() string {
	if k == ModuleInterface {
		return "interface"
	}
	return "contract"
}

// NameRef is a bare identifier with its position.
type NameRef struct {
	Name string
	Span source.Span
}

// Import is `import a.b as c` or `from a import b as c`.
type Import struct {
	Path  string // dotted module path as written: "a.b"
	Alias string
	Span  source.Span
}

// InitializesDecl is `initializes: lib1` or `initializes: lib1[lib2 := lib2]`.
type InitializesDecl struct {
	Module NameRef
	Deps   []NameRef
	Span   source.Span
}

// ImplementsDecl is `implements: X` where X is a Name or an Attribute.
type ImplementsDecl struct {
	Target Expr
	Span   source.Span
}

// ExportsDecl is one `exports:` statement; Items holds a single expression
// or a *Tuple.
type ExportsDecl struct {
	Item Expr
	Span source.Span
}

// Module is one parsed compilation unit.
type Module struct {
	Path string // путь внутри бандла: "lib1.vy"
	Name string // "lib1"
	File source.FileID
	Kind ModuleKind
	Span source.Span

	Imports     []Import
	Uses        []NameRef
	Initializes []InitializesDecl
	Implements  []ImplementsDecl
	Exports     []ExportsDecl

	Funcs      *Arena[FuncDecl]
	Vars       *Arena[VarDecl]
	Interfaces *Arena[InterfaceDecl]
	Structs    *Arena[StructDecl]
	Flags      []NameRef
}

// NewModule allocates an empty module with its declaration arenas.
func NewModule(path, name string, file source.FileID, kind ModuleKind) *Module {
	return &Module{
		Path:       path,
		Name:       name,
		File:       file,
		Kind:       kind,
		Funcs:      NewArena[FuncDecl](8),
		Vars:       NewArena[VarDecl](8),
		Interfaces: NewArena[InterfaceDecl](2),
		Structs:    NewArena[StructDecl](2),
	}
}

func (m *Module) Func(id FuncID) *FuncDecl { return m.Funcs.Get(uint32(id)) }

func (m *Module) Var(id VarID) *VarDecl { return m.Vars.Get(uint32(id)) }

func (m *Module) Interface(id InterfaceID) *InterfaceDecl { return m.Interfaces.Get(uint32(id)) }

func (m *Module) Struct(id StructID) *StructDecl { return m.Structs.Get(uint32(id)) }

// ExportItems returns every exported expression in source order with tuples flattened.
func (m *Module) ExportItems() []Expr {
	out := make([]Expr, 0, len(m.Exports))
	for _, decl := range m.Exports {
		out = FlattenExports(out, decl.Item)
	}
	return out
}
