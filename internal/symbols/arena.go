package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"modlink/internal/ast"
)

// Module is one compilation unit registered in the Arena.
type Module struct {
	ID      ModuleID
	Path    string // путь внутри бандла: "lib1.vy"
	AbsPath string
	AST     *ast.Module
	// Deps[i] is the module imported by AST.Imports[i]; NoModuleID if unresolved.
	Deps []ModuleID
}

// Name returns the module's short name ("lib1").
func (m *Module) Name() string {
	if m == nil || m.AST == nil {
		return ""
	}
	return m.AST.Name
}

// IsInterface reports whether the module is an interface file.
func (m *Module) IsInterface() bool {
	return m != nil && m.AST != nil && m.AST.Kind == ast.ModuleInterface
}

// Arena owns every module of a compilation. Modules reference each other
// by ModuleID only.
type Arena struct {
	data   []Module
	byPath map[string]ModuleID
}

// NewArena creates an arena with optional capacity hint.
func NewArena(capacity uint32) *Arena {
	if capacity == 0 {
		capacity = 16
	}
	return &Arena{
		data:   make([]Module, 1, capacity+1), // index 0 reserved for NoModuleID
		byPath: make(map[string]ModuleID, capacity),
	}
}

// Add registers a module and returns its ID. Adding a path twice returns
// the existing ID.
func (a *Arena) Add(m Module) ModuleID {
	if id, ok := a.byPath[m.Path]; ok {
		return id
	}
	value, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("module arena overflow: %w", err))
	}
	id := ModuleID(value)
	m.ID = id
	a.data = append(a.data, m)
	a.byPath[m.Path] = id
	return id
}

// Get returns the module pointer or nil if ID is invalid.
func (a *Arena) Get(id ModuleID) *Module {
	if !id.IsValid() || int(id) >= len(a.data) {
		return nil
	}
	return &a.data[id]
}

// Lookup finds a module by bundle path.
func (a *Arena) Lookup(path string) (ModuleID, bool) {
	id, ok := a.byPath[path]
	return id, ok
}

// Len reports number of modules excluding the sentinel.
func (a *Arena) Len() int { return len(a.data) - 1 }

// Data exposes the arena storage without the sentinel.
func (a *Arena) Data() []Module {
	if len(a.data) <= 1 {
		return nil
	}
	return a.data[1:]
}

// Func returns the function a DeclRef points at, or nil.
func (a *Arena) Func(ref DeclRef) *ast.FuncDecl {
	m := a.Get(ref.Module)
	if m == nil || ref.Kind != DeclFunction {
		return nil
	}
	return m.AST.Func(ast.FuncID(ref.Index))
}

// Var returns the variable a DeclRef points at, or nil.
func (a *Arena) Var(ref DeclRef) *ast.VarDecl {
	m := a.Get(ref.Module)
	if m == nil || ref.Kind != DeclVariable {
		return nil
	}
	return m.AST.Var(ast.VarID(ref.Index))
}

// Interface returns the inline interface a DeclRef points at, or nil.
func (a *Arena) Interface(ref DeclRef) *ast.InterfaceDecl {
	m := a.Get(ref.Module)
	if m == nil || ref.Kind != DeclInterface {
		return nil
	}
	return m.AST.Interface(ast.InterfaceID(ref.Index))
}

// Struct returns the struct a DeclRef points at, or nil.
func (a *Arena) Struct(ref DeclRef) *ast.StructDecl {
	m := a.Get(ref.Module)
	if m == nil || ref.Kind != DeclStruct {
		return nil
	}
	return m.AST.Struct(ast.StructID(ref.Index))
}

// ImportTarget returns the module an import DeclRef resolves to.
func (a *Arena) ImportTarget(ref DeclRef) ModuleID {
	m := a.Get(ref.Module)
	if m == nil || ref.Kind != DeclImport || int(ref.Index) >= len(m.Deps) {
		return NoModuleID
	}
	return m.Deps[ref.Index]
}
