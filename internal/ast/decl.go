package ast

import (
	"modlink/internal/abi"
	"modlink/internal/source"
)

// Param is one function parameter.
type Param struct {
	Name       string
	Type       string
	HasDefault bool
	Span       source.Span
}

// Decorator is `@name` or `@name(args)`.
type Decorator struct {
	Name string
	Span source.Span
}

// Ref names a member of self (`self.counter`, `self._helper()`).
type Ref struct {
	Name string
	Span source.Span
}

// ModuleRef is a dotted reference rooted at a non-self name inside a body
// (`lib1.counter += 2`, `lib.__at__(x).foo()`). Whether Alias really is an
// imported module is decided during checking.
type ModuleRef struct {
	Alias  string
	Member string
	Span   source.Span
	Write  bool
	Call   bool
}

// Body is the summary of a function body the pass needs: which storage
// slots it touches and what it calls.
type Body struct {
	Reads      []Ref
	Writes     []Ref
	SelfCalls  []Ref
	ModuleRefs []ModuleRef
}

// FuncDecl is a `def`, either in a contract, an interface file or an
// inline interface block.
type FuncDecl struct {
	Name         string
	NameSpan     source.Span
	Span         source.Span // от `def` до конца тела
	Params       []Param
	Return       string
	Decorators   []Decorator
	Visibility   Visibility
	Mutability   abi.Mutability
	Nonreentrant bool
	Body         Body
}

// Defaults returns the number of parameters with default values.
func (f *FuncDecl) Defaults() int {
	n := 0
	for _, p := range f.Params {
		if p.HasDefault {
			n++
		}
	}
	return n
}

// VarDecl is a module-level variable.
type VarDecl struct {
	Name      string
	NameSpan  source.Span
	Span      source.Span
	Type      string
	Public    bool
	Constant  bool
	Immutable bool
	Transient bool
}

// IsStorage reports whether reading the variable reads contract state.
func (v *VarDecl) IsStorage() bool {
	return !v.Constant && !v.Immutable
}

type InterfaceDecl struct {
	Name    string
	Span    source.Span
	Methods []FuncDecl
}

type Field struct {
	Name string
	Type string
	Span source.Span
}

type StructDecl struct {
	Name   string
	Span   source.Span
	Fields []Field
}
