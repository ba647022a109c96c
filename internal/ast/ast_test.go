package ast

import (
	"testing"

	"modlink/internal/source"
)

func sp(start, end uint32) source.Span { return source.Span{Start: start, End: end} }

func attr(root, member string) *Attribute {
	return &Attribute{Value: &Name{Ident: root}, Attr: member}
}

func TestFlattenExportsPreservesOrder(t *testing.T) {
	m := NewModule("main.vy", "main", 0, ModuleContract)
	m.Exports = []ExportsDecl{
		{Item: attr("lib1", "foo")},
		{Item: &Tuple{Elts: []Expr{
			attr("lib1", "bar"),
			&Tuple{Elts: []Expr{attr("lib1", "baz"), attr("lib2", "qux")}},
		}}},
	}
	var got []string
	for _, e := range m.ExportItems() {
		got = append(got, Render(e))
	}
	want := []string{"lib1.foo", "lib1.bar", "lib1.baz", "lib2.qux"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRenderAndRoot(t *testing.T) {
	e := &Attribute{
		Value: &Call{Func: attr("lib", "__at__"), Args: []Expr{&Name{Ident: "self"}}},
		Attr:  "__interface__",
	}
	if got := Render(e); got != "lib.__at__(self).__interface__" {
		t.Fatalf("Render = %q", got)
	}
	if r := Root(e); r == nil || r.Ident != "lib" {
		t.Fatalf("Root = %+v", r)
	}
	if Root(&Literal{Text: "1"}) != nil {
		t.Fatalf("literal has no root")
	}
}

func TestArenaIndicesAreOneBased(t *testing.T) {
	m := NewModule("lib.vy", "lib", 0, ModuleContract)
	id := FuncID(m.Funcs.Allocate(FuncDecl{Name: "foo", Span: sp(0, 3)}))
	if !id.IsValid() || id != 1 {
		t.Fatalf("first id = %d", id)
	}
	if m.Func(id).Name != "foo" {
		t.Fatalf("lookup failed")
	}
	if m.Func(NoFuncID) != nil || m.Func(7) != nil {
		t.Fatalf("invalid ids must return nil")
	}
}
