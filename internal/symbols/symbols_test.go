package symbols

import (
	"strings"
	"testing"

	"modlink/internal/ast"
	"modlink/internal/diag"
	"modlink/internal/source"
	"modlink/internal/syntax"
)

type tableMap map[ModuleID]*Table

func (m tableMap) Table(id ModuleID) *Table { return m[id] }

type world struct {
	fs     *source.FileSet
	arena  *Arena
	tables tableMap
	bag    *diag.Bag
}

// load parses files (first one is main) and wires imports by file name.
func load(t *testing.T, files ...[2]string) *world {
	t.Helper()
	w := &world{
		fs:     source.NewFileSetWithBase("/work"),
		arena:  NewArena(0),
		tables: tableMap{},
		bag:    diag.NewBag(0),
	}
	rep := diag.BagReporter{Bag: w.bag}
	for _, f := range files {
		id := w.fs.AddVirtual(f[0], []byte(f[1]))
		mod := syntax.Parse(w.fs, id, rep)
		w.arena.Add(Module{Path: f[0], AbsPath: w.fs.Get(id).Abs, AST: mod})
	}
	for i := range w.arena.Data() {
		m := &w.arena.Data()[i]
		for _, imp := range m.AST.Imports {
			dep, ok := w.arena.Lookup(imp.Path + ".vy")
			if !ok {
				dep, _ = w.arena.Lookup(imp.Path + ".vyi")
			}
			m.Deps = append(m.Deps, dep)
		}
	}
	for _, m := range w.arena.Data() {
		w.tables[m.ID] = BuildTable(w.arena, m.ID, rep)
	}
	return w
}

func (w *world) resolveAll(t *testing.T) []Target {
	t.Helper()
	main := w.arena.Get(1)
	var out []Target
	for _, e := range main.AST.ExportItems() {
		out = append(out, Resolve(w.arena, w.tables, main.ID, e))
	}
	return out
}

const lib1 = `
counter: uint256
total: public(uint256)

interface ifoo:
    def foo(): nonpayable

struct S:
    a: uint256

@external
def foo():
    pass

def helper():
    pass
`

func TestResolveKinds(t *testing.T) {
	main := `
import lib1
import itoken

exports: (lib1.foo, lib1.total, lib1.ifoo, lib1.__interface__, lib1.itoken)
`
	libWithImport := "import itoken\n" + lib1
	w := load(t, [2]string{"main.vy", main}, [2]string{"lib1.vy", libWithImport},
		[2]string{"itoken.vyi", "@external\ndef totalSupply() -> uint256:\n    ...\n"})
	if w.bag.HasErrors() {
		t.Fatalf("diagnostics: %s", diag.FormatShortDiagnostics(w.bag.Items(), w.fs, false))
	}
	got := w.resolveAll(t)
	want := []TargetKind{TargetFunction, TargetVariable, TargetInterface, TargetModuleInterface, TargetInterface}
	for i, k := range want {
		if got[i].Kind != k {
			t.Fatalf("item %d kind = %s (%s), want %s", i, got[i].Kind, got[i].Reason, k)
		}
		if got[i].Alias != "lib1" {
			t.Fatalf("item %d alias = %q", i, got[i].Alias)
		}
	}
	if itok, _ := w.arena.Lookup("itoken.vyi"); got[4].InterfaceModule != itok {
		t.Fatalf("interface module = %d, want %d", got[4].InterfaceModule, itok)
	}
}

func TestResolveRejections(t *testing.T) {
	cases := []struct {
		expr   string
		reason string
		hint   bool
	}{
		{"lib1.counter", "not a public variable!", false},
		{"lib1.helper", "can't export non-external functions!", false},
		{"lib1.nope", "`lib1` has no member 'nope'", false},
		{"lib9.foo", "`lib9` is not an imported module", false},
		{"lib1.S", "not a function or interface: `lib1.S`", true},
		{"lib1.__at__", "not a function or interface: `lib1.__at__`", true},
		{"lib1.__at__(self)", "invalid exports", true},
		{"lib1.__at__(self).__interface__", "`lib1.__at__(...)` has no member '__interface__'", false},
		{"lib1.__interface__(self.a).foo", "invalid export of a value", true},
		{"lib1.foo.bar", "invalid export", true},
		{"Foo", "invalid export", true},
		{"self.a", "invalid export", true},
	}
	for _, tc := range cases {
		main := "import lib1\na: address\nexports: " + tc.expr + "\n"
		w := load(t, [2]string{"main.vy", main}, [2]string{"lib1.vy", lib1})
		got := w.resolveAll(t)
		if len(got) != 1 {
			t.Fatalf("%s: %d targets", tc.expr, len(got))
		}
		if got[0].Kind != TargetInvalid || got[0].Reason != tc.reason {
			t.Fatalf("%s: got %s %q, want %q", tc.expr, got[0].Kind, got[0].Reason, tc.reason)
		}
		if (got[0].Hint == ExportHint) != tc.hint {
			t.Fatalf("%s: hint = %q", tc.expr, got[0].Hint)
		}
	}
}

func TestExportFromInterfaceFile(t *testing.T) {
	w := load(t,
		[2]string{"main.vy", "import ifoo\nexports: ifoo.foo\n"},
		[2]string{"ifoo.vyi", "@external\ndef foo():\n    ...\n"})
	got := w.resolveAll(t)
	if got[0].Reason != "cannot export from an interface file" {
		t.Fatalf("reason = %q", got[0].Reason)
	}
}

func TestBuildTableReportsDuplicates(t *testing.T) {
	src := "\n@external\ndef foo():\n    pass\n\nfoo: uint256\n"
	w := load(t, [2]string{"main.vy", src})
	if w.bag.Len() != 1 {
		t.Fatalf("want 1 diagnostic, got %d", w.bag.Len())
	}
	out := diag.FormatShortDiagnostics(w.bag.Items(), w.fs, true)
	want := "NamespaceCollision main.vy:6:1 Member 'foo' already exists in self\nprev main.vy:3:1 def foo():"
	if out != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out, want)
	}
	tab := w.tables[1]
	sym, ok := tab.Lookup("foo")
	if !ok || sym.Ref.Kind != DeclFunction {
		t.Fatalf("first declaration must win: %+v", sym)
	}
	if locals := tab.Locals(); len(locals) != 1 {
		t.Fatalf("locals = %+v", locals)
	}
}

func TestArenaLookupAndDecls(t *testing.T) {
	w := load(t, [2]string{"main.vy", "import lib1\n"}, [2]string{"lib1.vy", lib1})
	id, ok := w.arena.Lookup("lib1.vy")
	if !ok || w.arena.Get(id).Name() != "lib1" {
		t.Fatalf("lookup lib1.vy failed")
	}
	if w.arena.Add(Module{Path: "lib1.vy"}) != id {
		t.Fatalf("re-adding a path must return the existing id")
	}
	if w.arena.Get(NoModuleID) != nil || w.arena.Len() != 2 {
		t.Fatalf("arena len = %d", w.arena.Len())
	}
	sym, _ := w.tables[id].Lookup("foo")
	if fn := w.arena.Func(sym.Ref); fn == nil || fn.Visibility != ast.VisExternal {
		t.Fatalf("func lookup = %+v", fn)
	}
	if name, sp := NameOf(w.arena, sym.Ref); name != "foo" || !strings.HasPrefix(w.fs.Snippet(sp), "def foo") {
		t.Fatalf("NameOf = %q %q", name, w.fs.Snippet(sp))
	}
	if mod, ok := w.tables[1].Import(w.arena, "lib1"); !ok || mod != id {
		t.Fatalf("import alias lookup failed")
	}
}

func TestTableRefsPointAtDeclarations(t *testing.T) {
	w := load(t, [2]string{"main.vy", "import lib1\n"}, [2]string{"lib1.vy", lib1})
	id, _ := w.arena.Lookup("lib1.vy")
	checked := 0
	for _, sym := range w.tables[id].Symbols {
		switch sym.Ref.Kind {
		case DeclFunction, DeclVariable, DeclInterface:
		default:
			continue
		}
		if name, _ := NameOf(w.arena, sym.Ref); name != sym.Name {
			t.Fatalf("ref %+v: want %q, got %q", sym.Ref, sym.Name, name)
		}
		checked++
	}
	if checked != 5 {
		t.Fatalf("checked %d symbols, want 5", checked)
	}
	if alias, _ := NameOf(w.arena, w.tables[1].Symbols[0].Ref); alias != "lib1" {
		t.Fatalf("import ref resolves to %q", alias)
	}
}

func TestDeclIndexOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("negative index must panic")
		}
	}()
	declIndex(-1)
}
