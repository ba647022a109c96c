package syntax

import (
	"strings"
	"testing"

	"modlink/internal/abi"
	"modlink/internal/ast"
	"modlink/internal/diag"
	"modlink/internal/source"
)

func parse(t *testing.T, name, src string) (*ast.Module, *source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSetWithBase("/work")
	id := fs.AddVirtual(name, []byte(src))
	bag := diag.NewBag(0)
	mod := Parse(fs, id, diag.BagReporter{Bag: bag})
	return mod, fs, bag
}

func mustParse(t *testing.T, name, src string) (*ast.Module, *source.FileSet) {
	t.Helper()
	mod, fs, bag := parse(t, name, src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatShortDiagnostics(bag.Items(), fs, false))
	}
	return mod, fs
}

func TestParseTopLevelStatements(t *testing.T) {
	src := `
import lib1
import pkg.lib2 as other
from ifaces import itoken

uses: lib1
initializes: other[lib1 := lib1]
implements: itoken
exports: (lib1.foo, other.bar)
exports: lib1.__interface__

counter: public(uint256)
LIMIT: constant(uint256) = 10
owner: immutable(address)
balances: HashMap[address, uint256]
`
	mod, _ := mustParse(t, "main.vy", src)
	if mod.Kind != ast.ModuleContract || mod.Name != "main" {
		t.Fatalf("kind/name = %s/%s", mod.Kind, mod.Name)
	}
	if len(mod.Imports) != 3 {
		t.Fatalf("imports = %+v", mod.Imports)
	}
	if got := mod.Imports[1]; got.Path != "pkg.lib2" || got.Alias != "other" {
		t.Fatalf("import[1] = %+v", got)
	}
	if got := mod.Imports[2]; got.Path != "ifaces.itoken" || got.Alias != "itoken" {
		t.Fatalf("import[2] = %+v", got)
	}
	if len(mod.Uses) != 1 || mod.Uses[0].Name != "lib1" {
		t.Fatalf("uses = %+v", mod.Uses)
	}
	if len(mod.Initializes) != 1 || mod.Initializes[0].Module.Name != "other" || len(mod.Initializes[0].Deps) != 1 {
		t.Fatalf("initializes = %+v", mod.Initializes)
	}
	items := mod.ExportItems()
	if len(items) != 3 || ast.Render(items[2]) != "lib1.__interface__" {
		t.Fatalf("exports = %d items", len(items))
	}
	vars := mod.Vars.Slice()
	if len(vars) != 4 {
		t.Fatalf("vars = %+v", vars)
	}
	if !vars[0].Public || vars[0].Type != "uint256" {
		t.Fatalf("counter = %+v", vars[0])
	}
	if !vars[1].Constant || vars[1].IsStorage() {
		t.Fatalf("LIMIT = %+v", vars[1])
	}
	if !vars[2].Immutable {
		t.Fatalf("owner = %+v", vars[2])
	}
	if vars[3].Public || vars[3].Type != "HashMap[address,uint256]" {
		t.Fatalf("balances = %+v", vars[3])
	}
}

func TestExportSpansAreExact(t *testing.T) {
	src := "\nimport lib1\n\nexports: (lib1.foo, lib1.bar, lib1.foo)\n"
	mod, fs := mustParse(t, "main.vy", src)
	items := mod.ExportItems()
	if len(items) != 3 {
		t.Fatalf("items = %d", len(items))
	}
	cols := []uint32{11, 21, 31}
	for i, e := range items {
		start, _ := fs.Resolve(e.Pos())
		if start.Line != 4 || start.Col != cols[i] {
			t.Fatalf("item %d at %d:%d, want 4:%d", i, start.Line, start.Col, cols[i])
		}
		if got := fs.Snippet(e.Pos()); !strings.HasPrefix(got, "lib1.") || len(got) != 8 {
			t.Fatalf("item %d snippet %q", i, got)
		}
	}
}

func TestExportExpressionShapes(t *testing.T) {
	src := "exports: lib.__at__(self).__interface__\nexports: lib1.__interface__(self.a).foo\nexports: Foo\n"
	mod, fs := mustParse(t, "main.vy", src)
	items := mod.ExportItems()
	if len(items) != 3 {
		t.Fatalf("items = %d", len(items))
	}
	a, ok := items[0].(*ast.Attribute)
	if !ok || a.Attr != "__interface__" {
		t.Fatalf("item 0 = %#v", items[0])
	}
	if _, ok := a.Value.(*ast.Call); !ok {
		t.Fatalf("item 0 value = %#v", a.Value)
	}
	if got := fs.Snippet(items[1].Pos()); got != "lib1.__interface__(self.a).foo" {
		t.Fatalf("snippet = %q", got)
	}
	if _, ok := items[2].(*ast.Name); !ok {
		t.Fatalf("item 2 = %#v", items[2])
	}
}

func TestFunctionDecorationsAndBody(t *testing.T) {
	src := `
counter: uint256
balanceOf: HashMap[address, uint256]

@external
@view
@nonreentrant
def get(a: address, b: uint256 = 1) -> uint256:
    return self.balanceOf[a] + self._helper()

@deploy
def __init__(supply: uint256):
    self.counter = supply
    self.balanceOf[msg.sender] -= supply
    lib1.counter += 2
    x: uint256 = staticcall lib.__at__(self).foo()

def _helper() -> uint256:
    return 1
`
	mod, fs := mustParse(t, "lib.vy", src)
	funcs := mod.Funcs.Slice()
	if len(funcs) != 3 {
		t.Fatalf("funcs = %d", len(funcs))
	}
	get := funcs[0]
	if get.Visibility != ast.VisExternal || get.Mutability != abi.View || !get.Nonreentrant {
		t.Fatalf("get = %+v", get)
	}
	if get.Defaults() != 1 || get.Return != "uint256" || len(get.Params) != 2 || get.Params[0].Type != "address" {
		t.Fatalf("get signature = %+v", get)
	}
	if !strings.HasPrefix(fs.Snippet(get.Span), "def get(") {
		t.Fatalf("def span snippet = %q", fs.Snippet(get.Span))
	}
	if len(get.Body.Reads) != 1 || get.Body.Reads[0].Name != "balanceOf" || len(get.Body.SelfCalls) != 1 {
		t.Fatalf("get body = %+v", get.Body)
	}

	init := funcs[1]
	if init.Visibility != ast.VisDeploy || init.Mutability != abi.Nonpayable {
		t.Fatalf("init = %+v", init)
	}
	var writes []string
	for _, w := range init.Body.Writes {
		writes = append(writes, w.Name)
	}
	if strings.Join(writes, ",") != "counter,balanceOf" {
		t.Fatalf("writes = %v", writes)
	}
	// балансы читаются из-за -=
	if len(init.Body.Reads) != 1 || init.Body.Reads[0].Name != "balanceOf" {
		t.Fatalf("reads = %+v", init.Body.Reads)
	}
	var refs []string
	for _, r := range init.Body.ModuleRefs {
		tag := r.Alias + "." + r.Member
		if r.Write {
			tag += "!w"
		}
		if r.Call {
			tag += "!c"
		}
		refs = append(refs, tag)
	}
	if want := "msg.sender,lib1.counter!w,lib.__at__!c"; strings.Join(refs, ",") != want {
		t.Fatalf("module refs = %v, want %s", refs, want)
	}
	if funcs[2].Visibility != ast.VisInternal {
		t.Fatalf("helper visibility = %s", funcs[2].Visibility)
	}
}

func TestInterfaceBlocksAndFiles(t *testing.T) {
	src := `
interface ifoo:
    def do_xyz(): nonpayable
    def get(a: uint256) -> uint256: view

struct Point:
    x: int128
    y: int128

flag Roles:
    ADMIN
    USER
`
	mod, _ := mustParse(t, "lib1.vy", src)
	ifaces := mod.Interfaces.Slice()
	if len(ifaces) != 1 || len(ifaces[0].Methods) != 2 {
		t.Fatalf("interfaces = %+v", ifaces)
	}
	if m := ifaces[0].Methods[1]; m.Mutability != abi.View || m.Return != "uint256" || m.Visibility != ast.VisExternal {
		t.Fatalf("method = %+v", m)
	}
	if s := mod.Structs.Slice(); len(s) != 1 || len(s[0].Fields) != 2 {
		t.Fatalf("structs = %+v", s)
	}
	if len(mod.Flags) != 1 || mod.Flags[0].Name != "Roles" {
		t.Fatalf("flags = %+v", mod.Flags)
	}

	vyi := `
@external
@view
def totalSupply() -> uint256:
    ...

@external
def transfer(receiver: address, amount: uint256):
    ...
`
	imod, _ := mustParse(t, "itoken.vyi", vyi)
	if imod.Kind != ast.ModuleInterface || imod.Funcs.Len() != 2 {
		t.Fatalf("interface module = %+v", imod)
	}
}

func TestSyntaxErrorsAreStructureExceptions(t *testing.T) {
	_, fs, bag := parse(t, "bad.vy", "exports: (lib1.foo,\n\n@external\nx = 1\n")
	if !bag.HasErrors() {
		t.Fatalf("expected diagnostics")
	}
	for _, d := range bag.Items() {
		if d.Kind != diag.StructureException || !strings.HasPrefix(d.Message, "invalid syntax: ") {
			t.Fatalf("unexpected diagnostic %s", diag.FormatShortDiagnostics([]diag.Diagnostic{d}, fs, false))
		}
	}
}

func TestIdentifiersAreNFC(t *testing.T) {
	// e + combining acute
	src := "cafe\u0301: uint256\n"
	mod, _ := mustParse(t, "main.vy", src)
	if got := mod.Vars.Slice()[0].Name; got != "caf\u00e9" {
		t.Fatalf("name = %q", got)
	}
}
