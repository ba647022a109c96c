package project

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestCandidates(t *testing.T) {
	got := Candidates("contracts/main.vy", "tokens.erc20", []string{"lib", "."})
	want := []string{
		"contracts/tokens/erc20.vy",
		"contracts/tokens/erc20.vyi",
		"lib/tokens/erc20.vy",
		"lib/tokens/erc20.vyi",
		"tokens/erc20.vy",
		"tokens/erc20.vyi",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("Candidates:\nwant %v\ngot  %v", want, got)
	}
}

func TestMemoryBundleFind(t *testing.T) {
	b := NewMemoryBundle("/work", map[string]string{
		"main.vy":       "import lib1\n",
		"lib1.vy":       "",
		"ifoo.vyi":      "",
		"lib/shared.vy": "",
	}, "lib")
	cases := []struct {
		from, imp, want string
	}{
		{"main.vy", "lib1", "lib1.vy"},
		{"main.vy", "ifoo", "ifoo.vyi"},
		{"main.vy", "shared", "lib/shared.vy"},
		{"lib/shared.vy", "lib1", "lib1.vy"},
	}
	for _, tc := range cases {
		got, err := b.Find(tc.from, tc.imp)
		if err != nil || got != tc.want {
			t.Fatalf("Find(%q, %q) = %q, %v; want %q", tc.from, tc.imp, got, err, tc.want)
		}
	}
	if _, err := b.Find("main.vy", "nope"); !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
	if got := b.Abs("lib1.vy"); got != "/work/lib1.vy" {
		t.Fatalf("Abs = %q", got)
	}
}

func TestDiskBundle(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "contracts", "main.vy"), "import lib1\n")
	mustWrite(t, filepath.Join(root, "vendor", "lib1.vy"), "x: uint256\n")

	b, err := NewDiskBundle(root, []string{"vendor"})
	if err != nil {
		t.Fatalf("NewDiskBundle: %v", err)
	}
	got, err := b.Find("contracts/main.vy", "lib1")
	if err != nil || got != "vendor/lib1.vy" {
		t.Fatalf("Find = %q, %v", got, err)
	}
	content, err := b.Read(got)
	if err != nil || string(content) != "x: uint256\n" {
		t.Fatalf("Read = %q, %v", content, err)
	}
	if _, err := NewDiskBundle(root, []string{"../outside"}); err == nil {
		t.Fatalf("expected error for search path outside root")
	}
}

func TestLoadManifest(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, ManifestName), `
[project]
name = "token"
main = "contracts/main.vy"
paths = ["contracts", "lib"]

[check]
jobs = 4
disk_cache = true
max_diagnostics = 20
`)
	nested := filepath.Join(root, "contracts", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("FindManifest: ok=%v err=%v", ok, err)
	}
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Project.Name != "token" || m.Check.Jobs != 4 || !m.Check.DiskCache || m.Check.MaxDiagnostics != 20 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	main, err := m.MainPath()
	if err != nil || main != "contracts/main.vy" {
		t.Fatalf("MainPath = %q, %v", main, err)
	}
}

func TestLoadManifestRejectsUnknownKeys(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ManifestName)
	mustWrite(t, path, "[project]\nentry = \"main.vy\"\n")
	if _, err := LoadManifest(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	mustWrite(t, path, "[project]\nname = \"x\"\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if _, err := m.MainPath(); !errors.Is(err, ErrMainMissing) {
		t.Fatalf("expected ErrMainMissing, got %v", err)
	}
}

func TestModuleHelpers(t *testing.T) {
	if ModuleName("lib/math.vy") != "math" || ModuleName("ifoo.vyi") != "ifoo" {
		t.Fatalf("ModuleName mismatch")
	}
	if !IsInterfacePath("a/ifoo.vyi") || IsInterfacePath("a/foo.vy") {
		t.Fatalf("IsInterfacePath mismatch")
	}
}

func TestModuleHash(t *testing.T) {
	content, layout := Hash([]byte("a")), Hash([]byte("main.vy"))
	base := ModuleHash(content, layout, []Digest{Hash([]byte("b"))})
	if base.IsZero() || len(base.Hex()) != 64 {
		t.Fatalf("hash = %s", base.Hex())
	}
	variants := map[string]Digest{
		"dependency": ModuleHash(content, layout, []Digest{Hash([]byte("c"))}),
		"layout":     ModuleHash(content, Hash([]byte("lib/main.vy")), []Digest{Hash([]byte("b"))}),
		"content":    ModuleHash(Hash([]byte("a2")), layout, []Digest{Hash([]byte("b"))}),
		"no deps":    ModuleHash(content, layout, nil),
	}
	for name, d := range variants {
		if d == base {
			t.Fatalf("%s change must change the module hash", name)
		}
	}
	if again := ModuleHash(content, layout, []Digest{Hash([]byte("b"))}); again != base {
		t.Fatalf("module hash is not deterministic")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
