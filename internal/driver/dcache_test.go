package driver

import (
	"context"
	"os"
	"path/filepath"
	"fmt"
	"strings"
	"testing"

	"modlink/internal/project"
	"modlink/internal/sema"
	"modlink/internal/symbols"
)

var cachedProgram = map[string]string{
	"main.vy": `
import lib1
import itoken

implements: itoken
uses: lib1
exports: lib1.balanceOf

@external
@view
def totalSupply() -> uint256:
    return 0

@external
def transfer(receiver: address, amount: uint256):
    pass
`,
	"lib1.vy": "\nbalanceOf: public(HashMap[address, uint256])\n",
	"itoken.vyi": tokenInterface,
}

func compileCached(t *testing.T, cache *DiskCache, files map[string]string) *Result {
	t.Helper()
	res, err := Compile(context.Background(), project.NewMemoryBundle(VirtualRoot, files), "main.vy", Options{DiskCache: cache})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !res.OK() {
		t.Fatalf("unexpected diagnostics:\n%s", short(res))
	}
	return res
}

func TestDiskCacheReusesSurfaces(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	first := compileCached(t, cache, cachedProgram)
	if first.CacheHits != 0 {
		t.Fatalf("cold cache: want 0 hits, got %d", first.CacheHits)
	}
	second := compileCached(t, cache, cachedProgram)
	if second.CacheHits != 3 {
		t.Fatalf("warm cache: want 3 hits, got %d", second.CacheHits)
	}
	if want, got := dumpSurface(first.MainSurface()), dumpSurface(second.MainSurface()); want != got {
		t.Fatalf("cached surface differs:\nwant %s\ngot  %s", want, got)
	}

	// правка зависимости инвалидирует и её импортёров
	edited := make(map[string]string, len(cachedProgram))
	for k, v := range cachedProgram {
		edited[k] = v
	}
	edited["lib1.vy"] += "\n@external\ndef extra():\n    pass\n"
	third := compileCached(t, cache, edited)
	if third.CacheHits != 1 {
		t.Fatalf("after edit: want only itoken.vyi cached, got %d hits", third.CacheHits)
	}
}

func TestDiskCacheMissAndDrop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cache, err := NewDiskCache(dir)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	key := project.Hash([]byte("x"))
	var out DiskPayload
	if hit, err := cache.Get(key, &out); hit || err != nil {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}
	if err := cache.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion, Path: "x.vy"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if hit, err := cache.Get(key, &out); !hit || err != nil || out.Path != "x.vy" {
		t.Fatalf("get after put: hit=%v err=%v payload=%+v", hit, err, out)
	}
	if err := cache.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion + 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if hit, _ := cache.Get(key, &out); hit {
		t.Fatalf("entry with another schema must miss")
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, err := os.Stat(cache.pathFor(key)); !os.IsNotExist(err) {
		t.Fatalf("entry survived DropAll: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("cache dir must exist after DropAll: %v", err)
	}
}

func TestCorruptCacheEntryIsAMiss(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	first := compileCached(t, cache, cachedProgram)
	key := first.Metas["main.vy"].ModuleHash
	if err := os.WriteFile(cache.pathFor(key), []byte{0xc1}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	second := compileCached(t, cache, cachedProgram)
	if second.CacheHits != 2 || second.MainSurface() == nil {
		t.Fatalf("corrupt entry: hits=%d", second.CacheHits)
	}
}

func TestTableCacheIsWriteOnce(t *testing.T) {
	c := NewTableCache(1)
	c.Put(&symbols.Table{Module: 1})
	defer func() {
		if recover() == nil {
			t.Fatalf("second Put must panic")
		}
	}()
	c.Put(&symbols.Table{Module: 1})
}

func dumpSurface(s *sema.Surface) string {
	var sb strings.Builder
	for _, e := range s.Entries {
		fmt.Fprintf(&sb, "%s %s -> %q %s %s via=%q %v %v;", e.Name, e.Sig, e.Sig.Return, e.Sig.Mutability, e.Origin, e.Via, e.Span, e.Impl)
		for _, m := range e.Selectors {
			sb.WriteString(" " + m.Selector.Hex() + " " + m.Signature)
		}
	}
	for _, g := range s.Grants {
		fmt.Fprintf(&sb, " grant %s %d %v", g.Mode, g.To, g.Span)
	}
	for _, in := range s.Implements {
		fmt.Fprintf(&sb, " implements %d %v", in.File, in.Inline)
	}
	return sb.String()
}
