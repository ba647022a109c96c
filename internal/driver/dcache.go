package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"modlink/internal/abi"
	"modlink/internal/project"
	"modlink/internal/sema"
	"modlink/internal/source"
	"modlink/internal/symbols"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит поверхности чистых модулей на диске по ModuleHash.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is the cached surface of one clean module. Module IDs and
// file IDs differ between runs, so references are stored by bundle path;
// every span lies in the module's own file and is kept as a byte range.
type DiskPayload struct {
	Schema     uint16
	Path       string
	ModuleHash project.Digest

	Entries    []cachedEntry
	Grants     []cachedGrant
	Implements []cachedIface
}

type cachedRef struct {
	Module string
	Kind   uint8
	Index  uint32
}

type cachedEntry struct {
	Name       string
	Params     []string
	Return     string
	Mutability uint8
	Defaults   int
	Impl       cachedRef
	Origin     uint8
	Via        string
	Start, End uint32
	Selectors  []abi.MethodID
}

type cachedGrant struct {
	To         string
	Mode       uint8
	Start, End uint32
}

type cachedIface struct {
	File   string
	Inline cachedRef
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache uses dir as the cache root.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "surfaces", key.Hex()+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после Rename временного файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload; a missing entry or an old schema is a miss.
func (c *DiskCache) Get(key project.Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, fmt.Errorf("corrupt cache entry %x: %w", key[:4], err)
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// surfaceToPayload flattens a clean surface into arena-independent form.
func surfaceToPayload(arena *symbols.Arena, s *sema.Surface, hash project.Digest) *DiskPayload {
	ref := func(r symbols.DeclRef) cachedRef {
		if !r.IsValid() {
			return cachedRef{}
		}
		return cachedRef{Module: arena.Get(r.Module).Path, Kind: uint8(r.Kind), Index: r.Index}
	}
	p := &DiskPayload{Schema: diskCacheSchemaVersion, Path: s.Path, ModuleHash: hash}
	for _, e := range s.Entries {
		p.Entries = append(p.Entries, cachedEntry{
			Name:       e.Name,
			Params:     e.Sig.Params,
			Return:     e.Sig.Return,
			Mutability: uint8(e.Sig.Mutability),
			Defaults:   e.Sig.Defaults,
			Impl:       ref(e.Impl),
			Origin:     uint8(e.Origin),
			Via:        e.Via,
			Start:      e.Span.Start,
			End:        e.Span.End,
			Selectors:  e.Selectors,
		})
	}
	for _, g := range s.Grants {
		p.Grants = append(p.Grants, cachedGrant{To: arena.Get(g.To).Path, Mode: uint8(g.Mode), Start: g.Span.Start, End: g.Span.End})
	}
	for _, in := range s.Implements {
		ci := cachedIface{Inline: ref(in.Inline)}
		if in.File.IsValid() {
			ci.File = arena.Get(in.File).Path
		}
		p.Implements = append(p.Implements, ci)
	}
	return p
}

// payloadToSurface rebuilds the surface of module id. It fails if a
// referenced module is not part of this compilation.
func payloadToSurface(arena *symbols.Arena, id symbols.ModuleID, file source.FileID, p *DiskPayload) (*sema.Surface, bool) {
	lookup := func(path string) (symbols.ModuleID, bool) {
		if path == "" {
			return symbols.NoModuleID, true
		}
		return arena.Lookup(path)
	}
	ref := func(r cachedRef) (symbols.DeclRef, bool) {
		if r.Module == "" {
			return symbols.DeclRef{}, true
		}
		mod, ok := arena.Lookup(r.Module)
		return symbols.DeclRef{Module: mod, Kind: symbols.DeclKind(r.Kind), Index: r.Index}, ok
	}
	span := func(start, end uint32) source.Span { return source.Span{File: file, Start: start, End: end} }

	s := &sema.Surface{Module: id, Path: p.Path}
	for _, e := range p.Entries {
		impl, ok := ref(e.Impl)
		if !ok {
			return nil, false
		}
		s.Entries = append(s.Entries, sema.SurfaceEntry{
			Name: e.Name,
			Sig: abi.Signature{
				Name:       e.Name,
				Params:     e.Params,
				Return:     e.Return,
				Mutability: abi.Mutability(e.Mutability),
				Defaults:   e.Defaults,
			},
			Impl:      impl,
			Origin:    sema.Origin(e.Origin),
			Via:       e.Via,
			Span:      span(e.Start, e.End),
			Selectors: e.Selectors,
		})
	}
	for _, g := range p.Grants {
		to, ok := lookup(g.To)
		if !ok {
			return nil, false
		}
		s.Grants = append(s.Grants, sema.AccessGrant{From: id, To: to, Mode: sema.GrantMode(g.Mode), Span: span(g.Start, g.End)})
	}
	for _, in := range p.Implements {
		fileID, ok := lookup(in.File)
		if !ok {
			return nil, false
		}
		inline, ok := ref(in.Inline)
		if !ok {
			return nil, false
		}
		s.Implements = append(s.Implements, sema.InterfaceRef{File: fileID, Inline: inline})
	}
	return s, true
}
