package driver

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"strconv"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"modlink/internal/diag"
	"modlink/internal/observ"
	"modlink/internal/project"
	"modlink/internal/project/dag"
	"modlink/internal/sema"
	"modlink/internal/source"
	"modlink/internal/symbols"
	"modlink/internal/trace"
)

// VirtualRoot anchors in-memory bundles, so "located at" paths are stable.
const VirtualRoot = "/work"

// Options tunes a compilation.
type Options struct {
	// Jobs bounds parallel module checks within a batch; 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the result bag; 0 keeps everything.
	MaxDiagnostics int
	// DiskCache, if set, serves surfaces of unchanged clean modules.
	DiskCache *DiskCache
	Logger    *log.Logger
}

// Result is everything a compilation produced. Surfaces of modules with
// diagnostics are kept (see SurfaceCache.Partial) but never count as checked.
type Result struct {
	Main     string
	FileSet  *source.FileSet
	Bag      *diag.Bag
	Arena    *symbols.Arena
	Tables   *TableCache
	Surfaces *SurfaceCache
	// Order lists module IDs dependencies first.
	Order []symbols.ModuleID
	// Metas holds import metadata and hashes by bundle path.
	Metas map[string]project.ModuleMeta
	// Skipped lists modules left unchecked because a dependency failed.
	Skipped   []string
	CacheHits int
	Timer     *observ.Timer
}

// OK reports whether the whole program compiled without diagnostics.
func (r *Result) OK() bool { return !r.Bag.HasErrors() }

// Surface returns the surface of a successfully checked module.
func (r *Result) Surface(bundlePath string) *sema.Surface {
	id, ok := r.Arena.Lookup(bundlePath)
	if !ok {
		return nil
	}
	return r.Surfaces.Surface(id)
}

// MainSurface is the surface of the entry module, or nil if it failed.
func (r *Result) MainSurface() *sema.Surface { return r.Surface(r.Main) }

// CompileSources compiles an in-memory bundle rooted at VirtualRoot.
func CompileSources(main string, files map[string]string) (*Result, error) {
	return Compile(context.Background(), project.NewMemoryBundle(VirtualRoot, files), main, Options{})
}

type compilation struct {
	ctx    context.Context
	bundle project.Bundle
	opts   Options
	tracer trace.Tracer
	res    *Result
	loader *loader
	hits   atomic.Int64
}

// Compile loads main and every module it reaches, builds the import graph,
// builds all symbol tables in dependency order and then checks modules
// batch by batch. Problems in the sources end up in Result.Bag; the error
// is reserved for I/O, cache and cancellation failures.
func Compile(ctx context.Context, bundle project.Bundle, main string, opts Options) (*Result, error) {
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	main = path.Clean(main)
	res := &Result{
		Main:    main,
		FileSet: source.NewFileSet(),
		Bag:     diag.NewBag(opts.MaxDiagnostics),
		Metas:   make(map[string]project.ModuleMeta),
		Timer:   observ.NewTimer(),
	}
	c := &compilation{ctx: ctx, bundle: bundle, opts: opts, tracer: trace.FromContext(ctx), res: res}
	root := trace.Begin(c.tracer, trace.ScopeDriver, "compile", 0).WithExtra("main", main)

	err := c.run(root.ID())
	res.CacheHits = int(c.hits.Load())
	res.Bag.Sort()
	if err != nil {
		root.End(err.Error())
		return nil, err
	}
	root.WithExtra("diagnostics", strconv.Itoa(res.Bag.Len())).End("")
	return res, nil
}

func (c *compilation) run(parent uint64) error {
	batches, err := c.loadPhase(parent)
	if err != nil {
		return err
	}
	if err := c.symbolsPhase(parent); err != nil {
		return err
	}
	return c.checkPhase(parent, batches)
}

func (c *compilation) debug(msg string, kv ...any) {
	if c.opts.Logger != nil {
		c.opts.Logger.Debug(msg, kv...)
	}
}

// loadPhase parses the reachable modules, reports graph problems and
// registers modules in the arena dependencies first.
func (c *compilation) loadPhase(parent uint64) ([][]symbols.ModuleID, error) {
	idx := c.res.Timer.Begin("load")
	sp := trace.Begin(c.tracer, trace.ScopePass, "load", parent)

	c.loader = &loader{
		bundle: c.bundle,
		fs:     c.res.FileSet,
		sink:   diag.NewSyncReporter(diag.BagReporter{Bag: c.res.Bag}),
		byPath: make(map[string]*loadedModule),
	}
	if err := c.loader.load(c.res.Main); err != nil {
		sp.End(err.Error())
		c.res.Timer.End(idx, "failed")
		return nil, err
	}
	mods := c.loader.order

	metas := make([]project.ModuleMeta, len(mods))
	nodes := make([]dag.ModuleNode, len(mods))
	for i, m := range mods {
		metas[i] = m.meta
		nodes[i] = dag.ModuleNode{Meta: m.meta, Reporter: m.reporter}
	}
	index := dag.BuildIndex(metas)
	graph, slots := dag.BuildGraph(index, nodes)
	topo := dag.ToposortKahn(graph)
	dag.ReportCycles(index, slots, topo)
	ComputeModuleHashes(graph, slots, topo)

	arena := symbols.NewArena(uint32(len(mods)))
	var batches [][]symbols.ModuleID
	for _, batch := range topo.BottomUp() {
		ids := make([]symbols.ModuleID, 0, len(batch))
		for _, did := range batch {
			ids = append(ids, c.register(arena, index.IDToName[did], slots[did].Meta.ModuleHash))
		}
		batches = append(batches, ids)
		c.res.Order = append(c.res.Order, ids...)
	}
	// модули из циклов получают ID, но не проверяются
	for _, m := range mods {
		if _, ok := arena.Lookup(m.meta.Path); !ok {
			c.register(arena, m.meta.Path, project.Digest{})
		}
	}
	for i := range arena.Data() {
		mod := &arena.Data()[i]
		meta := c.loader.byPath[mod.Path].meta
		mod.Deps = make([]symbols.ModuleID, len(meta.Imports))
		for j, imp := range meta.Imports {
			mod.Deps[j], _ = arena.Lookup(imp.Path)
		}
	}
	c.res.Arena = arena

	note := fmt.Sprintf("%d modules", len(mods))
	if topo.Cyclic {
		note += ", import cycle"
	}
	sp.WithExtra("modules", strconv.Itoa(len(mods))).End(note)
	c.res.Timer.End(idx, note)
	return batches, nil
}

func (c *compilation) register(arena *symbols.Arena, bundlePath string, hash project.Digest) symbols.ModuleID {
	m := c.loader.byPath[bundlePath]
	m.meta.ModuleHash = hash
	c.res.Metas[bundlePath] = m.meta
	return arena.Add(symbols.Module{
		Path:    bundlePath,
		AbsPath: c.bundle.Abs(bundlePath),
		AST:     m.ast,
	})
}

// symbolsPhase builds every table once. Tables only read the arena, so
// modules are independent here.
func (c *compilation) symbolsPhase(parent uint64) error {
	idx := c.res.Timer.Begin("symbols")
	sp := trace.Begin(c.tracer, trace.ScopePass, "symbols", parent)
	defer sp.End("")

	data := c.res.Arena.Data()
	c.res.Tables = NewTableCache(len(data))
	g, gctx := errgroup.WithContext(c.ctx)
	g.SetLimit(c.opts.Jobs)
	for i := range data {
		mod := &data[i]
		rep := c.loader.byPath[mod.Path].reporter
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.res.Tables.Put(symbols.BuildTable(c.res.Arena, mod.ID, rep))
			return nil
		})
	}
	err := g.Wait()
	c.res.Timer.End(idx, "")
	return err
}

// checkPhase checks modules batch by batch; every module of a batch only
// depends on earlier batches. A failed module takes its importers down
// silently, independent modules are still checked.
func (c *compilation) checkPhase(parent uint64, batches [][]symbols.ModuleID) error {
	idx := c.res.Timer.Begin("check")
	sp := trace.Begin(c.tracer, trace.ScopePass, "check", parent)
	c.res.Surfaces = NewSurfaceCache(c.res.Arena.Len())

	for _, batch := range batches {
		g, gctx := errgroup.WithContext(c.ctx)
		g.SetLimit(c.opts.Jobs)
		for _, id := range batch {
			mod := c.res.Arena.Get(id)
			lm := c.loader.byPath[mod.Path]
			if lm.broken() || !c.depsOK(mod) {
				c.res.Skipped = append(c.res.Skipped, mod.Path)
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return c.checkModule(id, lm, sp.ID())
			})
		}
		if err := g.Wait(); err != nil {
			sp.End(err.Error())
			c.res.Timer.End(idx, "failed")
			return err
		}
	}

	note := fmt.Sprintf("%d cached", c.hits.Load())
	sp.End(note)
	c.res.Timer.End(idx, note)
	return nil
}

func (c *compilation) depsOK(mod *symbols.Module) bool {
	for _, dep := range mod.Deps {
		if !dep.IsValid() {
			return false
		}
		if _, ok := c.res.Surfaces.Checked(dep); !ok {
			return false
		}
	}
	return true
}

func (c *compilation) checkModule(id symbols.ModuleID, lm *loadedModule, parent uint64) error {
	bundlePath := lm.meta.Path
	sp := trace.Begin(c.tracer, trace.ScopeModule, "module:"+bundlePath, parent)
	key := lm.meta.ModuleHash
	cache := c.opts.DiskCache
	if cache != nil && !key.IsZero() {
		var payload DiskPayload
		hit, err := cache.Get(key, &payload)
		if err != nil {
			c.debug("ignoring cache entry", "module", bundlePath, "err", err)
		}
		if hit && payload.Path == bundlePath {
			if s, ok := payloadToSurface(c.res.Arena, id, lm.file, &payload); ok {
				c.res.Surfaces.Put(s, true)
				c.hits.Add(1)
				c.debug("cache hit", "module", bundlePath)
				sp.End("cached")
				return nil
			}
		}
	}

	s, ok := sema.NewChecker(c.res.Arena, c.res.Tables, c.res.Surfaces, lm.reporter).Check(id)
	c.res.Surfaces.Put(s, ok)
	if !ok {
		sp.End("failed")
		return nil
	}
	if cache != nil && !key.IsZero() {
		if err := cache.Put(key, surfaceToPayload(c.res.Arena, s, key)); err != nil {
			sp.End(err.Error())
			return fmt.Errorf("failed to cache surface of %s: %w", bundlePath, err)
		}
	}
	sp.WithExtra("entries", strconv.Itoa(len(s.Entries))).End("")
	return nil
}
