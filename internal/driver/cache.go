package driver

import (
	"fmt"
	"sync"

	"modlink/internal/sema"
	"modlink/internal/symbols"
)

// TableCache holds the symbol table of every module. Each table is written
// exactly once, before any module that imports it is checked.
type TableCache struct {
	mu     sync.RWMutex
	tables map[symbols.ModuleID]*symbols.Table
}

func NewTableCache(capHint int) *TableCache {
	return &TableCache{tables: make(map[symbols.ModuleID]*symbols.Table, capHint)}
}

// Table implements symbols.Tables.
func (c *TableCache) Table(id symbols.ModuleID) *symbols.Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tables[id]
}

// Put stores the table of t.Module; a second write for the same module panics.
func (c *TableCache) Put(t *symbols.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.tables[t.Module]; dup {
		panic(fmt.Errorf("driver: symbol table of module %d written twice", t.Module))
	}
	c.tables[t.Module] = t
}

// SurfaceCache holds surfaces of checked modules, write-once like TableCache.
type SurfaceCache struct {
	mu       sync.RWMutex
	surfaces map[symbols.ModuleID]*sema.Surface
	ok       map[symbols.ModuleID]bool
}

func NewSurfaceCache(capHint int) *SurfaceCache {
	return &SurfaceCache{
		surfaces: make(map[symbols.ModuleID]*sema.Surface, capHint),
		ok:       make(map[symbols.ModuleID]bool, capHint),
	}
}

// Surface implements sema.Surfaces. Surfaces of failed modules are kept
// for tooling but never returned here.
func (c *SurfaceCache) Surface(id symbols.ModuleID) *sema.Surface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ok[id] {
		return nil
	}
	return c.surfaces[id]
}

// Put records the outcome of checking s.Module.
func (c *SurfaceCache) Put(s *sema.Surface, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.surfaces[s.Module]; dup {
		panic(fmt.Errorf("driver: surface of module %d written twice", s.Module))
	}
	c.surfaces[s.Module] = s
	c.ok[s.Module] = ok
}

// Checked reports whether id was checked and whether it passed.
func (c *SurfaceCache) Checked(id symbols.ModuleID) (checked, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, checked = c.surfaces[id]
	return checked, c.ok[id]
}

// Partial returns whatever surface was recorded for id, failed or not.
func (c *SurfaceCache) Partial(id symbols.ModuleID) *sema.Surface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.surfaces[id]
}
