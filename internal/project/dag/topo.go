package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo orders modules importer-first; BottomUp gives the dependency-first view.
type Topo struct {
	Order   []ModuleID   // importer-first linear order of acyclic modules
	Batches [][]ModuleID // each batch only depends on later batches
	Cyclic  bool
	Cycles  []ModuleID // модули, которые Kahn так и не смог снять
}

// ToposortKahn peels modules with no remaining importers, one layer at a time.
// Layers are sorted by ID so the result does not depend on map order.
func ToposortKahn(g Graph) *Topo {
	pending := slices.Clone(g.Indeg)
	topo := &Topo{}

	layer := g.roots(pending)
	for len(layer) > 0 {
		topo.Batches = append(topo.Batches, layer)
		topo.Order = append(topo.Order, layer...)
		var next []ModuleID
		for _, id := range layer {
			for _, to := range g.Edges[id] {
				if !g.Present[to] {
					continue
				}
				if pending[to]--; pending[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		layer = next
	}

	for i, left := range pending {
		if g.Present[i] && left > 0 {
			topo.Cycles = append(topo.Cycles, moduleID(i))
		}
	}
	topo.Cyclic = len(topo.Cycles) > 0
	return topo
}

func (g Graph) roots(indeg []int) []ModuleID {
	var out []ModuleID
	for i, n := range indeg {
		if g.Present[i] && n == 0 {
			out = append(out, moduleID(i))
		}
	}
	return out
}

func moduleID(i int) ModuleID {
	id, err := safecast.Conv[ModuleID](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return id
}

// BottomUp returns the batches with dependencies first: every module's
// imports sit in earlier batches.
func (t *Topo) BottomUp() [][]ModuleID {
	out := slices.Clone(t.Batches)
	slices.Reverse(out)
	return out
}
