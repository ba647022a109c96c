package dag

import (
	"fmt"
	"slices"
	"strings"

	"modlink/internal/diag"
	"modlink/internal/project"
)

type Graph struct {
	Edges   [][]ModuleID // Edges[from] = []to, от импортирующего к импортируемому
	Indeg   []int        // входящие степени для Kahn (учитывает только присутствующие модули)
	Present []bool       // признак, что модуль реально загружен (а не только импортируется)
}

type ModuleNode struct {
	Meta     project.ModuleMeta
	Reporter diag.Reporter
}

type ModuleSlot struct {
	Meta     project.ModuleMeta
	Reporter diag.Reporter
	Present  bool
}

func report(r diag.Reporter, d diag.Diagnostic) {
	if r != nil {
		r.Report(d)
	}
}

// BuildGraph wires import edges between loaded modules. Imports of modules
// that were never loaded, duplicate modules and self-imports are reported
// to the importing module's reporter.
func BuildGraph(idx ModuleIndex, nodes []ModuleNode) (Graph, []ModuleSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]ModuleID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]ModuleSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Meta.Path = name
	}

	for _, node := range nodes {
		meta := node.Meta
		if meta.Path == "" {
			continue
		}
		id, ok := idx.NameToID[meta.Path]
		if !ok {
			// не должно происходить, индекс строится на тех же метаданных
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			report(node.Reporter, diag.New(diag.StructureException, meta.Span,
				fmt.Sprintf("duplicate module `%s`", meta.Path)).WithPrev(slot.Meta.Span))
			continue
		}
		slot.Meta = meta
		slot.Reporter = node.Reporter
		slot.Present = true
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Meta.Imports) == 0 {
			continue
		}
		seen := make(map[ModuleID]struct{}, len(slot.Meta.Imports))
		for _, dep := range slot.Meta.Imports {
			if dep.Path == "" {
				continue
			}
			toID, ok := idx.NameToID[dep.Path]
			if !ok {
				continue
			}
			if ModuleID(from) == toID {
				report(slot.Reporter, diag.New(diag.StructureException, dep.Span,
					fmt.Sprintf("import cycle: %s -> %s", slot.Meta.Path, slot.Meta.Path)))
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}

			g.Edges[from] = append(g.Edges[from], toID)
			if g.Present[int(toID)] {
				g.Indeg[int(toID)]++
			} else {
				report(slot.Reporter, diag.New(diag.StructureException, dep.Span,
					fmt.Sprintf("module `%s` not found", dep.As)))
			}
		}
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}

	return g, slots
}

// ReportCycles emits one "import cycle" diagnostic per module left in a cycle,
// anchored at its first import that stays inside the cycle.
func ReportCycles(idx ModuleIndex, slots []ModuleSlot, topo *Topo) {
	if !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	inCycle := make(map[string]struct{}, len(topo.Cycles))
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		name := idx.IDToName[int(id)]
		names = append(names, name)
		inCycle[name] = struct{}{}
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present {
			continue
		}
		sp := slot.Meta.Span
		for _, imp := range slot.Meta.Imports {
			if _, ok := inCycle[imp.Path]; ok {
				sp = imp.Span
				break
			}
		}
		report(slot.Reporter, diag.New(diag.StructureException, sp, "import cycle: "+summary))
	}
}
