package driver

import (
	"strings"

	"modlink/internal/project"
	"modlink/internal/project/dag"
)

// ComputeModuleHashes fills ModuleHash bottom-up: a module's hash covers its
// own content and the hashes of everything it imports. A cyclic graph is
// left untouched (zero hashes), so nothing from it reaches the disk cache.
func ComputeModuleHashes(g dag.Graph, slots []dag.ModuleSlot, topo *dag.Topo) {
	if topo == nil || topo.Cyclic {
		return
	}
	for i := len(topo.Order) - 1; i >= 0; i-- {
		id := topo.Order[i]
		slot := &slots[int(id)]
		if !slot.Present {
			continue
		}
		deps := make([]project.Digest, 0, len(g.Edges[int(id)]))
		for _, to := range g.Edges[int(id)] {
			if !g.Present[int(to)] {
				continue
			}
			deps = append(deps, slots[int(to)].Meta.ModuleHash)
		}
		slot.Meta.ModuleHash = project.ModuleHash(slot.Meta.ContentHash, layoutDigest(&slot.Meta), deps)
	}
}

// layoutDigest covers the module's own path and where its imports resolved
// to: the same bytes found under another search path give another surface.
func layoutDigest(meta *project.ModuleMeta) project.Digest {
	var sb strings.Builder
	sb.WriteString(meta.Path)
	for _, imp := range meta.Imports {
		sb.WriteByte(0)
		sb.WriteString(imp.As)
		sb.WriteByte('=')
		sb.WriteString(imp.Path)
	}
	return project.Hash([]byte(sb.String()))
}
