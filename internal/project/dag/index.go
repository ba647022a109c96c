package dag

import (
	"maps"
	"slices"

	"modlink/internal/project"
)

// ModuleID is a dense index into ModuleIndex.IDToName.
type ModuleID uint32

// ModuleIndex maps bundle paths to dense IDs. IDs follow lexical path order.
type ModuleIndex struct {
	NameToID map[string]ModuleID
	IDToName []string
}

// BuildIndex assigns an ID to every module path, including imports whose
// module was never loaded.
func BuildIndex(metas []project.ModuleMeta) ModuleIndex {
	seen := make(map[string]struct{}, len(metas))
	add := func(p string) {
		if p != "" {
			seen[p] = struct{}{}
		}
	}
	for _, meta := range metas {
		add(meta.Path)
		for _, imp := range meta.Imports {
			add(imp.Path)
		}
	}

	idx := ModuleIndex{
		IDToName: slices.Sorted(maps.Keys(seen)),
		NameToID: make(map[string]ModuleID, len(seen)),
	}
	for i, p := range idx.IDToName {
		idx.NameToID[p] = moduleID(i)
	}
	return idx
}
