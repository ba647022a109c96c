package driver

import (
	"testing"

	"modlink/internal/project"
	"modlink/internal/project/dag"
)

func hashProgram(lib string) map[string]project.ModuleMeta {
	metas := []project.ModuleMeta{
		{Path: "main.vy", ContentHash: project.Hash([]byte("main")), Imports: []project.ImportMeta{{Path: "lib.vy", As: "lib"}}},
		{Path: "lib.vy", ContentHash: project.Hash([]byte(lib))},
		{Path: "other.vy", ContentHash: project.Hash([]byte("other"))},
	}
	idx := dag.BuildIndex(metas)
	nodes := make([]dag.ModuleNode, len(metas))
	for i, m := range metas {
		nodes[i] = dag.ModuleNode{Meta: m}
	}
	g, slots := dag.BuildGraph(idx, nodes)
	ComputeModuleHashes(g, slots, dag.ToposortKahn(g))
	out := make(map[string]project.ModuleMeta, len(slots))
	for _, s := range slots {
		out[s.Meta.Path] = s.Meta
	}
	return out
}

func TestModuleHashFollowsDependencies(t *testing.T) {
	a, b := hashProgram("v1"), hashProgram("v2")
	for p, m := range a {
		if m.ModuleHash.IsZero() {
			t.Fatalf("%s: zero module hash", p)
		}
	}
	if a["main.vy"].ModuleHash == b["main.vy"].ModuleHash {
		t.Fatalf("main hash must change with its import")
	}
	if a["other.vy"].ModuleHash != b["other.vy"].ModuleHash {
		t.Fatalf("unrelated module hash changed")
	}
}

func TestCyclicGraphHasNoHashes(t *testing.T) {
	metas := []project.ModuleMeta{
		{Path: "a.vy", Imports: []project.ImportMeta{{Path: "b.vy"}}},
		{Path: "b.vy", Imports: []project.ImportMeta{{Path: "a.vy"}}},
	}
	idx := dag.BuildIndex(metas)
	g, slots := dag.BuildGraph(idx, []dag.ModuleNode{{Meta: metas[0]}, {Meta: metas[1]}})
	ComputeModuleHashes(g, slots, dag.ToposortKahn(g))
	for _, s := range slots {
		if !s.Meta.ModuleHash.IsZero() {
			t.Fatalf("%s: cyclic module must keep a zero hash", s.Meta.Path)
		}
	}
}
