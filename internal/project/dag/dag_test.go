package dag

import (
	"strings"
	"testing"

	"modlink/internal/diag"
	"modlink/internal/project"
	"modlink/internal/source"
)

func idsToNames(idx ModuleIndex, ids []ModuleID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func batchesToNames(idx ModuleIndex, batches [][]ModuleID) [][]string {
	out := make([][]string, len(batches))
	for i, batch := range batches {
		out[i] = idsToNames(idx, batch)
	}
	return out
}

func imports(paths ...string) []project.ImportMeta {
	out := make([]project.ImportMeta, len(paths))
	for i, p := range paths {
		out[i] = project.ImportMeta{Path: p, As: project.ModuleName(p)}
	}
	return out
}

func TestBuildIndexIncludesImports(t *testing.T) {
	metas := []project.ModuleMeta{
		{Path: "main.vy", Imports: imports("lib/math.vy", "lib/util.vy")},
		{Path: "lib/util.vy"},
	}

	idx := BuildIndex(metas)

	wantNames := []string{"lib/math.vy", "lib/util.vy", "main.vy"}
	if len(idx.IDToName) != len(wantNames) {
		t.Fatalf("unexpected module count: %d", len(idx.IDToName))
	}
	for i, want := range wantNames {
		if got := idx.IDToName[i]; got != want {
			t.Fatalf("idx.IDToName[%d] = %q, want %q", i, got, want)
		}
		if id, ok := idx.NameToID[want]; !ok || int(id) != i {
			t.Fatalf("idx.NameToID[%q] = %v, want %d", want, id, i)
		}
	}
}

func TestBuildGraphReportsMissingModules(t *testing.T) {
	appMeta := project.ModuleMeta{
		Path: "app.vy",
		Span: source.Span{File: 1, Start: 0, End: 10},
		Imports: []project.ImportMeta{
			{Path: "core.vy", As: "core", Span: source.Span{File: 1, Start: 1, End: 4}},
			{Path: "util.vy", As: "util", Span: source.Span{File: 1, Start: 5, End: 8}},
		},
	}
	coreMeta := project.ModuleMeta{Path: "core.vy", Span: source.Span{File: 2, Start: 0, End: 8}}

	bag := diag.NewBag(10)
	nodes := []ModuleNode{
		{Meta: appMeta, Reporter: diag.BagReporter{Bag: bag}},
		{Meta: coreMeta, Reporter: diag.BagReporter{Bag: bag}},
	}
	idx := BuildIndex([]project.ModuleMeta{appMeta, coreMeta})
	graph, _ := BuildGraph(idx, nodes)

	appID := idx.NameToID["app.vy"]
	coreID := idx.NameToID["core.vy"]
	utilID := idx.NameToID["util.vy"]

	appDeps := graph.Edges[int(appID)]
	if len(appDeps) != 2 || appDeps[0] != coreID || appDeps[1] != utilID {
		t.Fatalf("app deps = %v, want [%v %v]", appDeps, coreID, utilID)
	}
	if !graph.Present[int(appID)] || !graph.Present[int(coreID)] || graph.Present[int(utilID)] {
		t.Fatalf("unexpected Present flags: %v", graph.Present)
	}
	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1", bag.Len())
	}
	if got := bag.Items()[0].Message; got != "module `util` not found" {
		t.Fatalf("message = %q", got)
	}
}

func TestBuildGraphDuplicateModules(t *testing.T) {
	spanA := source.Span{File: 1, Start: 0, End: 5}
	spanB := source.Span{File: 2, Start: 0, End: 5}
	metaA := project.ModuleMeta{Path: "dup.vy", Span: spanA}
	metaB := project.ModuleMeta{Path: "dup.vy", Span: spanB}

	bagA := diag.NewBag(10)
	bagB := diag.NewBag(10)
	nodes := []ModuleNode{
		{Meta: metaA, Reporter: diag.BagReporter{Bag: bagA}},
		{Meta: metaB, Reporter: diag.BagReporter{Bag: bagB}},
	}

	idx := BuildIndex([]project.ModuleMeta{metaA, metaB})
	graph, slots := BuildGraph(idx, nodes)

	if !graph.Present[idx.NameToID["dup.vy"]] {
		t.Fatalf("expected module to be present")
	}
	if bagA.Len() != 0 {
		t.Fatalf("unexpected diagnostics for first module: %v", bagA.Items())
	}
	if bagB.Len() != 1 || bagB.Items()[0].Prev == nil || *bagB.Items()[0].Prev != spanA {
		t.Fatalf("expected one duplicate diagnostic pointing at the first module, got %v", bagB.Items())
	}
	// первый модуль остаётся в слоте
	slot := slots[int(idx.NameToID["dup.vy"])]
	if !slot.Present || slot.Meta.Span != spanA {
		t.Fatalf("expected slot to hold first module metadata")
	}
}

func TestToposortKahnBatches(t *testing.T) {
	metas := []project.ModuleMeta{
		{Path: "b.vy", Imports: imports("c.vy")},
		{Path: "a.vy"},
		{Path: "c.vy"},
	}
	nodes := []ModuleNode{{Meta: metas[0]}, {Meta: metas[1]}, {Meta: metas[2]}}

	idx := BuildIndex(metas)
	graph, _ := BuildGraph(idx, nodes)

	topo := ToposortKahn(graph)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}
	if got := strings.Join(idsToNames(idx, topo.Order), ","); got != "a.vy,b.vy,c.vy" {
		t.Fatalf("order = %s", got)
	}

	var got []string
	for _, batch := range batchesToNames(idx, topo.BottomUp()) {
		got = append(got, strings.Join(batch, "+"))
	}
	if strings.Join(got, " | ") != "c.vy | a.vy+b.vy" {
		t.Fatalf("bottom-up batches = %v", got)
	}
}

func TestBottomUpPutsSharedDependencyFirst(t *testing.T) {
	metas := []project.ModuleMeta{
		{Path: "main.vy", Imports: imports("lib1.vy", "lib2.vy")},
		{Path: "lib1.vy", Imports: imports("lib2.vy")},
		{Path: "lib2.vy"},
	}
	nodes := []ModuleNode{{Meta: metas[0]}, {Meta: metas[1]}, {Meta: metas[2]}}
	idx := BuildIndex(metas)
	graph, _ := BuildGraph(idx, nodes)

	batches := batchesToNames(idx, ToposortKahn(graph).BottomUp())
	if len(batches) != 3 || batches[0][0] != "lib2.vy" || batches[1][0] != "lib1.vy" || batches[2][0] != "main.vy" {
		t.Fatalf("batches = %v", batches)
	}
}

func TestReportCycles(t *testing.T) {
	spanA := source.Span{File: 1, Start: 0, End: 4}
	spanB := source.Span{File: 2, Start: 0, End: 4}
	metaA := project.ModuleMeta{Path: "a.vy", Span: spanA, Imports: []project.ImportMeta{{Path: "b.vy", As: "b", Span: spanA}}}
	metaB := project.ModuleMeta{Path: "b.vy", Span: spanB, Imports: []project.ImportMeta{{Path: "a.vy", As: "a", Span: spanB}}}

	bagA := diag.NewBag(10)
	bagB := diag.NewBag(10)
	nodes := []ModuleNode{
		{Meta: metaA, Reporter: diag.BagReporter{Bag: bagA}},
		{Meta: metaB, Reporter: diag.BagReporter{Bag: bagB}},
	}

	idx := BuildIndex([]project.ModuleMeta{metaA, metaB})
	graph, slots := BuildGraph(idx, nodes)

	topo := ToposortKahn(graph)
	if !topo.Cyclic || len(topo.Cycles) != 2 {
		t.Fatalf("expected cycle with two modules, got %+v", topo)
	}

	ReportCycles(idx, slots, topo)

	want := "import cycle: a.vy -> b.vy"
	if bagA.Len() != 1 || bagA.Items()[0].Message != want {
		t.Fatalf("module a diagnostics = %v", bagA.Items())
	}
	if bagB.Len() != 1 || bagB.Items()[0].Message != want {
		t.Fatalf("module b diagnostics = %v", bagB.Items())
	}
}
