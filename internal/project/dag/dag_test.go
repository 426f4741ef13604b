package dag

import (
	"reflect"
	"testing"

	"wlbind/internal/diag"
	"wlbind/internal/project"
	"wlbind/internal/source"
)

func idsToNames(idx DocIndex, ids []DocID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func meta(path string, imports ...string) project.DocumentMeta {
	m := project.DocumentMeta{Path: path, Span: source.Span{File: 1, Start: 0, End: 4}}
	for _, imp := range imports {
		m.Imports = append(m.Imports, project.ImportMeta{Path: imp})
	}
	return m
}

func TestBuildIndexIncludesImports(t *testing.T) {
	idx := BuildIndex([]project.DocumentMeta{
		meta("unstable/a.xml", "wayland.xml", "stable/b.xml"),
		meta("stable/b.xml"),
	})
	want := []string{"stable/b.xml", "unstable/a.xml", "wayland.xml"}
	if !reflect.DeepEqual(idx.IDToName, want) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if id, ok := idx.NameToID[name]; !ok || int(id) != i {
			t.Fatalf("NameToID[%q] = %v", name, id)
		}
	}
}

func TestToposortOrderAndEmit(t *testing.T) {
	metas := []project.DocumentMeta{
		meta("app.xml", "shell.xml", "wayland.xml"),
		meta("shell.xml", "wayland.xml"),
		meta("wayland.xml"),
	}
	idx := BuildIndex(metas)
	nodes := make([]DocNode, 0, len(metas))
	for _, m := range metas {
		nodes = append(nodes, DocNode{Meta: m})
	}
	g, _ := BuildGraph(idx, nodes)
	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("unexpected cycle")
	}
	if got := idsToNames(idx, topo.Order); !reflect.DeepEqual(got, []string{"app.xml", "shell.xml", "wayland.xml"}) {
		t.Fatalf("order = %v", got)
	}
	if got := idsToNames(idx, topo.EmitOrder()); !reflect.DeepEqual(got, []string{"wayland.xml", "shell.xml", "app.xml"}) {
		t.Fatalf("emit order = %v", got)
	}
}

func TestCyclesAreWarnings(t *testing.T) {
	metas := []project.DocumentMeta{
		meta("a.xml", "b.xml"),
		meta("b.xml", "a.xml"),
		meta("c.xml"),
	}
	idx := BuildIndex(metas)
	bags := make([]*diag.Bag, len(metas))
	nodes := make([]DocNode, 0, len(metas))
	for i, m := range metas {
		bags[i] = diag.NewBag(0)
		nodes = append(nodes, DocNode{Meta: m, Reporter: diag.BagReporter{Bag: bags[i]}})
	}
	g, slots := BuildGraph(idx, nodes)
	topo := ToposortKahn(g)
	if !topo.Cyclic {
		t.Fatalf("cycle not detected")
	}
	if got := idsToNames(idx, topo.Cycles); !reflect.DeepEqual(got, []string{"a.xml", "b.xml"}) {
		t.Fatalf("cycles = %v", got)
	}
	ReportCycles(idx, slots, *topo)
	for i, name := range []string{"a.xml", "b.xml"} {
		items := bags[i].Items()
		if len(items) != 1 || items[0].Code != diag.ProjImportCycle || items[0].Severity != diag.SevWarning {
			t.Fatalf("%s diagnostics = %v", name, items)
		}
	}
	if bags[2].Len() != 0 {
		t.Fatalf("c.xml is not on the cycle")
	}
	if got := idsToNames(idx, topo.EmitOrder()); !reflect.DeepEqual(got, []string{"c.xml", "a.xml", "b.xml"}) {
		t.Fatalf("emit order = %v", got)
	}
}

func TestDuplicateDocument(t *testing.T) {
	bag := diag.NewBag(0)
	r := diag.BagReporter{Bag: bag}
	m := meta("a.xml")
	idx := BuildIndex([]project.DocumentMeta{m})
	BuildGraph(idx, []DocNode{{Meta: m, Reporter: r}, {Meta: m, Reporter: r}})
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.ProjDuplicateDocument || len(items[0].Notes) != 1 {
		t.Fatalf("diagnostics = %v", items)
	}
}

func TestComputeHashesFollowDependencies(t *testing.T) {
	build := func(coreContent byte) []DocSlot {
		metas := []project.DocumentMeta{meta("app.xml", "core.xml"), meta("core.xml"), meta("other.xml")}
		metas[0].ContentHash = project.Digest{1}
		metas[1].ContentHash = project.Digest{coreContent}
		metas[2].ContentHash = project.Digest{3}
		idx := BuildIndex(metas)
		nodes := make([]DocNode, 0, len(metas))
		for _, m := range metas {
			nodes = append(nodes, DocNode{Meta: m})
		}
		g, slots := BuildGraph(idx, nodes)
		ComputeHashes(slots, g, ToposortKahn(g))
		return slots
	}
	a, b := build(2), build(9)
	// порядок слотов: app.xml, core.xml, other.xml
	if a[0].Meta.DocHash == b[0].Meta.DocHash {
		t.Fatalf("importer hash must change with its dependency")
	}
	if a[2].Meta.DocHash != b[2].Meta.DocHash {
		t.Fatalf("unrelated document hash changed")
	}
}
