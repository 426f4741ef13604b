package registry

import (
	"errors"
	"reflect"
	"strconv"
	"testing"

	"wlbind/internal/ir"
)

func mkDoc(path, importPath, proto string, ifaces ...string) *ir.Document {
	p := &ir.Protocol{Name: proto}
	for _, name := range ifaces {
		p.Interfaces = append(p.Interfaces, &ir.Interface{Name: name, Version: 1})
	}
	return &ir.Document{Path: path, ImportPath: importPath, Protocol: p}
}

func TestStripVersion(t *testing.T) {
	tests := map[string]string{
		"xdg_shell_v6":       "xdg_shell",
		"linux_dmabuf_v1":    "linux_dmabuf",
		"viewporter":         "viewporter",
		"v2":                 "v2",
		"foo_v":              "foo_v",
		"foo_v1x":            "foo_v1x",
		"tablet_unstable_v2": "tablet_unstable",
	}
	for in, want := range tests {
		if got := StripVersion(in); got != want {
			t.Errorf("StripVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"xdg-shell":     "xdg_shell",
		"__Foo--Bar__":  "foo_bar",
		"3d_engine":     "_3d_engine",
		"café":          "cafe",
		"a..b":          "a_b",
		"---":           "",
		"Linux_DMABUF1": "linux_dmabuf1",
	}
	for in, want := range tests {
		if got := Sanitize(in); got != want {
			t.Errorf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAliasCandidateOrder(t *testing.T) {
	doc := mkDoc("unstable/linux-dmabuf/linux-dmabuf-unstable-v1.xml",
		"p/unstable/linux-dmabuf/linux-dmabuf-unstable-v1",
		"linux_dmabuf_unstable_v1",
		"zwp_linux_dmabuf_v1", "zwp_linux_buffer_params_v1")
	got := AliasCandidates(doc)
	want := []string{
		"zwp_linux",
		"linux_dmabuf_unstable",
		"linux-dmabuf-unstable-v1",
		"linux_dmabuf_unstable_v1",
		"linux",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("candidates = %q, want %q", got, want)
	}

	single := mkDoc("a.xml", "p/a", "foo", "zwp_foo_v1")
	if got := AliasCandidates(single)[0]; got != "zwp_foo" {
		t.Fatalf("single interface prefix = %q", got)
	}
}

func TestAssignAliasFallsThroughCandidates(t *testing.T) {
	opts := DefaultOptions()
	doc := mkDoc("a.xml", "p/a", "foo_v2", "zfoo_bar", "zfoo_baz")

	bound := map[string]string{}
	if got, _ := AssignAlias(doc, bound, opts); got != "zfoo" {
		t.Fatalf("first choice = %q", got)
	}
	bound["zfoo"] = "p/other"
	if got, _ := AssignAlias(doc, bound, opts); got != "foo" {
		t.Fatalf("second choice = %q", got)
	}
	bound["zfoo"] = "p/a"
	if got, _ := AssignAlias(doc, bound, opts); got != "zfoo" {
		t.Fatalf("alias bound to the same import path must be reused, got %q", got)
	}
}

func TestAssignAliasRejectsRootAlias(t *testing.T) {
	opts := DefaultOptions()
	doc := mkDoc("wl.xml", "p/wl", "wl", "wl_a", "wl_b")
	got, err := AssignAlias(doc, map[string]string{}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if got != "wl_2" {
		t.Fatalf("alias = %q, want wl_2", got)
	}
}

func TestAssignAliasExhausted(t *testing.T) {
	bound := map[string]string{"x": "p/other"}
	for n := 2; n <= maxAliasSuffix; n++ {
		bound["x_"+strconv.Itoa(n)] = "p/other"
	}
	_, err := AssignAlias(mkDoc("x.xml", "p/x", "x", "x"), bound, DefaultOptions())
	if !errors.Is(err, ErrAliasExhausted) {
		t.Fatalf("err = %v, want ErrAliasExhausted", err)
	}
}

func TestBuildCollisionSuffix(t *testing.T) {
	a := mkDoc("a/foo.xml", "p/a/foo", "foo", "foo_bar", "foo_baz")
	b := mkDoc("b/foo.xml", "p/b/foo", "foo", "foo_bar", "foo_baz")
	reg, err := Build([]*ir.Document{a, b}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	ma, _ := reg.Document("a/foo.xml")
	mb, _ := reg.Document("b/foo.xml")
	if ma.Alias != "foo" || mb.Alias != "foo_2" {
		t.Fatalf("aliases = %q, %q", ma.Alias, mb.Alias)
	}
	seen := map[string]string{}
	for _, m := range reg.Documents() {
		if prev, ok := seen[m.Alias]; ok && prev != m.ImportPath {
			t.Fatalf("alias %q maps to %q and %q", m.Alias, prev, m.ImportPath)
		}
		seen[m.Alias] = m.ImportPath
	}
}

func TestBuildOwnersAndRoot(t *testing.T) {
	opts := DefaultOptions()
	core := mkDoc("wayland.xml", "p/wayland", "wayland", "wl_surface", "wl_seat")
	c := mkDoc("z/c.xml", "p/z/c", "foo_c", "zwp_foo_v1")
	d := mkDoc("a/d.xml", "p/a/d", "foo_d_v1", "zwp_foo_v1")
	reg, err := Build([]*ir.Document{core, c, d}, opts)
	if err != nil {
		t.Fatal(err)
	}

	root, _ := reg.Document("wayland.xml")
	if !root.Root || root.Alias != "wl" {
		t.Fatalf("root meta = %+v", root)
	}
	owners := reg.Owners("zwp_foo_v1")
	if len(owners) != 2 {
		t.Fatalf("owners = %+v", owners)
	}
	// порядок по import path, а не по порядку документов
	if owners[0].Document != "a/d.xml" || owners[1].Document != "z/c.xml" {
		t.Fatalf("owner order = %s, %s", owners[0].Document, owners[1].Document)
	}
	if owners[0].Module != "foo_d" || owners[0].ShortName != "foo_v1" {
		t.Fatalf("owner = %+v", owners[0])
	}
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"wl_seat", "wl_surface", "zwp_foo_v1"}) {
		t.Fatalf("names = %v", got)
	}
}

func TestBuildDeterministic(t *testing.T) {
	docs := func() []*ir.Document {
		return []*ir.Document{
			mkDoc("a.xml", "p/a", "shell", "shell_base", "shell_surface"),
			mkDoc("b.xml", "p/b", "shell", "shell_popup"),
			mkDoc("c.xml", "p/c", "shell_v2", "shell_popup"),
		}
	}
	first, err := Build(docs(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		again, err := Build(docs(), DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		for i, m := range first.Documents() {
			if again.Documents()[i].Alias != m.Alias {
				t.Fatalf("alias of %s changed: %q vs %q", m.Document, m.Alias, again.Documents()[i].Alias)
			}
		}
		if !reflect.DeepEqual(first.Owners("shell_popup"), again.Owners("shell_popup")) {
			t.Fatalf("owner order changed")
		}
	}
}

func TestBuildDuplicateDocument(t *testing.T) {
	_, err := Build([]*ir.Document{
		mkDoc("a.xml", "p/a", "a", "a_x"),
		mkDoc("a.xml", "p/a", "a", "a_y"),
	}, DefaultOptions())
	if !errors.Is(err, ErrDuplicateDocument) {
		t.Fatalf("err = %v", err)
	}
}

func TestBuildSecondRootProtocolDocument(t *testing.T) {
	opts := DefaultOptions()
	a := mkDoc("a/wayland.xml", "p/a/wayland", "wayland", "wl_surface")
	b := mkDoc("b/wayland.xml", "p/b/wayland", "wayland", "wl_surface")
	reg, err := Build([]*ir.Document{a, b}, opts)
	if err != nil {
		t.Fatal(err)
	}

	first, _ := reg.Document("a/wayland.xml")
	second, _ := reg.Document("b/wayland.xml")
	if !first.Root || first.Alias != "wl" {
		t.Fatalf("first = %+v", first)
	}
	if second.Root || second.Alias == "wl" || second.Alias == "" {
		t.Fatalf("second = %+v", second)
	}

	// каждый алиас ведёт ровно на один import path
	seen := make(map[string]string)
	for _, meta := range reg.Documents() {
		if prev, ok := seen[meta.Alias]; ok && prev != meta.ImportPath {
			t.Fatalf("alias %q bound to %q and %q", meta.Alias, prev, meta.ImportPath)
		}
		seen[meta.Alias] = meta.ImportPath
		if got, ok := reg.AliasOwner(meta.Alias); !ok || got != meta.ImportPath {
			t.Fatalf("AliasOwner(%q) = %q, %v; want %q", meta.Alias, got, ok, meta.ImportPath)
		}
	}
	if root, ok := reg.RootOwner("wl_surface"); !ok || root.Document != "a/wayland.xml" {
		t.Fatalf("RootOwner = %+v, %v", root, ok)
	}
}
