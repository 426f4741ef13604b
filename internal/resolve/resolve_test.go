package resolve

import (
	"reflect"
	"testing"

	"wlbind/internal/diag"
	"wlbind/internal/ir"
	"wlbind/internal/registry"
)

func coreOptions() registry.Options {
	return registry.Options{RootPrefix: "core_", RootAlias: "core", RootProtocol: "core"}
}

func iface(name string, msgs ...*ir.Message) *ir.Interface {
	i := &ir.Interface{Name: name, Version: 1}
	for _, m := range msgs {
		if m.Kind == ir.Event {
			i.Events = append(i.Events, m)
		} else {
			i.Requests = append(i.Requests, m)
		}
	}
	return i
}

func request(name string, args ...*ir.Argument) *ir.Message {
	m := &ir.Message{Name: name, Kind: ir.Request, Args: args}
	ir.Normalize(m)
	return m
}

func object(name, ifaceName string) *ir.Argument {
	return &ir.Argument{Name: name, Kind: ir.ArgObject, Interface: ifaceName}
}

func newID(name, ifaceName string) *ir.Argument {
	return &ir.Argument{Name: name, Kind: ir.ArgNewID, Interface: ifaceName}
}

func document(path, proto string, imports []string, ifaces ...*ir.Interface) *ir.Document {
	doc := &ir.Document{
		Path:       path,
		ImportPath: "p/" + path,
		Protocol:   &ir.Protocol{Name: proto, Interfaces: ifaces},
	}
	for _, imp := range imports {
		doc.Imports = append(doc.Imports, ir.Import{Name: imp})
	}
	return doc
}

func build(t *testing.T, opts registry.Options, docs ...*ir.Document) *registry.Registry {
	t.Helper()
	reg, err := registry.Build(docs, opts)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func run(t *testing.T, reg *registry.Registry, doc *ir.Document) (*Result, bool, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(0)
	res, ok := Document(reg, doc, diag.BagReporter{Bag: bag})
	return res, ok, bag
}

func TestRootAndLocalScenario(t *testing.T) {
	a := document("a", "core", nil, iface("core_surface"))
	surfaceArg := object("surface", "core_surface")
	ret := newID("id", "shell_surface")
	b := document("b", "shell", nil,
		iface("shell_base", request("get_shell_surface", ret, surfaceArg)),
		iface("shell_surface"),
	)
	reg := build(t, coreOptions(), a, b)

	res, ok, bag := run(t, reg, b)
	if !ok || bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if got := *surfaceArg.ResolvedInterface; got != (ir.Ref{Qualifier: "core", Name: "surface", Target: "core_surface"}) {
		t.Fatalf("core_surface resolved to %+v", got)
	}
	if got := *ret.ResolvedInterface; got != (ir.Ref{Name: "surface", Target: "shell_surface"}) {
		t.Fatalf("shell_surface resolved to %+v", got)
	}
	if len(res.Imports) != 0 {
		t.Fatalf("no import edges expected, got %+v", res.Imports)
	}
}

func fooCorpus(importD bool) (c, d, e *ir.Document, arg *ir.Argument) {
	c = document("c", "foo_c", nil, iface("zwp_foo_v1"))
	d = document("d", "foo_d", nil, iface("zwp_foo_v1"))
	var imports []string
	if importD {
		imports = []string{"foo_d"}
	}
	arg = object("foo", "zwp_foo_v1")
	e = document("e", "user", imports, iface("user_thing", request("attach", arg)))
	return c, d, e, arg
}

func TestImportFilterResolvesAmbiguity(t *testing.T) {
	c, d, e, arg := fooCorpus(true)
	reg := build(t, registry.DefaultOptions(), c, d, e)
	res, ok, bag := run(t, reg, e)
	if !ok {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	dm, _ := reg.Document("d")
	if arg.ResolvedInterface.Qualifier != dm.Alias || arg.ResolvedInterface.Name != "foo_v1" {
		t.Fatalf("resolved to %+v, want alias %q", arg.ResolvedInterface, dm.Alias)
	}
	want := []ImportEdge{{Alias: dm.Alias, Document: "d", ImportPath: "p/d", RelPath: "./d"}}
	if !reflect.DeepEqual(res.Imports, want) {
		t.Fatalf("imports = %+v, want %+v", res.Imports, want)
	}
}

func TestAmbiguousWithoutImport(t *testing.T) {
	c, d, e, arg := fooCorpus(false)
	reg := build(t, registry.DefaultOptions(), c, d, e)
	_, ok, bag := run(t, reg, e)
	if ok {
		t.Fatalf("expected failure")
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.ResAmbiguousInterface {
		t.Fatalf("diagnostics = %v", items)
	}
	got := items[0].Candidates
	if len(got) != 2 || got[0].Source != "c" || got[1].Source != "d" {
		t.Fatalf("candidates = %+v", got)
	}
	if items[0].Where != (diag.Coords{Protocol: "user", Interface: "user_thing", Message: "attach", Argument: "foo"}) {
		t.Fatalf("where = %+v", items[0].Where)
	}
	if arg.ResolvedInterface != nil {
		t.Fatalf("failed reference must stay unresolved")
	}
}

func TestUniqueOwnerNeedsNoImport(t *testing.T) {
	c := document("c", "bar", nil, iface("zwp_bar_v1"))
	arg := object("bar", "zwp_bar_v1")
	f := document("x/f", "user", nil, iface("user_thing", request("attach", arg)))
	reg := build(t, registry.DefaultOptions(), c, f)
	res, ok, bag := run(t, reg, f)
	if !ok {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if arg.ResolvedInterface.Qualifier != "zwp_bar" {
		t.Fatalf("qualifier = %q", arg.ResolvedInterface.Qualifier)
	}
	if len(res.Imports) != 1 || res.Imports[0].RelPath != "../c" {
		t.Fatalf("imports = %+v", res.Imports)
	}
}

func TestLocalReferenceNeverLooksUpRegistry(t *testing.T) {
	// тот же интерфейс объявлен в другом документе, но локальный выигрывает
	other := document("o", "other", nil, iface("t_target"))
	arg := object("t", "t_target")
	doc := document("t", "t", nil, iface("t_target"), iface("t_user", request("use", arg)))
	reg := build(t, registry.DefaultOptions(), other, doc)
	res, ok, _ := run(t, reg, doc)
	if !ok || !arg.ResolvedInterface.IsLocal() || len(res.Imports) != 0 {
		t.Fatalf("ok=%v ref=%+v imports=%+v", ok, arg.ResolvedInterface, res.Imports)
	}
}

func TestUnresolvedInterface(t *testing.T) {
	arg := object("x", "zz_missing")
	doc := document("t", "t", nil, iface("t_a", request("use", arg)))
	reg := build(t, registry.DefaultOptions(), doc)
	_, ok, bag := run(t, reg, doc)
	if ok || bag.Len() != 1 || bag.Items()[0].Code != diag.ResUnresolvedInterface {
		t.Fatalf("ok=%v diagnostics=%v", ok, bag.Items())
	}
}

func TestEnumerationResolution(t *testing.T) {
	flags := &ir.Enum{Name: "flags", Bitfield: true, Entries: []ir.Entry{{Name: "a", Value: 1}}}
	mode := &ir.Enum{Name: "mode", Entries: []ir.Entry{{Name: "a"}}}
	owner := iface("zwp_foo_v1")
	owner.Enums = []*ir.Enum{flags, mode}
	c := document("c", "foo", nil, owner)

	local := iface("t_a")
	local.Enums = []*ir.Enum{{Name: "kind", Entries: []ir.Entry{{Name: "x"}}}}
	doc := document("t", "t", []string{"foo"}, local)
	reg := build(t, registry.DefaultOptions(), c, doc)

	tests := []struct {
		ref       string
		want      ir.EnumRef
		withOwner bool
	}{
		{ref: "kind", want: ir.EnumRef{Ref: ir.Ref{Name: "a_kind", Target: "t_a"}, Found: true}},
		{ref: "missing", want: ir.EnumRef{Ref: ir.Ref{Name: "a_missing", Target: "t_a"}}},
		{ref: "t_a.kind", want: ir.EnumRef{Ref: ir.Ref{Name: "a_kind", Target: "t_a"}, Found: true}},
		{ref: "zwp_foo_v1.flags", want: ir.EnumRef{Ref: ir.Ref{Qualifier: "zwp_foo", Name: "foo_v1_flags", Target: "zwp_foo_v1"}, Bitfield: true, Found: true}, withOwner: true},
		{ref: "zwp_foo_v1.nope", want: ir.EnumRef{Ref: ir.Ref{Qualifier: "zwp_foo", Name: "foo_v1_nope", Target: "zwp_foo_v1"}}, withOwner: true},
		{ref: "wl_output.transform", want: ir.EnumRef{Ref: ir.Ref{Qualifier: "wl", Name: "output_transform", Target: "wl_output"}}},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ResolveEnumeration(doc, reg, tt.ref, local)
			if err != nil {
				t.Fatal(err)
			}
			if got.Ref != tt.want {
				t.Fatalf("ref = %+v, want %+v", got.Ref, tt.want)
			}
			if (got.Owner != nil) != tt.withOwner {
				t.Fatalf("owner = %+v", got.Owner)
			}
		})
	}

	if _, err := ResolveEnumeration(doc, reg, "zz_nobody.kind", local); err == nil {
		t.Fatalf("unknown owner must fail")
	} else if rerr, ok := err.(*Error); !ok || rerr.Code != diag.ResUnresolvedEnumOwner {
		t.Fatalf("err = %v", err)
	}
}

func TestBitfieldMismatch(t *testing.T) {
	mk := func(kind ir.ArgKind) (*ir.Document, *ir.Argument) {
		arg := &ir.Argument{Name: "v", Kind: kind, Enum: "flags"}
		a := iface("t_a", &ir.Message{Name: "set", Kind: ir.Event, Args: []*ir.Argument{arg}, ReturnIndex: -1})
		a.Enums = []*ir.Enum{{Name: "flags", Bitfield: true, Entries: []ir.Entry{{Name: "x", Value: 1}}}}
		return document("t", "t", nil, a), arg
	}

	doc, arg := mk(ir.ArgInt)
	_, ok, bag := run(t, build(t, registry.DefaultOptions(), doc), doc)
	if ok || bag.Len() != 1 || bag.Items()[0].Code != diag.ResEnumTypeMismatch {
		t.Fatalf("ok=%v diagnostics=%v", ok, bag.Items())
	}
	if arg.ResolvedEnum == nil || !arg.ResolvedEnum.Found {
		t.Fatalf("enumeration itself must still resolve")
	}

	doc, _ = mk(ir.ArgUint)
	if _, ok, bag := run(t, build(t, registry.DefaultOptions(), doc), doc); !ok {
		t.Fatalf("uint bitfield rejected: %v", bag.Items())
	}
}

func TestMissingEnumDegrades(t *testing.T) {
	arg := &ir.Argument{Name: "v", Kind: ir.ArgUint, Enum: "ghost"}
	doc := document("t", "t", nil, iface("t_a", request("set", arg)))
	_, ok, bag := run(t, build(t, registry.DefaultOptions(), doc), doc)
	if !ok {
		t.Fatalf("missing enum must not fail: %v", bag.Items())
	}
	if bag.Len() != 1 || bag.Items()[0].Severity != diag.SevWarning {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	if arg.ResolvedEnum.Found || arg.ResolvedEnum.Name != "a_ghost" {
		t.Fatalf("ref = %+v", arg.ResolvedEnum)
	}
}

func TestDeterministicDiagnostics(t *testing.T) {
	var runs [][]diag.Diagnostic
	for range 3 {
		c, d, e, _ := fooCorpus(false)
		reg := build(t, registry.DefaultOptions(), c, d, e)
		_, _, bag := run(t, reg, e)
		runs = append(runs, bag.Items())
	}
	for i := 1; i < len(runs); i++ {
		if !reflect.DeepEqual(runs[0], runs[i]) {
			t.Fatalf("run %d differs:\n%v\n%v", i, runs[0], runs[i])
		}
	}
}

func TestRelSlash(t *testing.T) {
	tests := []struct{ base, target, want string }{
		{"p", "p/d", "./d"},
		{"p/unstable/a", "p/stable/b/b", "../../stable/b/b"},
		{"", "p/x", "./p/x"},
		{"p/x", "p/x", "."},
	}
	for _, tt := range tests {
		if got := relSlash(tt.base, tt.target); got != tt.want {
			t.Errorf("relSlash(%q, %q) = %q, want %q", tt.base, tt.target, got, tt.want)
		}
	}
}

func TestAmbiguousEnumOwnerWithoutImport(t *testing.T) {
	withMode := func(path, proto string) *ir.Document {
		owner := iface("zwp_foo_v1")
		owner.Enums = []*ir.Enum{{Name: "mode", Entries: []ir.Entry{{Name: "a"}}}}
		return document(path, proto, nil, owner)
	}
	c := withMode("c", "foo_c")
	d := withMode("d", "foo_d")
	arg := &ir.Argument{Name: "mode", Kind: ir.ArgUint, Enum: "zwp_foo_v1.mode"}
	e := document("e", "user", nil, iface("user_thing", request("set_mode", arg)))
	reg := build(t, registry.DefaultOptions(), c, d, e)

	_, ok, bag := run(t, reg, e)
	if ok {
		t.Fatalf("expected failure")
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.ResAmbiguousEnumOwner {
		t.Fatalf("diagnostics = %v", items)
	}
	got := items[0].Candidates
	if len(got) != 2 || got[0].Source != "c" || got[1].Source != "d" {
		t.Fatalf("candidates = %+v", got)
	}
	if arg.ResolvedEnum != nil {
		t.Fatalf("failed reference must stay unresolved")
	}
}

func TestImportAliasCollision(t *testing.T) {
	doc := document("e", "user", nil, iface("user_thing"))
	reg := build(t, registry.DefaultOptions(), doc)
	bag := diag.NewBag(0)
	p := &pass{reg: reg, doc: doc, rep: diag.BagReporter{Bag: bag}, edges: make(map[string]registry.Owner)}

	where := diag.Coords{Protocol: "user", Interface: "user_thing"}
	first := registry.Owner{Document: "a/foo.xml", Protocol: "foo", Module: "foo", Alias: "foo", ImportPath: "p/a/foo"}
	second := registry.Owner{Document: "b/foo.xml", Protocol: "foo", Module: "foo", Alias: "foo", ImportPath: "p/b/foo"}
	p.edge(where, doc.Protocol.Span, first)
	p.edge(where, doc.Protocol.Span, first)
	if bag.Len() != 0 || p.failed {
		t.Fatalf("repeated import of the same path must be silent: %v", bag.Items())
	}

	p.edge(where, doc.Protocol.Span, second)
	if !p.failed {
		t.Fatalf("collision not recorded as failure")
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.ResImportAliasCollision {
		t.Fatalf("diagnostics = %v", items)
	}
	cands := items[0].Candidates
	if len(cands) != 2 || cands[0].ImportPath != "p/a/foo" || cands[1].ImportPath != "p/b/foo" {
		t.Fatalf("candidates = %+v", cands)
	}
	if got := p.edges["foo"].ImportPath; got != "p/a/foo" {
		t.Fatalf("first import must win, got %q", got)
	}
}

func TestRootOwnerWithoutPrefixNeedsNoImport(t *testing.T) {
	root := document("wayland.xml", "wayland", nil, iface("wl_display"), iface("legacy_shell"))
	arg := object("shell", "legacy_shell")
	user := document("user.xml", "user", nil, iface("user_thing", request("attach", arg)))
	reg := build(t, registry.DefaultOptions(), root, user)

	res, ok, bag := run(t, reg, user)
	if !ok {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if arg.ResolvedInterface.Qualifier != "wl" {
		t.Fatalf("qualifier = %q, want root alias", arg.ResolvedInterface.Qualifier)
	}
	if len(res.Imports) != 0 {
		t.Fatalf("root document must be imported implicitly, got %+v", res.Imports)
	}
}
