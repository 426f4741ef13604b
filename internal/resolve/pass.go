package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"wlbind/internal/diag"
	"wlbind/internal/ir"
	"wlbind/internal/registry"
	"wlbind/internal/source"
)

// ImportEdge is one document another document must import.
type ImportEdge struct {
	Alias      string
	Document   string
	ImportPath string
	// RelPath is ImportPath relative to the importing document's import path.
	RelPath string
}

// Result is the per-document outcome of a resolution pass.
type Result struct {
	Document   string
	Alias      string
	ImportPath string
	// Imports are sorted by alias.
	Imports []ImportEdge
}

// Document resolves every interface and enumeration reference of doc,
// attaching the results to its arguments. It writes only to doc and to r, so
// distinct documents may be resolved concurrently against a frozen registry.
// The returned bool is false when an error was reported.
func Document(reg *registry.Registry, doc *ir.Document, r diag.Reporter) (*Result, bool) {
	p := &pass{
		reg:   reg,
		doc:   doc,
		rep:   r,
		edges: make(map[string]registry.Owner),
	}
	res := &Result{Document: doc.Path, ImportPath: doc.ImportPath}
	if meta, ok := reg.Document(doc.Path); ok {
		res.Alias = meta.Alias
	}
	if doc.Protocol != nil {
		for iface, m := range doc.Protocol.Messages() {
			p.message(iface, m)
		}
	}

	res.Imports = make([]ImportEdge, 0, len(p.edges))
	for alias, o := range p.edges {
		res.Imports = append(res.Imports, ImportEdge{
			Alias:      alias,
			Document:   o.Document,
			ImportPath: o.ImportPath,
			RelPath:    relSlash(dir(doc.ImportPath), o.ImportPath),
		})
	}
	sort.Slice(res.Imports, func(i, j int) bool { return res.Imports[i].Alias < res.Imports[j].Alias })
	return res, !p.failed
}

type pass struct {
	reg    *registry.Registry
	doc    *ir.Document
	rep    diag.Reporter
	edges  map[string]registry.Owner // alias -> first owner imported under it
	failed bool
}

func (p *pass) message(iface *ir.Interface, m *ir.Message) {
	for _, arg := range m.WireArgs() {
		where := diag.Coords{
			Protocol:  p.doc.Protocol.Name,
			Interface: iface.Name,
			Message:   m.Name,
			Argument:  arg.Name,
		}
		if arg.Interface != "" {
			p.argInterface(where, arg)
		}
		if arg.Enum != "" {
			p.argEnum(where, iface, arg)
		}
	}
}

func (p *pass) argInterface(where diag.Coords, arg *ir.Argument) {
	t, err := ResolveInterface(p.doc, p.reg, arg.Interface)
	if err != nil {
		p.fail(where, arg.Span, err)
		return
	}
	ref := t.Ref
	arg.ResolvedInterface = &ref
	if t.Owner != nil {
		p.edge(where, arg.Span, *t.Owner)
	}
}

func (p *pass) argEnum(where diag.Coords, iface *ir.Interface, arg *ir.Argument) {
	t, err := ResolveEnumeration(p.doc, p.reg, arg.Enum, iface)
	if err != nil {
		p.fail(where, arg.Span, err)
		return
	}
	ref := t.Ref
	arg.ResolvedEnum = &ref
	if t.Owner != nil {
		p.edge(where, arg.Span, *t.Owner)
	}
	if !ref.Found {
		diag.ReportWarning(p.rep, diag.ResEnumNotFound, arg.Span,
			fmt.Sprintf("enumeration %q not found, referenced as untyped %s", arg.Enum, ref.String())).
			WithWhere(where).Emit()
		return
	}
	if ref.Bitfield && arg.Kind != ir.ArgUint {
		p.failed = true
		diag.ReportError(p.rep, diag.ResEnumTypeMismatch, arg.Span,
			fmt.Sprintf("bitfield enumeration %q requires a uint argument, %q is %s", arg.Enum, arg.Name, arg.Kind)).
			WithWhere(where).Emit()
	}
}

// edge records the import of owner's document under its alias.
func (p *pass) edge(where diag.Coords, span source.Span, owner registry.Owner) {
	if owner.Document == p.doc.Path {
		return
	}
	// корневой документ импортируется неявно
	if meta, ok := p.reg.Document(owner.Document); ok && meta.Root {
		return
	}
	if prev, ok := p.edges[owner.Alias]; ok {
		if prev.ImportPath != owner.ImportPath {
			p.failed = true
			diag.ReportError(p.rep, diag.ResImportAliasCollision, span,
				fmt.Sprintf("alias %q already imports %q, cannot also import %q", owner.Alias, prev.ImportPath, owner.ImportPath)).
				WithWhere(where).
				WithCandidates(candidate(prev), candidate(owner)).
				Emit()
		}
		return
	}
	p.edges[owner.Alias] = owner
}

func (p *pass) fail(where diag.Coords, span source.Span, err error) {
	p.failed = true
	var rerr *Error
	if !errors.As(err, &rerr) {
		diag.ReportError(p.rep, diag.UnknownCode, span, err.Error()).WithWhere(where).Emit()
		return
	}
	msg := fmt.Sprintf("%s %q in %s", strings.ToLower(rerr.Code.Title()), rerr.Name, p.doc.Path)
	b := diag.ReportError(p.rep, rerr.Code, span, msg).WithWhere(where)
	if len(rerr.Candidates) > 0 {
		cands := make([]diag.Candidate, 0, len(rerr.Candidates))
		for _, o := range rerr.Candidates {
			cands = append(cands, candidate(o))
		}
		b = b.WithCandidates(cands...)
	}
	b.Emit()
}

func candidate(o registry.Owner) diag.Candidate {
	return diag.Candidate{
		Protocol:   o.Protocol,
		Module:     o.Module,
		ImportPath: o.ImportPath,
		Source:     o.Document,
	}
}

func dir(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// relSlash returns target relative to the slash directory base.
func relSlash(base, target string) string {
	bs := splitSlash(base)
	ts := splitSlash(target)
	n := 0
	for n < len(bs) && n < len(ts) && bs[n] == ts[n] {
		n++
	}
	parts := make([]string, 0, len(bs)-n+len(ts)-n+1)
	for range bs[n:] {
		parts = append(parts, "..")
	}
	parts = append(parts, ts[n:]...)
	if len(parts) == 0 || parts[0] != ".." {
		parts = append([]string{"."}, parts...)
	}
	return strings.Join(parts, "/")
}

func splitSlash(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
