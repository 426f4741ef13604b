package irfmt

import (
	"encoding/hex"

	"wlbind/internal/ir"
	"wlbind/internal/project"
	"wlbind/internal/registry"
	"wlbind/internal/resolve"
)

// Input gathers the compiled corpus. Documents, Resolutions and Metas are
// index-aligned; Metas may be shorter (or nil) when hashes are unavailable.
type Input struct {
	Registry    *registry.Registry
	Documents   []*ir.Document
	Resolutions []*resolve.Result
	Metas       []project.DocumentMeta
	EmitOrder   []string
}

// Convert builds the serializable view of a compiled corpus.
func Convert(in Input) *Corpus {
	c := &Corpus{
		Schema:    SchemaVersion,
		EmitOrder: append([]string(nil), in.EmitOrder...),
		Documents: make([]Document, 0, len(in.Documents)),
	}
	for i, doc := range in.Documents {
		out := Document{
			Path:       doc.Path,
			ImportPath: doc.ImportPath,
		}
		if in.Registry != nil {
			if meta, ok := in.Registry.Document(doc.Path); ok {
				out.Module = meta.Module
				out.Alias = meta.Alias
				out.Root = meta.Root
			}
		}
		if i < len(in.Metas) && in.Metas[i].DocHash != (project.Digest{}) {
			out.Hash = hex.EncodeToString(in.Metas[i].DocHash[:])
		}
		if i < len(in.Resolutions) && in.Resolutions[i] != nil {
			for _, edge := range in.Resolutions[i].Imports {
				out.Imports = append(out.Imports, Import(edge))
			}
		}
		if p := doc.Protocol; p != nil {
			out.Protocol = p.Name
			out.Copyright = p.Copyright
			out.Summary = p.Description.Summary
			out.NullRun = p.NullRunLength
			out.TypeTable = make([]string, len(p.TypeTable))
			for j, ref := range p.TypeTable {
				if ref != nil {
					out.TypeTable[j] = ref.String()
				}
			}
			out.Interfaces = make([]Interface, 0, len(p.Interfaces))
			for _, iface := range p.Interfaces {
				out.Interfaces = append(out.Interfaces, convertInterface(iface))
			}
		}
		c.Documents = append(c.Documents, out)
	}
	return c
}

func convertInterface(iface *ir.Interface) Interface {
	out := Interface{
		Name:      iface.Name,
		ShortName: iface.ShortName(),
		Version:   iface.Version,
		Summary:   iface.Description.Summary,
	}
	for _, e := range iface.Enums {
		enum := Enum{Name: e.Name, Bitfield: e.Bitfield, Since: e.Since, Entries: make([]Entry, len(e.Entries))}
		for i, entry := range e.Entries {
			enum.Entries[i] = Entry(entry)
		}
		out.Enums = append(out.Enums, enum)
	}
	for _, m := range iface.Requests {
		out.Requests = append(out.Requests, convertMessage(m))
	}
	for _, m := range iface.Events {
		out.Events = append(out.Events, convertMessage(m))
	}
	return out
}

func convertMessage(m *ir.Message) Message {
	out := Message{
		Name:            m.Name,
		Destructor:      m.Destructor,
		Since:           m.Since,
		DeprecatedSince: m.DeprecatedSince,
		Summary:         m.Description.Summary,
		TypeIndex:       m.TypeIndex,
		AllNull:         m.AllNull,
	}
	if m.Return != nil {
		ret := convertArg(m.Return)
		out.Return = &ret
	}
	for _, arg := range m.Args {
		out.Args = append(out.Args, convertArg(arg))
	}
	return out
}

func convertArg(arg *ir.Argument) Arg {
	out := Arg{
		Name:     arg.Name,
		Kind:     arg.Kind.String(),
		Nullable: arg.Nullable,
		Summary:  arg.Summary,
	}
	if r := arg.ResolvedInterface; r != nil {
		out.Ref = &Ref{Qualifier: r.Qualifier, Name: r.Name, Target: r.Target}
	}
	if e := arg.ResolvedEnum; e != nil {
		out.Enum = &EnumRef{Qualifier: e.Qualifier, Name: e.Name, Bitfield: e.Bitfield, Found: e.Found}
	}
	return out
}
