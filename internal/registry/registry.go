package registry

import (
	"errors"
	"fmt"
	"sort"

	"wlbind/internal/ir"
)

// Options configure naming conventions shared by the registry and resolver.
type Options struct {
	// RootPrefix marks interfaces of the root namespace ("wl_").
	RootPrefix string
	// RootAlias is the reserved qualifier of the root namespace ("wl").
	RootAlias string
	// RootProtocol names the protocol that owns the root namespace.
	RootProtocol string
}

// DefaultOptions returns the Wayland naming conventions.
func DefaultOptions() Options {
	return Options{
		RootPrefix:   "wl_",
		RootAlias:    "wl",
		RootProtocol: "wayland",
	}
}

// Owner is one document declaring a given interface name.
type Owner struct {
	Document   string
	Protocol   string
	Module     string
	Alias      string
	ShortName  string
	ImportPath string
	// Decl is the declaring interface; read-only.
	Decl *ir.Interface
}

// DocMeta is the registry view of one document.
type DocMeta struct {
	Document   string
	Protocol   string
	Module     string
	Alias      string
	ImportPath string
	Imports    []string
	// Root is set for the document owning the root namespace.
	Root bool
}

var ErrDuplicateDocument = errors.New("duplicate document identity")

// Registry indexes every interface of the corpus by name. It is built once
// by Build and read-only afterwards, so concurrent readers need no locking.
type Registry struct {
	opts    Options
	docs    map[string]*DocMeta
	order   []*DocMeta
	owners  map[string][]Owner
	aliases map[string]string // alias -> import path
}

// Build constructs the registry from documents already sorted by the caller.
// Phase one assigns aliases in document order; phase two indexes owners.
func Build(docs []*ir.Document, opts Options) (*Registry, error) {
	r := &Registry{
		opts:    opts,
		docs:    make(map[string]*DocMeta, len(docs)),
		order:   make([]*DocMeta, 0, len(docs)),
		owners:  make(map[string][]Owner),
		aliases: make(map[string]string, len(docs)),
	}

	for _, doc := range docs {
		if _, dup := r.docs[doc.Path]; dup {
			return nil, fmt.Errorf("%s: %w", doc.Path, ErrDuplicateDocument)
		}
		meta := &DocMeta{
			Document:   doc.Path,
			ImportPath: doc.ImportPath,
			Imports:    doc.ImportNames(),
		}
		if doc.Protocol != nil {
			meta.Protocol = doc.Protocol.Name
			meta.Module = ModuleName(doc.Protocol.Name)
		}
		_, rootTaken := r.aliases[opts.RootAlias]
		if opts.RootProtocol != "" && meta.Protocol == opts.RootProtocol && !rootTaken {
			meta.Root = true
			meta.Alias = opts.RootAlias
			r.aliases[opts.RootAlias] = doc.ImportPath
		} else {
			// второй документ корневого протокола получает обычный алиас
			// и корнем не считается
			alias, err := AssignAlias(doc, r.aliases, opts)
			if err != nil {
				return nil, err
			}
			meta.Alias = alias
			r.aliases[alias] = doc.ImportPath
		}
		r.docs[doc.Path] = meta
		r.order = append(r.order, meta)
	}

	for _, doc := range docs {
		if doc.Protocol == nil {
			continue
		}
		meta := r.docs[doc.Path]
		for _, iface := range doc.Protocol.Interfaces {
			r.owners[iface.Name] = append(r.owners[iface.Name], Owner{
				Document:   meta.Document,
				Protocol:   meta.Protocol,
				Module:     meta.Module,
				Alias:      meta.Alias,
				ShortName:  iface.ShortName(),
				ImportPath: meta.ImportPath,
				Decl:       iface,
			})
		}
	}
	for _, list := range r.owners {
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i], list[j]
			if a.ImportPath != b.ImportPath {
				return a.ImportPath < b.ImportPath
			}
			if a.Protocol != b.Protocol {
				return a.Protocol < b.Protocol
			}
			return a.Document < b.Document
		})
	}
	return r, nil
}

func (r *Registry) Options() Options { return r.opts }

// Owners returns the ordered owners of an interface name. The slice must not
// be modified.
func (r *Registry) Owners(name string) []Owner {
	return r.owners[name]
}

// Document returns the metadata of a document identity.
func (r *Registry) Document(path string) (*DocMeta, bool) {
	m, ok := r.docs[path]
	return m, ok
}

// Documents returns document metadata in build order.
func (r *Registry) Documents() []*DocMeta {
	return r.order
}

// Names returns every indexed interface name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.owners))
	for name := range r.owners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RootOwner returns the owner of name declared by the root document.
func (r *Registry) RootOwner(name string) (Owner, bool) {
	for _, o := range r.owners[name] {
		if m := r.docs[o.Document]; m != nil && m.Root {
			return o, true
		}
	}
	return Owner{}, false
}

// AliasOwner returns the import path bound to alias.
func (r *Registry) AliasOwner(alias string) (string, bool) {
	p, ok := r.aliases[alias]
	return p, ok
}
