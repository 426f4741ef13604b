package ir

import (
	"iter"
	"strings"

	"wlbind/internal/source"
)

// Document is one parsed specification source. It is built by the document
// parser and treated as immutable by every later phase, except for the
// resolution and layout results attached to its arguments and messages.
type Document struct {
	// Path is the document identity: slash path relative to the corpus root.
	Path string
	// ImportPath is where bindings generated for this document live.
	ImportPath string
	// File is the source file the document was parsed from.
	File source.FileID
	// Imports are the declared cross-document import names.
	Imports []Import
	// Protocol is the single protocol the document declares.
	Protocol *Protocol
}

// Import is a declared dependency on another document's protocol or module name.
type Import struct {
	Name string
	Span source.Span
}

// ImportNames returns the declared import names in declaration order.
func (d *Document) ImportNames() []string {
	out := make([]string, 0, len(d.Imports))
	for _, imp := range d.Imports {
		out = append(out, imp.Name)
	}
	return out
}

// Interface returns the locally declared interface with the given full name.
func (d *Document) Interface(name string) *Interface {
	if d == nil || d.Protocol == nil {
		return nil
	}
	return d.Protocol.Interface(name)
}

type Protocol struct {
	Name        string
	Copyright   string
	Description Description
	Interfaces  []*Interface
	Span        source.Span

	// NullRunLength is the size of the shared all-null head of the type table.
	NullRunLength int
	// TypeTable is the protocol-wide interface slot table: the null run
	// followed by the slots of every non-null message in layout order.
	TypeTable []*Ref
}

// Interface returns the interface with the given full name, or nil.
func (p *Protocol) Interface(name string) *Interface {
	if p == nil {
		return nil
	}
	for _, iface := range p.Interfaces {
		if iface.Name == name {
			return iface
		}
	}
	return nil
}

// Messages yields every message in layout order: interfaces in declaration
// order, then requests, then events.
func (p *Protocol) Messages() iter.Seq2[*Interface, *Message] {
	return func(yield func(*Interface, *Message) bool) {
		for _, iface := range p.Interfaces {
			for _, m := range iface.Requests {
				if !yield(iface, m) {
					return
				}
			}
			for _, m := range iface.Events {
				if !yield(iface, m) {
					return
				}
			}
		}
	}
}

// Description is the free-text notice attached to protocol elements.
type Description struct {
	Summary string
	Text    string
}

type Interface struct {
	Name        string
	Version     int
	Description Description
	Enums       []*Enum
	Requests    []*Message
	Events      []*Message
	Span        source.Span
}

// ShortName is the full name with its first namespace segment removed.
func (i *Interface) ShortName() string {
	return ShortName(i.Name)
}

// Enum returns the enumeration with the given name, or nil.
func (i *Interface) Enum(name string) *Enum {
	if i == nil {
		return nil
	}
	for _, e := range i.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

type Message struct {
	Name            string
	Kind            MessageKind
	Destructor      bool
	Since           int
	DeprecatedSince int
	Description     Description
	// Args are the declared arguments without the typed return.
	Args []*Argument
	// Return is the single interface-typed new_id argument, if any.
	Return *Argument
	// ReturnIndex is the wire position of Return among all declared
	// arguments, -1 when there is no typed return.
	ReturnIndex int
	// Generic is an interface-less new_id argument; it stays in Args.
	Generic *Argument
	Span    source.Span

	normalized bool

	// заполняется layout-проходом
	AllNull   bool
	TypeIndex int
	Slots     []*Ref
}

// SlotCount is the number of type-table slots the message occupies.
func (m *Message) SlotCount() int {
	n := len(m.Args)
	if m.Return != nil {
		n++
	}
	return n
}

// WireArgs returns every declared argument in wire order, the typed return
// included at its original position.
func (m *Message) WireArgs() []*Argument {
	if m.Return == nil {
		return m.Args
	}
	out := make([]*Argument, 0, len(m.Args)+1)
	idx := m.ReturnIndex
	if idx < 0 || idx > len(m.Args) {
		idx = len(m.Args)
	}
	out = append(out, m.Args[:idx]...)
	out = append(out, m.Return)
	out = append(out, m.Args[idx:]...)
	return out
}

type Argument struct {
	Name      string
	Kind      ArgKind
	Nullable  bool
	Summary   string
	Interface string // raw interface reference as written
	Enum      string // raw enum reference as written
	Span      source.Span

	// результаты разрешения ссылок
	ResolvedInterface *Ref
	ResolvedEnum      *EnumRef
}

type Enum struct {
	Name        string
	Bitfield    bool
	Since       int
	Description Description
	Entries     []Entry
	Span        source.Span
}

type Entry struct {
	Name    string
	Value   uint32
	Since   int
	Summary string
}

// Ref is a resolved symbol: a namespace qualifier plus a short name. An empty
// qualifier means the symbol is local to the referencing document.
type Ref struct {
	Qualifier string
	Name      string
	// Target is the fully-qualified interface the reference points to.
	Target string
}

// IsLocal reports whether the reference needs no namespace qualifier.
func (r *Ref) IsLocal() bool {
	return r != nil && r.Qualifier == ""
}

func (r *Ref) String() string {
	if r == nil {
		return "<null>"
	}
	if r.Qualifier == "" {
		return r.Name
	}
	return r.Qualifier + "." + r.Name
}

// EnumRef is a resolved enumeration reference.
type EnumRef struct {
	Ref
	Bitfield bool
	// Found is false when the target enumeration could not be located and
	// the name was synthesized.
	Found bool
}

// ShortName strips the first underscore-delimited segment of name.
// Names without a separator are returned unchanged.
func ShortName(name string) string {
	if _, rest, ok := strings.Cut(name, "_"); ok && rest != "" {
		return rest
	}
	return name
}
