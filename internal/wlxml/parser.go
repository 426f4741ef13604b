package wlxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"fortio.org/safecast"

	"wlbind/internal/diag"
	"wlbind/internal/ir"
	"wlbind/internal/source"
)

// Parse decodes the protocol document held by f. The returned document is
// nil when the XML is malformed or declares no <protocol> root; every other
// problem is reported to r and yields a best-effort document.
func Parse(f *source.File, r diag.Reporter) *ir.Document {
	if f == nil {
		return nil
	}
	p := newParser(f, r)
	if !p.run() {
		return nil
	}
	return p.doc
}

type frame struct {
	name string
	span source.Span
	// текст внутри элемента (copyright, description)
	text strings.Builder
	// summary-атрибут <description>
	summary string
	// skip: элемент уже отвергнут, детей не разбираем
	skip bool
}

func newParser(f *source.File, r diag.Reporter) *parser {
	return &parser{
		file:  f,
		rep:   r,
		dec:   xml.NewDecoder(bytes.NewReader(f.Content)),
		doc:   &ir.Document{Path: f.Path, File: f.ID},
		limit: math.MaxUint32,
	}
}

type parser struct {
	file *source.File
	rep  diag.Reporter
	dec  *xml.Decoder
	doc  *ir.Document
	// limit is the largest offset a span can hold
	limit int64

	stack []*frame
	span  source.Span // span of the current token

	iface *ir.Interface
	msg   *ir.Message
	arg   *ir.Argument
	enum  *ir.Enum
	entry *ir.Entry
}

// offset is the decoder position; false once it no longer fits a span.
func (p *parser) offset() (uint32, bool) {
	raw := p.dec.InputOffset()
	if raw > p.limit {
		return 0, false
	}
	off, err := safecast.Conv[uint32](raw)
	return off, err == nil
}

func (p *parser) tooLarge() bool {
	p.errorf(diag.XMLMalformed, "document is too large: offset %d does not fit a source span", p.dec.InputOffset())
	return false
}

func (p *parser) errorf(code diag.Code, format string, args ...any) {
	diag.ReportError(p.rep, code, p.span, fmt.Sprintf(format, args...)).WithWhere(p.where()).Emit()
}

func (p *parser) warnf(code diag.Code, format string, args ...any) {
	diag.ReportWarning(p.rep, code, p.span, fmt.Sprintf(format, args...)).WithWhere(p.where()).Emit()
}

func (p *parser) where() diag.Coords {
	var c diag.Coords
	if p.doc.Protocol != nil {
		c.Protocol = p.doc.Protocol.Name
	}
	if p.iface != nil {
		c.Interface = p.iface.Name
	}
	if p.msg != nil {
		c.Message = p.msg.Name
	}
	if p.arg != nil {
		c.Argument = p.arg.Name
	}
	return c
}

func (p *parser) top() *frame {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

func (p *parser) run() bool {
	for {
		start, ok := p.offset()
		if !ok {
			return p.tooLarge()
		}
		tok, err := p.dec.Token()
		end, ok := p.offset()
		if !ok {
			return p.tooLarge()
		}
		p.span = source.Span{File: p.file.ID, Start: start, End: end}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			p.errorf(diag.XMLMalformed, "malformed XML: %v", err)
			return false
		}

		switch t := tok.(type) {
		case xml.StartElement:
			fr := &frame{name: t.Name.Local, span: p.span}
			if parent := p.top(); parent != nil && parent.skip {
				fr.skip = true
			} else {
				fr.skip = !p.open(fr, attrSet(t.Attr), len(p.stack))
			}
			p.stack = append(p.stack, fr)
		case xml.EndElement:
			fr := p.top()
			if fr == nil {
				continue
			}
			p.stack = p.stack[:len(p.stack)-1]
			if !fr.skip {
				p.close(fr)
			}
		case xml.CharData:
			if fr := p.top(); fr != nil && !fr.skip {
				fr.text.Write(t)
			}
		}
	}

	if p.doc.Protocol == nil {
		p.span = source.Span{File: p.file.ID}
		p.errorf(diag.XMLMissingProtocolElement, "document has no <protocol> element")
		return false
	}
	return true
}

// open handles a start tag. It returns false when the element and its
// children must be ignored.
func (p *parser) open(fr *frame, attrs attrSet, depth int) bool {
	name := fr.name
	parent := ""
	if fr := p.top(); fr != nil {
		parent = fr.name
	}

	switch {
	case depth == 0 && name == "protocol":
		return p.openProtocol(attrs)
	case parent == "protocol" && name == "copyright":
		return true
	case parent == "protocol" && name == "import":
		return p.openImport(attrs)
	case parent == "protocol" && name == "interface":
		return p.openInterface(attrs)
	case parent == "interface" && (name == "request" || name == "event"):
		return p.openMessage(name, attrs)
	case parent == "interface" && name == "enum":
		return p.openEnum(attrs)
	case (parent == "request" || parent == "event") && name == "arg":
		return p.openArg(attrs)
	case parent == "enum" && name == "entry":
		return p.openEntry(attrs)
	case name == "description" && parent != "":
		fr.summary, _ = attrs.get("summary")
		return true
	}

	if parent == "" {
		p.errorf(diag.XMLUnexpectedElement, "unexpected root element <%s>, want <protocol>", name)
	} else {
		p.warnf(diag.XMLUnexpectedElement, "unexpected element <%s> inside <%s>", name, parent)
	}
	return false
}

func (p *parser) close(fr *frame) {
	text := strings.TrimSpace(fr.text.String())
	switch fr.name {
	case "copyright":
		if p.doc.Protocol != nil {
			p.doc.Protocol.Copyright = text
		}
	case "description":
		p.setDescription(fr.summary, text)
	case "interface":
		p.iface = nil
	case "request", "event":
		p.msg = nil
	case "arg":
		p.arg = nil
	case "enum":
		p.enum = nil
	case "entry":
		p.entry = nil
	}
}

func (p *parser) openProtocol(attrs attrSet) bool {
	name, _ := p.required(attrs, "protocol", "name")
	p.doc.Protocol = &ir.Protocol{Name: name, Span: p.span}
	return true
}

func (p *parser) openImport(attrs attrSet) bool {
	name, ok := p.required(attrs, "import", "name")
	if ok {
		p.doc.Imports = append(p.doc.Imports, ir.Import{Name: name, Span: p.span})
	}
	return ok
}

func (p *parser) openInterface(attrs attrSet) bool {
	name, _ := p.required(attrs, "interface", "name")
	iface := &ir.Interface{Name: name, Span: p.span}
	p.iface = iface
	if _, ok := p.required(attrs, "interface", "version"); ok {
		iface.Version = p.version(attrs, "interface", "version", 1)
	} else {
		iface.Version = 1
	}
	p.doc.Protocol.Interfaces = append(p.doc.Protocol.Interfaces, iface)
	return true
}

func (p *parser) openMessage(elem string, attrs attrSet) bool {
	name, _ := p.required(attrs, elem, "name")
	m := &ir.Message{Name: name, Kind: ir.Request, Span: p.span, ReturnIndex: -1}
	if elem == "event" {
		m.Kind = ir.Event
	}
	p.msg = m
	if typ, ok := attrs.get("type"); ok {
		if typ == "destructor" {
			m.Destructor = true
		} else {
			p.warnf(diag.XMLUnexpectedElement, "unknown %s type %q", elem, typ)
		}
	}
	m.Since = p.version(attrs, elem, "since", 1)
	m.DeprecatedSince = p.version(attrs, elem, "deprecated-since", 0)
	if m.Kind == ir.Request {
		p.iface.Requests = append(p.iface.Requests, m)
	} else {
		p.iface.Events = append(p.iface.Events, m)
	}
	return true
}

func (p *parser) openArg(attrs attrSet) bool {
	name, _ := p.required(attrs, "arg", "name")
	arg := &ir.Argument{Name: name, Span: p.span}
	p.arg = arg
	if typ, ok := p.required(attrs, "arg", "type"); ok {
		kind, known := ir.ParseArgKind(typ)
		if !known {
			p.errorf(diag.XMLUnknownArgType, "unknown argument type %q", typ)
		}
		arg.Kind = kind
	}
	arg.Interface, _ = attrs.get("interface")
	arg.Enum, _ = attrs.get("enum")
	arg.Summary, _ = attrs.get("summary")
	arg.Nullable = p.boolean(attrs, "arg", "allow-null")
	p.msg.Args = append(p.msg.Args, arg)
	return true
}

func (p *parser) openEnum(attrs attrSet) bool {
	name, _ := p.required(attrs, "enum", "name")
	e := &ir.Enum{Name: name, Span: p.span}
	p.enum = e
	e.Bitfield = p.boolean(attrs, "enum", "bitfield")
	e.Since = p.version(attrs, "enum", "since", 1)
	p.iface.Enums = append(p.iface.Enums, e)
	return true
}

func (p *parser) openEntry(attrs attrSet) bool {
	name, _ := p.required(attrs, "entry", "name")
	entry := ir.Entry{Name: name}
	if raw, ok := p.required(attrs, "entry", "value"); ok {
		v, err := parseEntryValue(raw)
		if err != nil {
			p.errorf(diag.XMLInvalidInteger, "entry %q has invalid value %q", name, raw)
		}
		entry.Value = v
	}
	entry.Since = p.version(attrs, "entry", "since", 1)
	entry.Summary, _ = attrs.get("summary")
	p.enum.Entries = append(p.enum.Entries, entry)
	p.entry = &p.enum.Entries[len(p.enum.Entries)-1]
	return true
}

// setDescription attaches a closed <description> to the innermost owner.
func (p *parser) setDescription(summary, text string) {
	var desc *ir.Description
	switch owner := p.top(); {
	case owner == nil:
		return
	case owner.name == "protocol":
		desc = &p.doc.Protocol.Description
	case owner.name == "interface":
		desc = &p.iface.Description
	case owner.name == "request" || owner.name == "event":
		desc = &p.msg.Description
	case owner.name == "enum":
		desc = &p.enum.Description
	case owner.name == "arg":
		if p.arg.Summary == "" {
			p.arg.Summary = pick(summary, firstLine(text))
		}
		return
	case owner.name == "entry":
		if p.entry.Summary == "" {
			p.entry.Summary = pick(summary, firstLine(text))
		}
		return
	default:
		return
	}
	desc.Summary = summary
	desc.Text = text
}

func pick(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
