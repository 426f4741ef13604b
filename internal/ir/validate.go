package ir

import (
	"fmt"

	"wlbind/internal/diag"
	"wlbind/internal/source"
)

// Validate checks the structural rules of a parsed document, normalizes every
// message (typed return extraction) and reports violations to r. It returns
// false when at least one error was reported.
func Validate(doc *Document, r diag.Reporter) bool {
	if doc == nil || doc.Protocol == nil {
		return false
	}
	v := validator{reporter: r, proto: doc.Protocol}
	v.run()
	return !v.failed
}

type validator struct {
	reporter diag.Reporter
	proto    *Protocol
	failed   bool
}

func (v *validator) errorf(code diag.Code, where diag.Coords, span source.Span, format string, args ...any) {
	v.failed = true
	diag.ReportError(v.reporter, code, span, fmt.Sprintf(format, args...)).WithWhere(where).Emit()
}

func (v *validator) run() {
	p := v.proto
	if len(p.Interfaces) == 0 {
		v.errorf(diag.ValEmptyInterfaceSet, diag.Coords{Protocol: p.Name}, p.Span,
			"protocol %q declares no interfaces", p.Name)
	}

	seen := make(map[string]*Interface, len(p.Interfaces))
	for _, iface := range p.Interfaces {
		if prev, dup := seen[iface.Name]; dup {
			v.failed = true
			diag.ReportError(v.reporter, diag.ValDuplicateInterface, iface.Span,
				fmt.Sprintf("interface %q is declared more than once", iface.Name)).
				WithWhere(diag.Coords{Protocol: p.Name, Interface: iface.Name}).
				WithNote(prev.Span, "previous declaration").
				Emit()
			continue
		}
		seen[iface.Name] = iface
		v.checkInterface(iface)
	}
}

func (v *validator) checkInterface(iface *Interface) {
	where := diag.Coords{Protocol: v.proto.Name, Interface: iface.Name}

	enums := make(map[string]struct{}, len(iface.Enums))
	for _, e := range iface.Enums {
		if _, dup := enums[e.Name]; dup {
			v.errorf(diag.ValDuplicateEnumeration, where, e.Span, "enumeration %q is declared more than once", e.Name)
		}
		enums[e.Name] = struct{}{}
		if len(e.Entries) == 0 {
			v.errorf(diag.ValEmptyEnumeration, where, e.Span, "enumeration %q has no entries", e.Name)
		}
	}

	v.checkMessages(iface, iface.Requests)
	v.checkMessages(iface, iface.Events)
}

func (v *validator) checkMessages(iface *Interface, msgs []*Message) {
	names := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		where := diag.Coords{Protocol: v.proto.Name, Interface: iface.Name, Message: m.Name}
		if _, dup := names[m.Name]; dup {
			v.errorf(diag.ValDuplicateMessage, where, m.Span, "%s %q is declared more than once", m.Kind, m.Name)
		}
		names[m.Name] = struct{}{}

		if m.Name == "destroy" && !m.Destructor {
			v.errorf(diag.ValDestructorNotMarked, where, m.Span,
				"%s %q must be marked with type=\"destructor\"", m.Kind, m.Name)
		}
		for _, arg := range m.WireArgs() {
			v.checkArgument(where, arg)
		}
		if extra := Normalize(m); extra != nil {
			where.Argument = extra.Name
			v.errorf(diag.ValMultipleTypedReturns, where, extra.Span,
				"%s %q has more than one typed new_id argument (%q and %q)", m.Kind, m.Name, m.Return.Name, extra.Name)
		}
	}
}

func (v *validator) checkArgument(where diag.Coords, arg *Argument) {
	where.Argument = arg.Name
	if arg.Nullable && !arg.Kind.AllowsNullable() {
		v.errorf(diag.ValNullableUnsupported, where, arg.Span,
			"argument %q of kind %s cannot be nullable", arg.Name, arg.Kind)
	}
	if arg.Interface != "" && !arg.Kind.AllowsInterface() {
		v.errorf(diag.ValInterfaceOnUnsupportedKind, where, arg.Span,
			"argument %q of kind %s cannot reference interface %q", arg.Name, arg.Kind, arg.Interface)
	}
	if arg.Enum != "" && !arg.Kind.AllowsEnum() {
		v.errorf(diag.ValEnumOnUnsupportedKind, where, arg.Span,
			"argument %q of kind %s cannot reference enumeration %q", arg.Name, arg.Kind, arg.Enum)
	}
}

// Normalize moves the typed new_id argument of m into m.Return and records
// the generic new_id, if any. It returns the second typed new_id argument
// when the message declares more than one; that argument stays in Args.
// Calling Normalize again is a no-op.
func Normalize(m *Message) *Argument {
	if m.normalized {
		return nil
	}
	m.normalized = true
	m.ReturnIndex = -1

	var extra *Argument
	args := make([]*Argument, 0, len(m.Args))
	for i, arg := range m.Args {
		if arg.Kind != ArgNewID {
			args = append(args, arg)
			continue
		}
		switch {
		case arg.Interface == "":
			if m.Generic == nil {
				m.Generic = arg
			}
			args = append(args, arg)
		case m.Return == nil:
			m.Return = arg
			m.ReturnIndex = i
		default:
			if extra == nil {
				extra = arg
			}
			args = append(args, arg)
		}
	}
	m.Args = args
	return extra
}
