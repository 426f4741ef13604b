package resolve

import (
	"fmt"
	"strings"

	"wlbind/internal/diag"
	"wlbind/internal/ir"
	"wlbind/internal/registry"
)

// Error is a failed reference lookup.
type Error struct {
	Code diag.Code
	Name string
	// Candidates are the surviving owners of an ambiguous reference, in
	// registry order.
	Candidates []registry.Owner
}

func (e *Error) Error() string {
	switch e.Code {
	case diag.ResAmbiguousInterface, diag.ResAmbiguousEnumOwner:
		parts := make([]string, 0, len(e.Candidates))
		for _, c := range e.Candidates {
			parts = append(parts, c.Protocol+" ("+c.Document+")")
		}
		return fmt.Sprintf("%s %q: candidates %s", e.Code.Title(), e.Name, strings.Join(parts, ", "))
	default:
		return fmt.Sprintf("%s %q", e.Code.Title(), e.Name)
	}
}

// Target is a resolved interface reference. Owner is nil for local and root
// references, which need no import.
type Target struct {
	Ref   ir.Ref
	Owner *registry.Owner
}

// EnumTarget is a resolved enumeration reference.
type EnumTarget struct {
	Ref   ir.EnumRef
	Owner *registry.Owner
}

// ResolveInterface resolves an interface name referenced from doc.
func ResolveInterface(doc *ir.Document, reg *registry.Registry, name string) (Target, error) {
	if local := doc.Interface(name); local != nil {
		return Target{Ref: ir.Ref{Name: local.ShortName(), Target: name}}, nil
	}
	opts := reg.Options()
	if rest, ok := stripRoot(name, opts.RootPrefix); ok {
		return Target{Ref: ir.Ref{Qualifier: opts.RootAlias, Name: rest, Target: name}}, nil
	}
	owner, err := lookupOwner(doc, reg, name, diag.ResUnresolvedInterface, diag.ResAmbiguousInterface)
	if err != nil {
		return Target{}, err
	}
	return Target{
		Ref:   ir.Ref{Qualifier: owner.Alias, Name: owner.ShortName, Target: name},
		Owner: &owner,
	}, nil
}

// ResolveEnumeration resolves an enum attribute of an argument declared in
// iface. Bare references name an enumeration of iface itself; dotted ones
// ("iface.enum") go through the interface lookup. An enumeration that cannot
// be located yields a synthesized name with Found unset, not an error.
func ResolveEnumeration(doc *ir.Document, reg *registry.Registry, ref string, iface *ir.Interface) (EnumTarget, error) {
	ifaceName, enumName, dotted := strings.Cut(ref, ".")
	if !dotted {
		return localEnum(iface, ref), nil
	}
	if local := doc.Interface(ifaceName); local != nil {
		return localEnum(local, enumName), nil
	}

	opts := reg.Options()
	if rest, ok := stripRoot(ifaceName, opts.RootPrefix); ok {
		t := EnumTarget{Ref: ir.EnumRef{Ref: ir.Ref{
			Qualifier: opts.RootAlias,
			Name:      rest + "_" + enumName,
			Target:    ifaceName,
		}}}
		if owner, found := reg.RootOwner(ifaceName); found {
			fillEnum(&t.Ref, owner.Decl, enumName)
		}
		return t, nil
	}

	owner, err := lookupOwner(doc, reg, ifaceName, diag.ResUnresolvedEnumOwner, diag.ResAmbiguousEnumOwner)
	if err != nil {
		return EnumTarget{}, err
	}
	t := EnumTarget{
		Ref: ir.EnumRef{Ref: ir.Ref{
			Qualifier: owner.Alias,
			Name:      owner.ShortName + "_" + enumName,
			Target:    ifaceName,
		}},
		Owner: &owner,
	}
	fillEnum(&t.Ref, owner.Decl, enumName)
	return t, nil
}

func localEnum(iface *ir.Interface, enumName string) EnumTarget {
	t := EnumTarget{Ref: ir.EnumRef{Ref: ir.Ref{
		Name:   iface.ShortName() + "_" + enumName,
		Target: iface.Name,
	}}}
	fillEnum(&t.Ref, iface, enumName)
	return t
}

func fillEnum(ref *ir.EnumRef, iface *ir.Interface, enumName string) {
	if e := iface.Enum(enumName); e != nil {
		ref.Found = true
		ref.Bitfield = e.Bitfield
	}
}

func stripRoot(name, prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

func lookupOwner(doc *ir.Document, reg *registry.Registry, name string, unresolved, ambiguous diag.Code) (registry.Owner, error) {
	owners := reg.Owners(name)
	if len(owners) == 0 {
		return registry.Owner{}, &Error{Code: unresolved, Name: name}
	}
	survivors := Narrow(owners, Query{Name: name, Imports: doc.ImportNames()}, Cascade)
	if len(survivors) != 1 {
		return registry.Owner{}, &Error{Code: ambiguous, Name: name, Candidates: survivors}
	}
	return survivors[0], nil
}
