package resolve

import (
	"slices"
	"strings"

	"wlbind/internal/ir"
	"wlbind/internal/registry"
)

// CascadeStep is one owner filter of the disambiguation cascade.
type CascadeStep uint8

const (
	// StepImports keeps owners whose protocol or module the document imports.
	StepImports CascadeStep = iota + 1
	// StepProtocol keeps owners whose protocol is the apparent protocol of the name.
	StepProtocol
	// StepModule keeps owners whose module is the apparent module of the name.
	StepModule
	// StepStable drops staging and unstable protocol variants.
	StepStable
)

// Cascade is the fixed step order.
var Cascade = []CascadeStep{StepImports, StepProtocol, StepModule, StepStable}

func (s CascadeStep) String() string {
	switch s {
	case StepImports:
		return "imports"
	case StepProtocol:
		return "protocol"
	case StepModule:
		return "module"
	case StepStable:
		return "stable"
	}
	return "unknown"
}

// Query is what the cascade knows about one reference.
type Query struct {
	// Name is the referenced fully-qualified interface name.
	Name string
	// Imports are the referencing document's declared imports.
	Imports []string
}

// apparentProtocols are the protocol names a reference seems to belong to:
// the name itself and the name without its namespace prefix.
func (q Query) apparentProtocols() (string, string) {
	return q.Name, ir.ShortName(q.Name)
}

// Keep reports whether owner o passes step s for query q.
func (s CascadeStep) Keep(q Query, o registry.Owner) bool {
	switch s {
	case StepImports:
		return slices.Contains(q.Imports, o.Protocol) || slices.Contains(q.Imports, o.Module)
	case StepProtocol:
		full, short := q.apparentProtocols()
		return o.Protocol == full || o.Protocol == short
	case StepModule:
		full, short := q.apparentProtocols()
		return o.Module == registry.StripVersion(full) || o.Module == registry.StripVersion(short)
	case StepStable:
		return !isVariant(o.Protocol)
	}
	return true
}

// isVariant reports whether a protocol name carries a staging/unstable marker.
func isVariant(protocol string) bool {
	for seg := range strings.FieldsFuncSeq(protocol, func(r rune) bool { return r == '_' || r == '-' }) {
		if seg == "staging" || seg == "unstable" {
			return true
		}
	}
	return false
}

// Narrow applies steps in order. A step that would reject every remaining
// owner is skipped; narrowing stops as soon as one owner is left. The
// survivors keep registry order.
func Narrow(owners []registry.Owner, q Query, steps []CascadeStep) []registry.Owner {
	cands := owners
	for _, step := range steps {
		if len(cands) <= 1 {
			break
		}
		kept := make([]registry.Owner, 0, len(cands))
		for _, o := range cands {
			if step.Keep(q, o) {
				kept = append(kept, o)
			}
		}
		if len(kept) > 0 {
			cands = kept
		}
	}
	return cands
}
