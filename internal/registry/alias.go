package registry

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"wlbind/internal/ir"
)

// maxAliasSuffix bounds the base_N synthesis.
const maxAliasSuffix = 1 << 16

// ErrAliasExhausted is returned when no alias could be synthesized.
var ErrAliasExhausted = errors.New("alias assignment exhausted")

// AliasCandidates lists the raw alias candidates of doc in preference order,
// before sanitization.
func AliasCandidates(doc *ir.Document) []string {
	var proto string
	var ifaces []string
	if doc.Protocol != nil {
		proto = doc.Protocol.Name
		ifaces = make([]string, 0, len(doc.Protocol.Interfaces))
		for _, iface := range doc.Protocol.Interfaces {
			ifaces = append(ifaces, iface.Name)
		}
	}
	first, _, _ := strings.Cut(Sanitize(proto), "_")
	return []string{
		commonPrefix(ifaces),
		StripVersion(proto),
		path.Base(doc.ImportPath),
		proto,
		first,
	}
}

// AssignAlias picks the alias of doc given the aliases already bound to
// import paths. bound is only read; the caller records the result.
func AssignAlias(doc *ir.Document, bound map[string]string, opts Options) (string, error) {
	usable := func(alias string) bool {
		if alias == "" || alias == opts.RootAlias {
			return false
		}
		owner, taken := bound[alias]
		return !taken || owner == doc.ImportPath
	}

	for _, cand := range AliasCandidates(doc) {
		if alias := Sanitize(cand); usable(alias) {
			return alias, nil
		}
	}

	base := ""
	if doc.Protocol != nil {
		base = Sanitize(doc.Protocol.Name)
	}
	if base == "" {
		base = "proto"
	}
	for n := 2; n <= maxAliasSuffix; n++ {
		alias := fmt.Sprintf("%s_%d", base, n)
		if usable(alias) {
			return alias, nil
		}
	}
	return "", fmt.Errorf("%s: %w", doc.Path, ErrAliasExhausted)
}
