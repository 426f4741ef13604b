package wlxml

import (
	"encoding/xml"
	"strconv"
	"strings"

	"wlbind/internal/diag"
)

// attrSet is the attribute list of one start tag.
type attrSet []xml.Attr

func (a attrSet) get(name string) (string, bool) {
	for _, at := range a {
		if at.Name.Space == "" && at.Name.Local == name {
			return at.Value, true
		}
	}
	return "", false
}

// required returns the attribute value, reporting XMLMissingAttribute when absent.
func (p *parser) required(a attrSet, elem, name string) (string, bool) {
	v, ok := a.get(name)
	if !ok || strings.TrimSpace(v) == "" {
		p.errorf(diag.XMLMissingAttribute, "<%s> requires attribute %q", elem, name)
		return "", false
	}
	return v, true
}

// boolean parses an optional true/false attribute.
func (p *parser) boolean(a attrSet, elem, name string) bool {
	v, ok := a.get(name)
	if !ok {
		return false
	}
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	p.errorf(diag.XMLInvalidBoolean, "attribute %q of <%s> must be \"true\" or \"false\", got %q", name, elem, v)
	return false
}

// version parses an optional positive version attribute; absent means def.
func (p *parser) version(a attrSet, elem, name string, def int) int {
	v, ok := a.get(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		p.errorf(diag.XMLInvalidInteger, "attribute %q of <%s> must be a positive integer, got %q", name, elem, v)
		return def
	}
	return n
}

// parseEntryValue parses decimal or 0x-prefixed hexadecimal 32-bit values.
func parseEntryValue(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		s, base = rest, 16
	} else if rest, ok := strings.CutPrefix(s, "0X"); ok {
		s, base = rest, 16
	}
	n, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}
