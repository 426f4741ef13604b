package registry

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// isVersionSegment reports whether seg is "v" followed only by digits.
func isVersionSegment(seg string) bool {
	if len(seg) < 2 || seg[0] != 'v' {
		return false
	}
	for i := 1; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return false
		}
	}
	return true
}

// StripVersion drops a trailing version segment ("_v3") from name.
// A name consisting of the version segment alone is returned unchanged.
func StripVersion(name string) string {
	i := strings.LastIndexByte(name, '_')
	if i <= 0 || !isVersionSegment(name[i+1:]) {
		return name
	}
	return name[:i]
}

// ModuleName is the normalized module name of a protocol.
func ModuleName(protocol string) string {
	return StripVersion(protocol)
}

// commonPrefix returns the longest run of leading underscore segments shared
// by every name, with a trailing version segment dropped.
func commonPrefix(names []string) string {
	if len(names) == 0 {
		return ""
	}
	common := strings.Split(names[0], "_")
	for _, name := range names[1:] {
		segs := strings.Split(name, "_")
		n := 0
		for n < len(common) && n < len(segs) && common[n] == segs[n] {
			n++
		}
		common = common[:n]
		if n == 0 {
			return ""
		}
	}
	if len(common) > 1 && isVersionSegment(common[len(common)-1]) {
		common = common[:len(common)-1]
	}
	return strings.Join(common, "_")
}

// Sanitize turns s into a lower-case identifier made of ASCII letters, digits
// and single underscores. Accented letters fold to their base letter.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range norm.NFKD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		r = unicode.ToLower(r)
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	out := b.String()
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}
