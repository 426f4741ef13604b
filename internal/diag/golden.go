package diag

import (
	"fmt"
	"strings"

	"wlbind/internal/source"
)

// FormatShortDiagnostics renders diagnostics one per line in bag order:
//
//	<severity> <CODE> <path>:<line>:<col> <protocol::iface.msg(arg)> <message>
//
// Ambiguity candidates follow on indented lines. The output is stable for a
// stable bag, which makes it suitable for golden comparisons.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	for i := range diags {
		d := &diags[i]
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s", d.Severity.Label(), d.Code.ID(), location(fs, d.Primary))
		if !d.Where.IsZero() {
			b.WriteByte(' ')
			b.WriteString(d.Where.String())
		}
		b.WriteByte(' ')
		b.WriteString(sanitizeMessage(d.Message))
		for _, c := range d.Candidates {
			fmt.Fprintf(&b, "\n  candidate protocol=%s module=%s import=%s source=%s", c.Protocol, c.Module, c.ImportPath, c.Source)
		}
		if includeNotes {
			for _, note := range d.Notes {
				fmt.Fprintf(&b, "\n  note %s %s", location(fs, note.Span), sanitizeMessage(note.Msg))
			}
		}
	}
	return b.String()
}

func location(fs *source.FileSet, span source.Span) string {
	if fs == nil || fs.Get(span.File) == nil {
		return "-"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", fs.DisplayPath(span.File), start.Line, start.Col)
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
