package diag

import "wlbind/internal/source"

// dedupKey ignores notes and candidates: two reports of the same problem at
// the same place are one problem.
type dedupKey struct {
	code  Code
	sev   Severity
	span  source.Span
	where Coords
	msg   string
}

// DedupReporter forwards each distinct diagnostic to next once. The parser
// and the structural validator share one per document, since both may flag
// the same malformed element.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil || r.next == nil {
		return
	}
	key := dedupKey{code: d.Code, sev: d.Severity, span: d.Primary, where: d.Where, msg: d.Message}
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	r.next.Report(d)
}
