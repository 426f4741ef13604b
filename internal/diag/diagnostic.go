package diag

import (
	"strings"

	"wlbind/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Coords pins a diagnostic to the corpus element that produced it.
// Empty fields mean "not applicable at this level".
type Coords struct {
	Protocol  string
	Interface string
	Message   string
	Argument  string
}

// IsZero reports whether no coordinate is set.
func (c Coords) IsZero() bool {
	return c == Coords{}
}

// String renders the coordinates as protocol::interface.message(argument).
func (c Coords) String() string {
	var b strings.Builder
	b.WriteString(c.Protocol)
	if c.Interface != "" {
		b.WriteString("::")
		b.WriteString(c.Interface)
	}
	if c.Message != "" {
		b.WriteByte('.')
		b.WriteString(c.Message)
	}
	if c.Argument != "" {
		b.WriteByte('(')
		b.WriteString(c.Argument)
		b.WriteByte(')')
	}
	return b.String()
}

// Candidate is one surviving owner listed by an ambiguity diagnostic.
type Candidate struct {
	Protocol   string
	Module     string
	ImportPath string
	Source     string
}

type Diagnostic struct {
	Severity   Severity
	Code       Code
	Message    string
	Primary    source.Span
	Where      Coords
	Candidates []Candidate
	Notes      []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithWhere(where Coords) Diagnostic {
	d.Where = where
	return d
}

func (d Diagnostic) WithCandidates(cands ...Candidate) Diagnostic {
	d.Candidates = append(d.Candidates, cands...)
	return d
}
