package source

import "fmt"

// Span is a half-open byte range of one document. The zero Span means "no
// location": diagnostics about the corpus as a whole carry it.
type Span struct {
	File  FileID
	Start uint32 // включительно
	End   uint32 // не включительно
}

func (s Span) IsZero() bool { return s == Span{} }

func (s Span) Len() uint32 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Cover grows s to include other; spans of another file leave s unchanged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	s.Start = min(s.Start, other.Start)
	s.End = max(s.End, other.End)
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("file#%d[%d:%d)", s.File, s.Start, s.End)
}
