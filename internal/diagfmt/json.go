package diagfmt

import (
	"encoding/json"
	"io"

	"wlbind/internal/diag"
	"wlbind/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// WhereJSON pins a diagnostic to protocol/interface/message/argument.
type WhereJSON struct {
	Protocol  string `json:"protocol,omitempty"`
	Interface string `json:"interface,omitempty"`
	Message   string `json:"message,omitempty"`
	Argument  string `json:"argument,omitempty"`
}

// CandidateJSON is one owner listed by an ambiguity diagnostic.
type CandidateJSON struct {
	Protocol   string `json:"protocol"`
	Module     string `json:"module"`
	ImportPath string `json:"import_path"`
	Source     string `json:"source"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity   string          `json:"severity"`
	Code       string          `json:"code"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Location   LocationJSON    `json:"location"`
	Where      *WhereJSON      `json:"where,omitempty"`
	Candidates []CandidateJSON `json:"candidates,omitempty"`
	Notes      []NoteJSON      `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{
		File:      formatPath(fs, span.File, pathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions && fs.Get(span.File) != nil {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}
	diagnostics := make([]DiagnosticJSON, 0, maxItems)

	for i := range maxItems {
		d := &items[i]

		diagJSON := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}
		if !d.Where.IsZero() {
			diagJSON.Where = &WhereJSON{
				Protocol:  d.Where.Protocol,
				Interface: d.Where.Interface,
				Message:   d.Where.Message,
				Argument:  d.Where.Argument,
			}
		}

		// кандидатов для неоднозначностей выводим всегда, если попросили или если это суть ошибки
		includeCandidates := opts.IncludeCandidates || d.Code == diag.ResAmbiguousInterface || d.Code == diag.ResAmbiguousEnumOwner
		if includeCandidates && len(d.Candidates) > 0 {
			diagJSON.Candidates = make([]CandidateJSON, len(d.Candidates))
			for j, c := range d.Candidates {
				diagJSON.Candidates[j] = CandidateJSON(c)
			}
		}

		includeNotes := opts.IncludeNotes || d.Code == diag.ObsTimings
		if includeNotes && len(d.Notes) > 0 {
			diagJSON.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				diagJSON.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}

		diagnostics = append(diagnostics, diagJSON)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Errors:      bag.ErrorCount(),
	}
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
