package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"wlbind/internal/diag"
	"wlbind/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info *color.Color
	code, gutter    *color.Color
	caret, note     *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем кандидатов и Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	items := bag.Items()
	for i := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &items[i], fs, opts, p)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		prettyLocation(fs, d.Primary, opts.PathMode),
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()),
		d.Message,
	)
	if opts.ShowWhere && !d.Where.IsZero() {
		fmt.Fprintf(w, "  %s %s\n", p.gutter.Sprint("-->"), d.Where.String())
	}
	writeExcerpt(w, fs, d.Primary, opts, p)

	// кандидаты печатаются всегда для неоднозначных ссылок
	showCandidates := opts.ShowCandidates || d.Code == diag.ResAmbiguousInterface || d.Code == diag.ResAmbiguousEnumOwner
	if showCandidates {
		for _, c := range d.Candidates {
			fmt.Fprintf(w, "  %s protocol=%s module=%s import=%s source=%s\n",
				p.note.Sprint("candidate:"), c.Protocol, c.Module, c.ImportPath, c.Source)
		}
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), prettyLocation(fs, n.Span, opts.PathMode), n.Msg)
		}
	}
}

func prettyLocation(fs *source.FileSet, span source.Span, mode PathMode) string {
	if fs == nil || fs.Get(span.File) == nil {
		return "-"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs, span.File, mode), start.Line, start.Col)
}

func writeExcerpt(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts, p palette) {
	if fs == nil {
		return
	}
	f := fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return
	}
	ctx := uint32(max(opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	lines, err := safecast.Conv[uint32](len(f.LineIdx) + 1)
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	last := min(start.Line+ctx, lines)
	gutterWidth := len(strconv.FormatUint(uint64(last), 10))
	blank := strings.Repeat(" ", gutterWidth)

	for ln := first; ln <= last; ln++ {
		text := expandTabs(f.GetLine(ln))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "…")
		}
		fmt.Fprintf(w, " %s %s %s\n", p.gutter.Sprintf("%*d", gutterWidth, ln), p.gutter.Sprint("|"), text)
		if ln != start.Line {
			continue
		}
		raw := f.GetLine(ln)
		pad, width := caretExtent(raw, start, end)
		fmt.Fprintf(w, " %s %s %s%s\n", blank, p.gutter.Sprint("|"), strings.Repeat(" ", pad), p.caret.Sprint(underline(width)))
	}
}

// caretExtent returns the display column and width of the span on its first line.
func caretExtent(line string, start, end source.LineCol) (pad, width int) {
	col := clampCol(line, start.Col)
	pad = runewidth.StringWidth(expandTabs(line[:col]))
	stop := len(line)
	if end.Line == start.Line {
		stop = clampCol(line, end.Col)
	}
	if stop > col {
		// ширина подчёркивания считается с учётом табов слева
		width = runewidth.StringWidth(expandTabs(line[:stop])) - pad
	}
	return pad, max(width, 1)
}

func clampCol(line string, col uint32) int {
	if col == 0 {
		return 0
	}
	return min(int(col-1), len(line))
}

func underline(width int) string {
	return "^" + strings.Repeat("~", width-1)
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	cells := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - cells%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			cells += n
			continue
		}
		b.WriteRune(r)
		cells += runewidth.RuneWidth(r)
	}
	return b.String()
}
