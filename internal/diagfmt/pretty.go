package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"husk/internal/diag"
	"husk/internal/source"
)

type palette struct {
	err, warn, info, code, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgCyan),
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

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty writes the diagnostics of bag in the order they are stored; call
// bag.Sort first for stable output. Each diagnostic is a header
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source lines around the primary span with the span
// underlined as ^~~~, then its notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	var sb strings.Builder
	for i, d := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		writeDiagnostic(&sb, p, fs, d, opts)
	}
	if rest := bag.Len() - len(items); rest > 0 {
		fmt.Fprintf(&sb, "\n... and %d more\n", rest)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeDiagnostic(sb *strings.Builder, p palette, fs *source.FileSet, d diag.Diagnostic, opts PrettyOpts) {
	f := fs.Get(d.Primary.File)
	start, end := fs.Resolve(d.Primary)
	fmt.Fprintf(sb, "%s:%d:%d: %s %s: %s\n",
		formatPath(fs, f, opts.PathMode), start.Line, start.Col,
		p.severity(d.Severity).Sprint(d.Severity), p.code.Sprint(d.Code.ID()), d.Message)
	writeSnippet(sb, p, f, start, end, opts.Context)
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := fs.Get(n.Span.File)
		ns, _ := fs.Resolve(n.Span)
		fmt.Fprintf(sb, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), formatPath(fs, nf, opts.PathMode), ns.Line, ns.Col, n.Msg)
	}
}

// writeSnippet prints context lines with a gutter and underlines the span
// on its first line. Columns are measured in display cells so wide runes
// keep the caret aligned.
func writeSnippet(sb *strings.Builder, p palette, f *source.File, start, end source.LineCol, context int) {
	first := int(start.Line) - context
	if first < 1 {
		first = 1
	}
	last := int(start.Line) + context
	if total := len(f.LineIdx) + 1; last > total {
		last = total
	}
	width := len(fmt.Sprint(last))
	for ln := first; ln <= last; ln++ {
		text := strings.ReplaceAll(f.GetLine(uint32(ln)), "\t", " ") //nolint:gosec // ln is a line number
		fmt.Fprintf(sb, "%s %s\n", p.gutter.Sprintf("%*d |", width, ln), text)
		if ln != int(start.Line) {
			continue
		}
		lead, span := underline(text, start, end)
		fmt.Fprintf(sb, "%s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), strings.Repeat(" ", lead), p.caret.Sprint(span))
	}
}

// underline returns the caret offset and the marker for a span starting on
// line text.
func underline(text string, start, end source.LineCol) (int, string) {
	col := int(start.Col) - 1
	if col > len(text) {
		col = len(text)
	}
	stop := len(text)
	if end.Line == start.Line {
		stop = min(int(end.Col)-1, len(text))
	}
	lead := runewidth.StringWidth(text[:col])
	cells := runewidth.StringWidth(text[col:max(stop, col)])
	if cells <= 1 {
		return lead, "^"
	}
	return lead, "^" + strings.Repeat("~", cells-1)
}
