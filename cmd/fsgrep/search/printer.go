package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Printer renders one FileResult into the single formatted block spec §4.4
// step 4 hands to the sink. Printer is a tagged-variant selection made once
// at orchestrator construction, per spec §9's re-architecture note (the
// teacher's sourcegraph service instead serializes protocol.FileMatch as
// JSON over the wire; a CLI grep tool's analog is picking one of the three
// human/machine-facing renderers below).
type Printer interface {
	Format(buf []byte, fr FileResult) string
}

// NewPrinter returns the Printer for the given output format.
func NewPrinter(output OutputFormat, colorsEnabled bool) Printer {
	switch output {
	case Piped:
		return pipedPrinter{}
	case HTML:
		return htmlPrinter{}
	default:
		return newPrettyPrinter(colorsEnabled)
	}
}

// prettyPrinter implements spec §4.8's Pretty variant: a blue path header,
// one "<line>: <text>" line per Match with red-wrapped hit spans, a blank
// line between files.
type prettyPrinter struct {
	path *color.Color
	hit  *color.Color
}

func newPrettyPrinter(enabled bool) *prettyPrinter {
	path := color.New(color.FgBlue)
	hit := color.New(color.FgRed)
	// When enabled, colors still follow color.NoColor, which fatih/color
	// sets when stdout is not a terminal.
	if !enabled {
		path.DisableColor()
		hit.DisableColor()
	}
	return &prettyPrinter{path: path, hit: hit}
}

func (p *prettyPrinter) Format(buf []byte, fr FileResult) string {
	var b strings.Builder
	b.WriteString(p.path.Sprint(fr.Path))
	b.WriteByte('\n')
	for _, m := range fr.Matches {
		b.WriteString(strconv.Itoa(m.LineNumber))
		b.WriteString(": ")
		b.WriteString(highlight(m.Line.Bytes(buf), m.Spans, p.hit.Sprint))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

// pipedPrinter implements spec §4.8/§6's Piped variant: exactly
// "path:line:text\n" per match, no colors, no headers, stable for
// downstream tools.
type pipedPrinter struct{}

func (pipedPrinter) Format(buf []byte, fr FileResult) string {
	var b strings.Builder
	for _, m := range fr.Matches {
		fmt.Fprintf(&b, "%s:%d:%s\n", fr.Path, m.LineNumber, m.Line.Bytes(buf))
	}
	return b.String()
}

// htmlPrinter implements spec §4.8's Html variant.
type htmlPrinter struct{}

func (htmlPrinter) Format(buf []byte, fr FileResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>%s</h3>\n<pre>\n", htmlEscape(fr.Path))
	for _, m := range fr.Matches {
		fmt.Fprintf(&b, "%d: %s\n", m.LineNumber, highlightHTML(m.Line.Bytes(buf), m.Spans))
	}
	b.WriteString("</pre>\n")
	return b.String()
}

// highlight wraps each span in line with wrap, leaving the rest of the line
// as plain (HTML-unescaped) text. Spans are assumed sorted and
// non-overlapping per spec §3/§4.3's invariants.
func highlight(line []byte, spans []Span, wrap func(...interface{}) string) string {
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		b.Write(line[prev:s.Start])
		b.WriteString(wrap(string(line[s.Start:s.End])))
		prev = s.End
	}
	b.Write(line[prev:])
	return b.String()
}

func highlightHTML(line []byte, spans []Span) string {
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		b.WriteString(htmlEscape(string(line[prev:s.Start])))
		b.WriteString(`<span class="hit">`)
		b.WriteString(htmlEscape(string(line[s.Start:s.End])))
		b.WriteString(`</span>`)
		prev = s.End
	}
	b.WriteString(htmlEscape(string(line[prev:])))
	return b.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return r.Replace(s)
}
