package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"modlink/internal/diag"
	"modlink/internal/source"
)

type palette struct {
	kind   *color.Color
	path   *color.Color
	gutter *color.Color
	caret  *color.Color
	prev   *color.Color
	hint   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		kind:   color.New(color.FgRed, color.Bold),
		path:   color.New(color.FgBlue),
		gutter: color.New(color.FgBlue, color.Bold),
		caret:  color.New(color.FgRed, color.Bold),
		prev:   color.New(color.FgYellow),
		hint:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.kind, p.path, p.gutter, p.caret, p.prev, p.hint} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждой диагностики печатает заголовок "<Kind>: <Message>", затем
// текущий спан с подчёркиванием ^^^, затем спан предыдущего объявления
// (если есть), заметки и подсказку.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	pal := newPalette(opts.Color)
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}
	for i := range items {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := prettyOne(w, &items[i], fs, opts, pal); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) error {
	var b strings.Builder
	b.WriteString(pal.kind.Sprint(d.Kind.String()))
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteByte('\n')

	for i, sp := range d.Annotations {
		label := ""
		if i > 0 {
			label = "also here"
		}
		writeExcerpt(&b, fs, sp, label, opts.PathMode, pal, pal.caret)
	}
	if d.Prev != nil {
		writeExcerpt(&b, fs, *d.Prev, "previous declaration", opts.PathMode, pal, pal.prev)
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			writeExcerpt(&b, fs, n.Span, "note: "+n.Msg, opts.PathMode, pal, pal.prev)
		}
	}
	if d.Hint != "" {
		b.WriteString("  ")
		b.WriteString(pal.hint.Sprint("hint: "))
		b.WriteString(d.Hint)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeExcerpt(b *strings.Builder, fs *source.FileSet, sp source.Span, label string, mode PathMode, pal palette, caret *color.Color) {
	loc := diag.Locate(fs, sp)
	if loc.Line == 0 {
		return
	}
	b.WriteString("  ")
	if label != "" {
		b.WriteString(label)
		b.WriteByte(' ')
	}
	b.WriteString(pal.gutter.Sprint("--> "))
	b.WriteString(pal.path.Sprintf("%s:%d:%d", displayPath(fs, sp, loc, mode), loc.Line, loc.Column))
	b.WriteByte('\n')

	line := fs.Get(sp.File).GetLine(loc.Line)
	num := strconv.FormatUint(uint64(loc.Line), 10)
	pad := strings.Repeat(" ", len(num))

	fmt.Fprintf(b, " %s %s\n", pad, pal.gutter.Sprint("|"))
	fmt.Fprintf(b, " %s %s %s\n", pal.gutter.Sprint(num), pal.gutter.Sprint("|"), line)

	// ширина подчёркивания считается в колонках терминала, а не в байтах
	col := int(loc.Column) - 1
	if col > len(line) {
		col = len(line)
	}
	lead := runewidth.StringWidth(line[:col])
	marked := line[col:]
	if loc.EndLine == loc.Line && int(loc.EndColumn)-1 <= len(line) && loc.EndColumn > loc.Column {
		marked = line[col : int(loc.EndColumn)-1]
	}
	width := max(runewidth.StringWidth(marked), 1)
	fmt.Fprintf(b, " %s %s %s%s\n", pad, pal.gutter.Sprint("|"), strings.Repeat(" ", lead), caret.Sprint(strings.Repeat("^", width)))
}
