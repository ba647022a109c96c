package diag

import (
	"fmt"
	"sort"
	"strings"

	"modlink/internal/source"
)

type goldenDiagnostic struct {
	Label   string
	Path    string
	Line    uint32
	Column  uint32
	Message string
}

// FormatShortDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation: "<Kind> <path>:<line>:<col> <message>". With includePrev the
// previous-declaration span follows as a "prev" line, and notes as "note" lines.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet, includePrev bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	groups := make([][]goldenDiagnostic, 0, len(diags))
	for i := range diags {
		groups = append(groups, renderGolden(&diags[i], fs, includePrev))
	}
	// сортируем по первичной позиции, хвосты (prev/note) остаются за своей диагностикой
	sort.SliceStable(groups, func(i, j int) bool {
		gi, gj := groups[i][0], groups[j][0]
		if gi.Path != gj.Path {
			return gi.Path < gj.Path
		}
		if gi.Line != gj.Line {
			return gi.Line < gj.Line
		}
		if gi.Column != gj.Column {
			return gi.Column < gj.Column
		}
		return gi.Message < gj.Message
	})

	var b strings.Builder
	first := true
	for _, g := range groups {
		for _, d := range g {
			if !first {
				b.WriteByte('\n')
			}
			first = false
			fmt.Fprintf(&b, "%s %s:%d:%d %s", d.Label, d.Path, d.Line, d.Column, d.Message)
		}
	}
	return b.String()
}

func renderGolden(d *Diagnostic, fs *source.FileSet, includePrev bool) []goldenDiagnostic {
	r := Resolve(d, fs)
	var primary Location
	if len(r.Annotations) > 0 {
		primary = r.Annotations[0]
	}
	msg := sanitizeMessage(r.Message)
	if r.Hint != "" {
		msg += " (hint: " + sanitizeMessage(r.Hint) + ")"
	}
	out := []goldenDiagnostic{{
		Label:   r.Kind.String(),
		Path:    primary.ModulePath,
		Line:    primary.Line,
		Column:  primary.Column,
		Message: msg,
	}}
	if !includePrev {
		return out
	}
	if r.Prev != nil {
		out = append(out, goldenDiagnostic{
			Label:   "prev",
			Path:    r.Prev.ModulePath,
			Line:    r.Prev.Line,
			Column:  r.Prev.Column,
			Message: firstLine(r.Prev.Snippet),
		})
	}
	for _, n := range r.Notes {
		out = append(out, goldenDiagnostic{
			Label:   "note",
			Path:    n.Location.ModulePath,
			Line:    n.Location.Line,
			Column:  n.Location.Column,
			Message: sanitizeMessage(n.Msg),
		})
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.Join(strings.Fields(msg), " ")
}
