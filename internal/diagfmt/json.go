package diagfmt

import (
	"encoding/json"
	"io"

	"modlink/internal/diag"
	"modlink/internal/source"
)

// LocationJSON is one annotated span: module path, position and the exact source text.
type LocationJSON struct {
	ModulePath string `json:"module_path"`
	Line       uint32 `json:"line"`
	Column     uint32 `json:"column"`
	EndLine    uint32 `json:"end_line"`
	EndColumn  uint32 `json:"end_column"`
	Source     string `json:"source_text"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Kind            string         `json:"kind"`
	Code            string         `json:"code"`
	Message         string         `json:"message"`
	Hint            string         `json:"hint,omitempty"`
	Annotations     []LocationJSON `json:"annotations"`
	PrevDeclaration *LocationJSON  `json:"prev_declaration,omitempty"`
	Notes           []NoteJSON     `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(fs *source.FileSet, sp source.Span, mode PathMode) LocationJSON {
	loc := diag.Locate(fs, sp)
	return LocationJSON{
		ModulePath: displayPath(fs, sp, loc, mode),
		Line:       loc.Line,
		Column:     loc.Column,
		EndLine:    loc.EndLine,
		EndColumn:  loc.EndColumn,
		Source:     loc.Snippet,
	}
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	diagnostics := make([]DiagnosticJSON, 0, len(items))
	for i := range items {
		d := &items[i]
		out := DiagnosticJSON{
			Kind:        d.Kind.String(),
			Code:        d.Kind.ID(),
			Message:     d.Message,
			Hint:        d.Hint,
			Annotations: make([]LocationJSON, 0, len(d.Annotations)),
		}
		for _, sp := range d.Annotations {
			out.Annotations = append(out.Annotations, makeLocation(fs, sp, opts.PathMode))
		}
		if d.Prev != nil {
			prev := makeLocation(fs, *d.Prev, opts.PathMode)
			out.PrevDeclaration = &prev
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: makeLocation(fs, n.Span, opts.PathMode)})
			}
		}
		diagnostics = append(diagnostics, out)
	}
	return DiagnosticsOutput{Diagnostics: diagnostics, Count: len(diagnostics)}
}

// JSON форматирует диагностики в JSON формат.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}

// Short writes the single-line-per-entry format shared with golden tests.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, withPrev bool) error {
	out := diag.FormatShortDiagnostics(bag.Items(), fs, withPrev)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
