package diag

import (
	"modlink/internal/source"
)

// Location is a span resolved against the FileSet.
type Location struct {
	ModulePath string
	Line       uint32
	Column     uint32
	EndLine    uint32
	EndColumn  uint32
	Snippet    string
}

// ResolvedNote is a Note with its span resolved.
type ResolvedNote struct {
	Location Location
	Msg      string
}

// Rendered is the reporting-boundary view of a Diagnostic.
type Rendered struct {
	Kind        Kind
	Message     string
	Hint        string
	Annotations []Location
	Prev        *Location
	Notes       []ResolvedNote
}

// Resolve turns spans into module path, line, column and source snippet.
func Resolve(d *Diagnostic, fs *source.FileSet) Rendered {
	out := Rendered{
		Kind:        d.Kind,
		Message:     d.Message,
		Hint:        d.Hint,
		Annotations: make([]Location, 0, len(d.Annotations)),
	}
	for _, sp := range d.Annotations {
		out.Annotations = append(out.Annotations, Locate(fs, sp))
	}
	if d.Prev != nil {
		prev := Locate(fs, *d.Prev)
		out.Prev = &prev
	}
	for _, n := range d.Notes {
		out.Notes = append(out.Notes, ResolvedNote{Location: Locate(fs, n.Span), Msg: n.Msg})
	}
	return out
}

// Locate resolves a single span. Spans pointing outside fs yield a zero Location.
func Locate(fs *source.FileSet, sp source.Span) Location {
	if fs == nil || int(sp.File) >= fs.Len() {
		return Location{}
	}
	start, end := fs.Resolve(sp)
	return Location{
		ModulePath: fs.Get(sp.File).Path,
		Line:       start.Line,
		Column:     start.Col,
		EndLine:    end.Line,
		EndColumn:  end.Col,
		Snippet:    fs.Snippet(sp),
	}
}
