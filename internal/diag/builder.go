package diag

import "modlink/internal/source"

// New builds a diagnostic anchored at primary.
func New(kind Kind, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Kind:        kind,
		Message:     msg,
		Annotations: []source.Span{primary},
	}
}

func (d Diagnostic) WithHint(hint string) Diagnostic {
	d.Hint = hint
	return d
}

// WithPrev records the previous (conflicting) declaration.
func (d Diagnostic) WithPrev(sp source.Span) Diagnostic {
	prev := sp
	d.Prev = &prev
	return d
}

func (d Diagnostic) WithAnnotation(sp source.Span) Diagnostic {
	d.Annotations = append(append([]source.Span(nil), d.Annotations...), sp)
	return d
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(append([]Note(nil), d.Notes...), Note{Span: sp, Msg: msg})
	return d
}
