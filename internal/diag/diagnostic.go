package diag

import (
	"modlink/internal/source"
)

// Note is a secondary span with its own message ("missing `transfer(address,uint256)`").
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a structured error record. Text is only assembled at the
// reporting boundary (see Resolve and package diagfmt).
type Diagnostic struct {
	Kind    Kind
	Message string
	Hint    string
	// Annotations[0] is the offending node; further entries add context.
	Annotations []source.Span
	// Prev points at the earlier conflicting declaration, if any.
	Prev  *source.Span
	Notes []Note
}

// Primary returns the first annotation or the zero span.
func (d *Diagnostic) Primary() source.Span {
	if d == nil || len(d.Annotations) == 0 {
		return source.Span{}
	}
	return d.Annotations[0]
}

// Error makes a Diagnostic usable where an error is expected.
func (d *Diagnostic) Error() string {
	if d == nil {
		return ""
	}
	return d.Kind.String() + ": " + d.Message
}
