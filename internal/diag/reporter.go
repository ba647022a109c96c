package diag

import (
	"sync"

	"modlink/internal/source"
)

// Reporter - минимальный контракт получения диагностик от фаз.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, kind Kind, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(kind, primary, msg)}
}

// WithHint sets the remediation hint.
func (b *ReportBuilder) WithHint(hint string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Hint = hint
	return b
}

// WithPrev attaches the previous declaration span.
func (b *ReportBuilder) WithPrev(sp source.Span) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithPrev(sp)
	return b
}

// WithNote appends a note to diagnostic.
func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Notes = append(b.diag.Notes, Note{Span: sp, Msg: msg})
	return b
}

// Emit sends diagnostic to underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

// Diagnostic returns accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter - адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// SyncReporter serialises Report calls; used when modules of one batch are checked in parallel.
type SyncReporter struct {
	mu   sync.Mutex
	next Reporter
}

// NewSyncReporter wraps next with a mutex.
func NewSyncReporter(next Reporter) *SyncReporter {
	return &SyncReporter{next: next}
}

func (r *SyncReporter) Report(d Diagnostic) {
	if r == nil || r.next == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next.Report(d)
}

// FirstReporter remembers the first diagnostic it sees and forwards everything.
type FirstReporter struct {
	First *Diagnostic
	next  Reporter
}

// NewFirstReporter returns a reporter that records the first diagnostic.
func NewFirstReporter(next Reporter) *FirstReporter {
	return &FirstReporter{next: next}
}

func (r *FirstReporter) Report(d Diagnostic) {
	if r.First == nil {
		first := d
		r.First = &first
	}
	if r.next != nil {
		r.next.Report(d)
	}
}
