package diag

import (
	"fmt"

	"github.com/teranos/minigen/decl"
)

// Reporter receives diagnostics. Implementations: BagReporter, DedupReporter,
// MultiReporter, ReporterFunc, NopReporter.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// Errorf reports an ERROR diagnostic.
func Errorf(r Reporter, code Code, loc decl.Location, format string, args ...any) {
	report(r, SevError, code, loc, format, args...)
}

// Warnf reports a WARNING diagnostic.
func Warnf(r Reporter, code Code, loc decl.Location, format string, args ...any) {
	report(r, SevWarning, code, loc, format, args...)
}

// Infof reports an INFO diagnostic.
func Infof(r Reporter, code Code, loc decl.Location, format string, args ...any) {
	report(r, SevInfo, code, loc, format, args...)
}

func report(r Reporter, sev Severity, code Code, loc decl.Location, format string, args ...any) {
	if r == nil {
		return
	}
	r.Report(New(sev, code, loc, format, args...))
}

// ReportBuilder accumulates diagnostic details before emitting to Reporter.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
	emitted  bool
}

// NewReportBuilder constructs a builder bound to Reporter.
func NewReportBuilder(r Reporter, sev Severity, code Code, loc decl.Location, msg string) *ReportBuilder {
	return &ReportBuilder{
		reporter: r,
		diag: Diagnostic{
			Severity: sev,
			Code:     code,
			Message:  msg,
			Location: loc,
		},
	}
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, loc decl.Location, format string, args ...any) *ReportBuilder {
	return NewReportBuilder(r, SevError, code, loc, fmt.Sprintf(format, args...))
}

// WithSubject records the unit key or declaration identity.
func (b *ReportBuilder) WithSubject(subject string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag.Subject = subject
	return b
}

// WithNote appends a note to the diagnostic.
func (b *ReportBuilder) WithNote(loc decl.Location, msg string) *ReportBuilder {
	if b == nil {
		return nil
	}
	b.diag = b.diag.WithNote(loc, msg)
	return b
}

// Emit sends the diagnostic to the underlying reporter exactly once.
func (b *ReportBuilder) Emit() {
	if b == nil || b.emitted {
		return
	}
	if b.reporter != nil {
		b.reporter.Report(b.diag)
	}
	b.emitted = true
}

// Diagnostic returns the accumulated diagnostic without emitting.
func (b *ReportBuilder) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.diag
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// MultiReporter fans every diagnostic out to all reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

type dedupKey struct {
	code Code
	sev  Severity
	loc  decl.Location
	msg  string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, location and message.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil {
		return
	}
	key := dedupKey{code: d.Code, sev: d.Severity, loc: d.Location, msg: d.Message}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
