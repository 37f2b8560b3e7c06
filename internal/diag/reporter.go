package diag

// Reporter is the minimal contract for emitting diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter stores into a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// ReportError is a shortcut for an error without notes.
func ReportError(r Reporter, code Code, pos Pos, msg string) {
	if r != nil {
		r.Report(NewError(code, pos, msg))
	}
}

// ReportWarning is a shortcut for a warning without notes.
func ReportWarning(r Reporter, code Code, pos Pos, msg string) {
	if r != nil {
		r.Report(New(SevWarning, code, pos, msg))
	}
}

type dedupKey struct {
	code Code
	sev  Severity
	pos  Pos
	msg  string
}

// DedupReporter forwards each distinct (code, severity, position, message)
// once. It is not safe for concurrent use.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	key := dedupKey{code: d.Code, sev: d.Severity, pos: d.Pos, msg: d.Message}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(d)
	}
}
