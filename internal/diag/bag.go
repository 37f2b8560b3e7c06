package diag

import (
	"cmp"
	"slices"
	"sync"
)

// Bag collects diagnostics up to a limit. It is safe for concurrent use.
type Bag struct {
	mu      sync.Mutex
	items   []Diagnostic
	max     int
	dropped int
	// dropped diagnostics of error severity; HasErrors must still see them
	droppedErrors int
}

// NewBag returns a bag holding at most max diagnostics; max <= 0 means no limit.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add stores d. It returns false when the limit has been reached.
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		if d.Severity >= SevError {
			b.droppedErrors++
		}
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Dropped is the number of diagnostics refused because of the limit.
func (b *Bag) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.droppedErrors > 0 {
		return true
	}
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the stored diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.items)
}

// Merge appends other's diagnostics, still honouring the limit.
func (b *Bag) Merge(other *Bag) {
	if other == nil || other == b {
		return
	}
	for _, d := range other.Items() {
		b.Add(d)
	}
	other.mu.Lock()
	dropped, droppedErrors := other.dropped, other.droppedErrors
	other.mu.Unlock()
	b.mu.Lock()
	b.dropped += dropped
	b.droppedErrors += droppedErrors
	b.mu.Unlock()
}

// Sort orders by path, line, severity (errors first), then code.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		if c := cmp.Compare(x.Pos.Path, y.Pos.Path); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Pos.Line, y.Pos.Line); c != 0 {
			return c
		}
		if c := cmp.Compare(y.Severity, x.Severity); c != 0 {
			return c
		}
		return cmp.Compare(x.Code, y.Code)
	})
}
