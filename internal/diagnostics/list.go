package diagnostics

// List collects diagnostics in discovery order, deduplicating repeats
// of the same code at the same position. A capacity of zero means
// unbounded.
type List struct {
	max     int
	seen    map[string]struct{}
	items   []*DiagnosticError
	dropped int
}

func NewList(max int) *List {
	return &List{max: max, seen: make(map[string]struct{})}
}

// Add records the diagnostic. It reports false when the diagnostic
// was a duplicate or the list is at capacity.
func (l *List) Add(err *DiagnosticError) bool {
	if err == nil {
		return false
	}
	key := err.Key()
	if _, ok := l.seen[key]; ok {
		return false
	}
	if l.max > 0 && len(l.items) >= l.max {
		l.dropped++
		return false
	}
	l.seen[key] = struct{}{}
	l.items = append(l.items, err)
	return true
}

// AddAll records every diagnostic in order.
func (l *List) AddAll(errs []*DiagnosticError) {
	for _, err := range errs {
		l.Add(err)
	}
}

// Items returns the recorded diagnostics in discovery order.
func (l *List) Items() []*DiagnosticError { return l.items }

func (l *List) Len() int { return len(l.items) }

func (l *List) HasErrors() bool { return len(l.items) > 0 }

// Dropped reports how many diagnostics were discarded once the list
// reached capacity.
func (l *List) Dropped() int { return l.dropped }
