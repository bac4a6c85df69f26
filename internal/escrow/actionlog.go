package escrow

// ActionLog is the append-only action sequence of a room. Fold status is not stored
// separately: it is reduced from the records on demand and the reduction is cached,
// so each record is inspected once.
type ActionLog struct {
	records []Action
	folded  map[Actor]struct{}
	reduced int
}

// NewActionLog returns an empty log.
func NewActionLog() *ActionLog {
	return &ActionLog{folded: make(map[Actor]struct{})}
}

// Append adds a record. Records are never modified or removed.
func (l *ActionLog) Append(a Action) {
	l.records = append(l.records, a)
}

// Len returns the number of records.
func (l *ActionLog) Len() int {
	return len(l.records)
}

// Records returns a copy of the log in submission order.
func (l *ActionLog) Records() []Action {
	out := make([]Action, len(l.records))
	copy(out, l.records)
	return out
}

// HasFolded reports whether actor has any Fold record.
func (l *ActionLog) HasFolded(actor Actor) bool {
	l.reduce()
	_, ok := l.folded[actor]
	return ok
}

// FoldedCount returns the number of distinct actors that have folded.
func (l *ActionLog) FoldedCount() int {
	l.reduce()
	return len(l.folded)
}

func (l *ActionLog) reduce() {
	for ; l.reduced < len(l.records); l.reduced++ {
		rec := l.records[l.reduced]
		if rec.Type == ActionFold {
			l.folded[rec.Player] = struct{}{}
		}
	}
}
