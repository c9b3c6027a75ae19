package state

import "sync"

// Ledger is the set of item identifiers already processed. It only ever
// grows: an entry is never pruned, so an item can never be re-notified across
// the lifetime of the persisted state.
type Ledger struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewLedger creates empty ledger
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// Seen reports whether id was already processed
func (l *Ledger) Seen(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[id]
	return ok
}

// Mark records id as processed. Marking happens before notify delivery so a
// retry of the same cycle can never send a duplicate (at-most-once).
func (l *Ledger) Mark(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[id] = struct{}{}
}

// Len returns the number of recorded identifiers
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen)
}

// IDs returns all recorded identifiers
func (l *Ledger) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.seen))
	for id := range l.seen {
		ids = append(ids, id)
	}
	return ids
}

// Restore loads identifiers from a persisted snapshot
func (l *Ledger) Restore(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range ids {
		l.seen[id] = struct{}{}
	}
}
