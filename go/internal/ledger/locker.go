package ledger

import "sync"

// Locker serializes ledger read-modify-write per encounter
type Locker struct {
	mu    sync.Mutex
	locks map[EncounterID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewLocker creates a new per-encounter locker
func NewLocker() *Locker {
	return &Locker{
		locks: make(map[EncounterID]*lockEntry),
	}
}

// Lock blocks until the encounter's lock is held and returns its release func.
// Entries are dropped once no goroutine holds or waits on them.
func (l *Locker) Lock(id EncounterID) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &lockEntry{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// size reports how many encounters currently have a held or pending lock
func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
