package service

import "sync"

// ticketLocks serializes read-modify-write cycles per ticket id. The audit
// trail is embedded in the ticket row and written back whole, so two
// concurrent writers to the same ticket would otherwise lose appends.
type ticketLocks struct {
	mu      sync.Mutex
	entries map[int64]*ticketLockEntry
}

type ticketLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newTicketLocks() *ticketLocks {
	return &ticketLocks{entries: make(map[int64]*ticketLockEntry)}
}

// Lock acquires the per-ticket mutex, creating it on first use.
func (l *ticketLocks) Lock(id int64) {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &ticketLockEntry{}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

// Unlock releases the per-ticket mutex and frees it once unreferenced.
func (l *ticketLocks) Unlock(id int64) {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if ok {
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, id)
		}
	}
	l.mu.Unlock()

	if ok {
		entry.mu.Unlock()
	}
}
