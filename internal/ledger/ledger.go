// Package ledger keeps the ranked high score list.
package ledger

import (
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// MaxEntries bounds the ledger.
const MaxEntries = 10

// Ledger is a ranked, bounded list of scores backed by a Store. Storage
// failures are logged and never returned. Ledger is safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	store   Store
	logger  *log.Logger
	entries []Entry
}

// New returns an empty ledger. A nil logger uses the default logger.
func New(store Store, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.Default()
	}
	return &Ledger{store: store, logger: logger}
}

// Open returns a ledger loaded from store.
func Open(store Store, logger *log.Logger) *Ledger {
	l := New(store, logger)
	l.Load()
	return l
}

// Load replaces the in-memory list with the stored records. On a read error
// the ledger is left empty.
func (l *Ledger) Load() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	lines, err := l.store.Read()
	if err != nil {
		l.logger.Warn("failed to load scores", "err", err)
		return
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entry, err := ParseEntry(line)
		if err != nil {
			l.logger.Debug("keeping malformed score record", "err", err)
		}
		entries = append(entries, entry)
	}
	l.entries = entries
}

// Save writes the current list. A failed save keeps the in-memory list.
func (l *Ledger) Save() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.saveLocked()
}

// Add inserts entry, re-ranks, keeps the best MaxEntries and saves.
func (l *Ledger) Add(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	rank(l.entries)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
	l.saveLocked()
}

// Top returns a copy of the ranked entries, at most MaxEntries.
func (l *Ledger) Top() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.entries)
	if n > MaxEntries {
		n = MaxEntries
	}
	out := make([]Entry, n)
	copy(out, l.entries[:n])
	return out
}

func (l *Ledger) saveLocked() {
	lines := make([]string, len(l.entries))
	for i, e := range l.entries {
		lines[i] = e.String()
	}
	if err := l.store.Write(lines); err != nil {
		l.logger.Warn("failed to save scores", "err", err)
	}
}

// rank sorts the rankable entries among themselves. Entries that cannot be
// ranked stay in the slots they already hold.
func rank(entries []Entry) {
	var slots []int
	var ranked []Entry
	for i, e := range entries {
		if e.Rankable() {
			slots = append(slots, i)
			ranked = append(ranked, e)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return Compare(ranked[i], ranked[j]) < 0
	})
	for k, i := range slots {
		entries[i] = ranked[k]
	}
}
