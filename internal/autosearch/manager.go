package autosearch

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// Manager owns the single logical item collection (§5). The item slice
// and its write path are guarded by mu; a secondary xsync.Map gives
// lock-free uniqueness lookups on search_string without contending with
// the scheduler's round-robin advance, which only ever needs the main
// lock (§5 expansion).
type Manager struct {
	mu    sync.RWMutex
	items []Item

	searchStrings *xsync.Map[string, Token]

	Events EventBus
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{searchStrings: xsync.NewMap[string, Token]()}
}

// NextToken draws a token uniformly from the full 32-bit space and
// retries on collision against the current item set (§9 Open Question 3
// — resolved away from the original's ten-value randInt range).
func (m *Manager) NextToken() Token {
	for {
		tok := Token(rand.Uint32())
		if tok == 0 {
			continue
		}
		if _, exists := m.findLocked(tok); !exists {
			return tok
		}
	}
}

// findLocked returns the index of the item with the given token. Callers
// must hold mu (read or write).
func (m *Manager) findLocked(tok Token) (int, bool) {
	for i := range m.items {
		if m.items[i].Token == tok {
			return i, true
		}
	}
	return 0, false
}

// ExistsSearchString reports whether a given search string is already
// registered, without taking the main lock.
func (m *Manager) ExistsSearchString(s string) bool {
	_, ok := m.searchStrings.Load(s)
	return ok
}

// Add registers a new item, assigning a token if it does not already
// have one. Returns ErrDuplicateSearchString if the search string is
// already in use (§3, §7).
func (m *Manager) Add(item Item) (Token, error) {
	m.mu.Lock()
	if _, dup := m.searchStrings.Load(item.SearchString); dup {
		m.mu.Unlock()
		return 0, fmt.Errorf("%w: %q", ErrDuplicateSearchString, item.SearchString)
	}
	if item.Token == 0 {
		item.Token = m.NextToken()
	}
	if item.BundleTokens == nil {
		item.BundleTokens = make(map[string]struct{})
	}
	m.items = append(m.items, item)
	m.searchStrings.Store(item.SearchString, item.Token)
	snapshot := item
	m.mu.Unlock()

	m.Events.Publish(Event{Kind: EventAddItem, Item: snapshot})
	return snapshot.Token, nil
}

// Update applies mutate to the item identified by tok under the write
// lock, then publishes UpdateItem outside the lock (§5: "status mutations
// ... take the write lock only for the assignment, then emit the event
// without the lock"). If mutate changes SearchString, the uniqueness
// index is checked and returns ErrDuplicateSearchString on conflict; the
// item is left unmodified in that case.
func (m *Manager) Update(tok Token, mutate func(*Item)) (Item, error) {
	m.mu.Lock()
	idx, ok := m.findLocked(tok)
	if !ok {
		m.mu.Unlock()
		return Item{}, ErrNotFound
	}
	before := m.items[idx]
	candidate := before
	mutate(&candidate)
	if candidate.SearchString != before.SearchString {
		if _, dup := m.searchStrings.Load(candidate.SearchString); dup {
			m.mu.Unlock()
			return Item{}, fmt.Errorf("%w: %q", ErrDuplicateSearchString, candidate.SearchString)
		}
		m.searchStrings.Delete(before.SearchString)
		m.searchStrings.Store(candidate.SearchString, candidate.Token)
	}
	m.items[idx] = candidate
	snapshot := candidate
	m.mu.Unlock()

	m.Events.Publish(Event{Kind: EventUpdateItem, Item: snapshot})
	return snapshot, nil
}

// Remove deletes the item identified by tok. It reports the removed
// item's former index, used by the scheduler to keep its cursor from
// skipping unvisited items (§4.E invariants).
func (m *Manager) Remove(tok Token) (removedIndex int, ok bool) {
	m.mu.Lock()
	idx, found := m.findLocked(tok)
	if !found {
		m.mu.Unlock()
		return 0, false
	}
	removed := m.items[idx]
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	m.searchStrings.Delete(removed.SearchString)
	m.mu.Unlock()

	m.Events.Publish(Event{Kind: EventRemoveItem, Item: removed})
	return idx, true
}

// Get returns a copy of the item identified by tok.
func (m *Manager) Get(tok Token) (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.findLocked(tok)
	if !ok {
		return Item{}, false
	}
	return m.items[idx], true
}

// Snapshot returns a copy of every item, in insertion order, for
// read-only enumeration (persistence, result matching) (§5).
func (m *Manager) Snapshot() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Len returns the current item count.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// ReplaceAll atomically swaps the entire item set, used by Store.Load on
// startup. It does not publish per-item events.
func (m *Manager) ReplaceAll(items []Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make([]Item, len(items))
	copy(m.items, items)
	m.searchStrings = xsync.NewMap[string, Token]()
	for _, it := range m.items {
		m.searchStrings.Store(it.SearchString, it.Token)
	}
}
