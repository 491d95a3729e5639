package autosearch

import (
	"sync"

	"github.com/google/uuid"
)

// EventKind distinguishes the three lifecycle notifications the manager
// fires (§9 "listener fan-out").
type EventKind int

const (
	EventAddItem EventKind = iota
	EventUpdateItem
	EventRemoveItem
)

// Event is a point-in-time snapshot of an item, delivered outside any
// lock (§5). ID lets a subscriber correlate an event with log lines or
// downstream side effects it triggered.
type Event struct {
	ID   uuid.UUID
	Kind EventKind
	Item Item
}

// Subscriber receives events in subscription order. It must not block;
// a subscriber that needs to mutate item state must post its own work
// item rather than calling back synchronously into the manager (§9
// "lock reentrancy").
type Subscriber func(Event)

// EventBus is a multi-subscriber, subscription-ordered fan-out channel.
type EventBus struct {
	mu   sync.Mutex
	subs []Subscriber
}

// Subscribe registers fn and returns an unsubscribe function.
func (b *EventBus) Subscribe(fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := len(b.subs)
	b.subs = append(b.subs, fn)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if idx < len(b.subs) {
			b.subs[idx] = nil
		}
	}
}

// Publish delivers ev to every live subscriber in subscription order,
// stamping it with a fresh ID if the caller left one unset. Must never be
// called while holding the item-list lock.
func (b *EventBus) Publish(ev Event) {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}

	b.mu.Lock()
	subs := make([]Subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		if s != nil {
			s(ev)
		}
	}
}
