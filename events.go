package fsmkit

import (
	"sync"

	"github.com/google/uuid"
)

// EventKind distinguishes the two notification shapes a machine emits.
type EventKind string

const (
	// KindChange marks a plain state-change event from Set or Restore.
	KindChange EventKind = "change"
	// KindTransition marks a transition event from To or Back, committed or
	// blocked.
	KindTransition EventKind = "transition"
)

// BlockReason classifies which rule rejected a transition attempt.
type BlockReason string

const (
	// BlockedTo means the current state's To list does not include the target.
	BlockedTo BlockReason = "to"
	// BlockedFrom means the target's From constraint excludes the current state.
	BlockedFrom BlockReason = "from"
	// BlockedGuard means the target's guard rejected the current state.
	BlockedGuard BlockReason = "guard"
)

// Event is delivered synchronously to every listener on committed state or
// context changes and on blocked transition attempts.
//
// From and To are set on transition events only. State carries the machine's
// state after the operation; for blocked attempts it is the unchanged
// pre-attempt state. State is a value copy sharing reference-typed context
// internals with the machine, unlike the detached copies Snapshot returns.
type Event[C any] struct {
	Machine uuid.UUID
	Kind    EventKind
	From    string
	To      string
	State   Snapshot[C]
	Blocked BlockReason
}

// Listener observes machine events. Listeners run synchronously on the
// calling goroutine, in registration order.
type Listener[C any] func(Event[C])

type listenerEntry[C any] struct {
	id uint64
	fn Listener[C]
}

// listenerList keeps listeners in registration order and tolerates
// unsubscribes that happen while a notification is being delivered.
type listenerList[C any] struct {
	entries []listenerEntry[C]
	nextID  uint64
	mu      sync.Mutex
}

// add registers fn and returns an idempotent remove function.
func (l *listenerList[C]) add(fn Listener[C]) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, listenerEntry[C]{id: id, fn: fn})

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()

		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

// notify delivers the event to every listener registered at the time of the
// call. Iteration runs over a private copy, so a listener unsubscribing
// itself or others mid-notification never skips or duplicates deliveries.
func (l *listenerList[C]) notify(e Event[C]) {
	l.mu.Lock()
	current := make([]listenerEntry[C], len(l.entries))
	copy(current, l.entries)
	l.mu.Unlock()

	for _, entry := range current {
		entry.fn(e)
	}
}
