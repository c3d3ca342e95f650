package fsmkit

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/fsmkit/fsmkit/pkg/ring"
)

// Machine is a finite-state-machine runtime over a context payload of type C.
// It enforces transition constraints and guards, runs enter/exit effects in
// order, keeps a bounded history for rollback, and notifies listeners of
// every committed change and blocked attempt.
//
// A machine assumes a single logical thread of control: accessors are safe
// to call from any goroutine, but callers must not overlap To, Back, Set or
// Restore calls on the same instance. See the package documentation for the
// full concurrency contract.
type Machine[C any] struct {
	id        uuid.UUID
	value     string
	context   C
	states    map[string]State[C]
	order     []string // state names in first-registration order
	guards    map[string]Guard[C]
	history   *ring.Buffer[Snapshot[C]]
	listeners listenerList[C]
	clone     Cloner[C]
	mu        sync.RWMutex
}

// ID returns the machine's identity, assigned at construction. It appears on
// every event for log and stream correlation.
func (m *Machine[C]) ID() uuid.UUID {
	return m.id
}

// State returns the current state name.
func (m *Machine[C]) State() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value
}

// Context returns the current context value. Unlike Snapshot, the returned
// value shares reference-typed internals with the machine.
func (m *Machine[C]) Context() C {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.context
}

// Is reports whether the current state has the given name.
func (m *Machine[C]) Is(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value == name
}

// Meta returns the metadata registered for the named state and true, or nil
// and false when the state is unregistered or carries no metadata.
func (m *Machine[C]) Meta(name string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.states[name]
	if !ok || d.Meta == nil {
		return nil, false
	}
	return d.Meta, true
}

// When registers a state descriptor under the given name, replacing any
// prior descriptor while keeping the name's original registration order.
// Names referenced before registration are legal; an unregistered state
// simply has no effects or constraints.
func (m *Machine[C]) When(name string, s State[C]) *Machine[C] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.states[name]; !ok {
		m.order = append(m.order, name)
	}
	m.states[name] = s
	return m
}

// Can registers a guard gating transitions into the named state, replacing
// any prior guard. A nil guard removes the gate.
func (m *Machine[C]) Can(name string, g Guard[C]) *Machine[C] {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.guards[name] = g
	return m
}

// On subscribes a listener to all machine events and returns an idempotent
// unsubscribe function. Unsubscribing, even from inside a listener, never
// skips or double-notifies other listeners for the event being delivered.
func (m *Machine[C]) On(fn Listener[C]) func() {
	if fn == nil {
		return func() {}
	}
	return m.listeners.add(fn)
}

// Transitions returns the state names reachable as the next legal transition
// from the current state, in deterministic order: the current descriptor's
// To list in declared order when present, otherwise all other registered
// states in registration order. Either way, entries whose From constraint
// excludes the current state or whose guard rejects it are dropped, and the
// current state is never included.
func (m *Machine[C]) Transitions() []string {
	type candidate struct {
		name  string
		guard Guard[C]
	}

	m.mu.RLock()
	from := m.value
	current := Snapshot[C]{State: from, Context: m.context}

	pool := m.states[from].To
	if pool == nil {
		pool = m.order
	}

	candidates := make([]candidate, 0, len(pool))
	for _, name := range pool {
		if name == from {
			continue
		}
		if !m.states[name].From.allows(from) {
			continue
		}
		candidates = append(candidates, candidate{name: name, guard: m.guards[name]})
	}
	m.mu.RUnlock()

	// Guards run outside the lock so they may call machine accessors
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.guard != nil && !c.guard(current) {
			continue
		}
		names = append(names, c.name)
	}
	return names
}

// To attempts a transition into the target state, optionally updating the
// context. All checks evaluate against the pre-transition state, in order:
// the current descriptor's To list, the target's From constraint, then the
// target's guard. A rejected attempt is not an error: the state stays put, a
// transition event with the blocking reason is emitted, and To returns nil.
//
// A permitted transition pushes the pre-transition snapshot onto history,
// runs the current state's exit effect with the old context, applies the
// updates, commits the new state, runs the target's enter effect with the
// new context, and emits a committed transition event. Exit fully completes
// before enter starts. An effect error propagates unwrapped and aborts the
// remaining steps without rolling back what already ran.
func (m *Machine[C]) To(ctx context.Context, target string, updates ...Update[C]) error {
	m.mu.RLock()
	from := m.value
	fromContext := m.context
	fromState := m.states[from]
	targetState := m.states[target]
	guard := m.guards[target]
	m.mu.RUnlock()

	current := Snapshot[C]{State: from, Context: fromContext}

	switch {
	case fromState.To != nil && !slices.Contains(fromState.To, target):
		m.emitTransition(from, target, current, BlockedTo)
		return nil
	case !targetState.From.allows(from):
		m.emitTransition(from, target, current, BlockedFrom)
		return nil
	case guard != nil && !guard(current):
		m.emitTransition(from, target, current, BlockedGuard)
		return nil
	}

	m.mu.Lock()
	m.history.Push(Snapshot[C]{State: from, Context: m.clone(fromContext)})
	m.mu.Unlock()

	if fromState.Exit != nil {
		if err := fromState.Exit(ctx, fromContext); err != nil {
			return err
		}
	}

	next := fromContext
	for _, u := range updates {
		if u != nil {
			next = u(next)
		}
	}

	m.mu.Lock()
	m.value = target
	m.context = next
	m.mu.Unlock()

	if targetState.Enter != nil {
		if err := targetState.Enter(ctx, next); err != nil {
			return err
		}
	}

	m.emitTransition(from, target, Snapshot[C]{State: target, Context: next}, "")
	return nil
}

// Back rolls the machine back to the most recent history entry,
// unconditionally: no To/From constraints or guards are re-evaluated. With
// empty history Back is a silent no-op and emits nothing. Otherwise it runs
// the current state's exit effect, commits the popped snapshot, runs the
// restored state's enter effect with the restored context, and emits a
// committed transition event.
func (m *Machine[C]) Back(ctx context.Context) error {
	m.mu.Lock()
	prev, ok := m.history.Pop()
	if !ok {
		m.mu.Unlock()
		return nil
	}
	from := m.value
	fromContext := m.context
	fromState := m.states[from]
	prevState := m.states[prev.State]
	m.mu.Unlock()

	if fromState.Exit != nil {
		if err := fromState.Exit(ctx, fromContext); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.value = prev.State
	m.context = prev.Context
	m.mu.Unlock()

	if prevState.Enter != nil {
		if err := prevState.Enter(ctx, prev.Context); err != nil {
			return err
		}
	}

	m.emitTransition(from, prev.State, Snapshot[C]{State: prev.State, Context: prev.Context}, "")
	return nil
}

// Set mutates the context in place without changing state or touching
// history. It always succeeds and emits a plain state-change event.
func (m *Machine[C]) Set(updates ...Update[C]) *Machine[C] {
	m.mu.RLock()
	next := m.context
	m.mu.RUnlock()

	for _, u := range updates {
		if u != nil {
			next = u(next)
		}
	}

	m.mu.Lock()
	m.context = next
	value := m.value
	m.mu.Unlock()

	m.emitChange(Snapshot[C]{State: value, Context: next})
	return m
}

// Snapshot returns a detached deep copy of the current state and context.
func (m *Machine[C]) Snapshot() Snapshot[C] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot[C]{State: m.value, Context: m.clone(m.context)}
}

// Restore unconditionally overwrites the current state and context from the
// snapshot: no constraint or guard evaluation, no history push, no effects.
// The snapshot's context is deep-copied in, so the snapshot stays detached.
// Emits a plain state-change event.
func (m *Machine[C]) Restore(s Snapshot[C]) *Machine[C] {
	m.mu.Lock()
	m.value = s.State
	m.context = m.clone(s.Context)
	restored := Snapshot[C]{State: m.value, Context: m.context}
	m.mu.Unlock()

	m.emitChange(restored)
	return m
}

// History returns a detached copy of the history buffer, oldest first. The
// buffer never exceeds the machine's history capacity; on overflow the
// oldest entries were evicted first.
func (m *Machine[C]) History() []Snapshot[C] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := m.history.Items()
	out := make([]Snapshot[C], len(items))
	for i, s := range items {
		out[i] = Snapshot[C]{State: s.State, Context: m.clone(s.Context)}
	}
	return out
}

// ClearHistory empties the history buffer. It emits no event.
func (m *Machine[C]) ClearHistory() *Machine[C] {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history.Clear()
	return m
}

func (m *Machine[C]) emitTransition(from, to string, state Snapshot[C], blocked BlockReason) {
	m.listeners.notify(Event[C]{
		Machine: m.id,
		Kind:    KindTransition,
		From:    from,
		To:      to,
		State:   state,
		Blocked: blocked,
	})
}

func (m *Machine[C]) emitChange(state Snapshot[C]) {
	m.listeners.notify(Event[C]{
		Machine: m.id,
		Kind:    KindChange,
		State:   state,
	})
}
