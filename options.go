package fsmkit

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fsmkit/fsmkit/pkg/ring"
)

// DefaultHistoryCapacity is the history buffer size used unless
// WithHistoryCapacity overrides it.
const DefaultHistoryCapacity = 10

// Option configures a machine during construction.
type Option[C any] func(*options[C])

type namedState[C any] struct {
	name  string
	state State[C]
}

type namedGuard[C any] struct {
	name  string
	guard Guard[C]
}

type options[C any] struct {
	capacity  int
	cloner    Cloner[C]
	logger    *slog.Logger
	states    []namedState[C]
	guards    []namedGuard[C]
	listeners []Listener[C]
}

// New creates a machine starting at the initial state with the given
// context. The initial state needs no registration; descriptors and guards
// can be supplied here via options or registered later with When and Can,
// in any order, interleaved with transitions.
func New[C any](initial string, data C, opts ...Option[C]) *Machine[C] {
	options := &options[C]{
		capacity: DefaultHistoryCapacity,
		cloner:   defaultClone[C],
	}

	for _, opt := range opts {
		opt(options)
	}

	m := &Machine[C]{
		id:      uuid.New(),
		value:   initial,
		context: data,
		states:  make(map[string]State[C]),
		guards:  make(map[string]Guard[C]),
		history: ring.New[Snapshot[C]](options.capacity),
		clone:   options.cloner,
	}

	for _, s := range options.states {
		m.When(s.name, s.state)
	}
	for _, g := range options.guards {
		m.Can(g.name, g.guard)
	}
	if options.logger != nil {
		m.On(LogListener[C](options.logger))
	}
	for _, l := range options.listeners {
		m.On(l)
	}

	return m
}

// WithHistoryCapacity overrides the history buffer capacity.
// The capacity must be positive, otherwise New panics.
func WithHistoryCapacity[C any](n int) Option[C] {
	return func(o *options[C]) {
		if n <= 0 {
			panic(fmt.Sprintf("history capacity must be positive, got %d", n))
		}
		o.capacity = n
	}
}

// WithCloner overrides the deep-copy function used for snapshots and history
// entries. Use it when the context holds channels, functions or unexported
// struct fields, which the default cloner passes through as plain value
// copies rather than deep-copying.
func WithCloner[C any](fn Cloner[C]) Option[C] {
	return func(o *options[C]) {
		if fn != nil {
			o.cloner = fn
		}
	}
}

// WithLogger subscribes a logging listener built from LogListener before any
// other listener, so every event of the machine's lifetime is logged.
func WithLogger[C any](logger *slog.Logger) Option[C] {
	return func(o *options[C]) {
		o.logger = logger
	}
}

// WithState registers a state descriptor at construction, equivalent to an
// immediate When call.
func WithState[C any](name string, s State[C]) Option[C] {
	return func(o *options[C]) {
		o.states = append(o.states, namedState[C]{name: name, state: s})
	}
}

// WithGuard registers a guard at construction, equivalent to an immediate
// Can call.
func WithGuard[C any](name string, g Guard[C]) Option[C] {
	return func(o *options[C]) {
		o.guards = append(o.guards, namedGuard[C]{name: name, guard: g})
	}
}

// WithListener subscribes a listener at construction. The subscription has
// no unsubscribe function; use On when the listener must be removable.
func WithListener[C any](fn Listener[C]) Option[C] {
	return func(o *options[C]) {
		if fn != nil {
			o.listeners = append(o.listeners, fn)
		}
	}
}
