package fsmkit

import (
	"context"
	"slices"
)

// Effect executes a side effect when a state is entered or left.
// Exit effects receive the pre-transition context, enter effects the
// post-transition one. Returning an error aborts the caller of To, Back or
// Run at that point; the machine performs no rollback.
type Effect[C any] func(ctx context.Context, data C) error

// Guard evaluates whether a transition into the state it is registered for
// should be allowed, based on the current pre-transition snapshot.
type Guard[C any] func(current Snapshot[C]) bool

// State describes a named state: optional enter/exit effects, opaque
// metadata, and transition constraints.
//
// A nil To list leaves outgoing transitions unconstrained; an empty non-nil
// list permits none. The zero From value accepts transitions from any state.
// States never registered behave like the zero State value.
type State[C any] struct {
	Enter Effect[C]
	Exit  Effect[C]
	Meta  any
	To    []string
	From  From
}

// From constrains which states may transition into the state it is declared
// on. It is a tagged variant rather than a sentinel name, so a state
// literally named "*" never collides with the wildcard.
//
// The zero value accepts any origin, same as FromAny.
type From struct {
	wildcard bool
	names    []string
}

// FromAny accepts transitions from any state.
func FromAny() From {
	return From{wildcard: true}
}

// FromStates accepts transitions only from the named states.
// With no arguments the constraint permits none.
func FromStates(names ...string) From {
	if names == nil {
		names = []string{}
	}
	return From{names: names}
}

func (f From) allows(state string) bool {
	if f.wildcard || f.names == nil {
		return true
	}
	return slices.Contains(f.names, state)
}
