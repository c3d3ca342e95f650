// Package fsmkit provides a generic finite-state-machine runtime: named
// states with optional enter/exit effects, metadata, and transition
// constraints, plus bounded history, snapshot/restore, manual stepping, and
// synchronous event notification.
//
// The machine is generic over its context payload, an arbitrary value
// carried alongside the current state and mutated independently of it. The
// engine never inspects the payload's shape - it only copies, merges, or
// passes it through.
//
// # Usage
//
// Create a machine with an initial state and context, then describe states
// with When and gate them with Can:
//
//	import (
//	    "context"
//
//	    "github.com/fsmkit/fsmkit"
//	)
//
//	type Doc struct {
//	    Words int
//	}
//
//	m := fsmkit.New("draft", Doc{},
//	    fsmkit.WithState("draft", fsmkit.State[Doc]{To: []string{"review"}}),
//	    fsmkit.WithState("review", fsmkit.State[Doc]{
//	        From: fsmkit.FromStates("draft"),
//	        To:   []string{"published", "draft"},
//	    }),
//	    fsmkit.WithState("published", fsmkit.State[Doc]{}),
//	    fsmkit.WithGuard("published", func(s fsmkit.Snapshot[Doc]) bool {
//	        return s.Context.Words > 0
//	    }),
//	)
//
//	_ = m.To(context.Background(), "review")
//
// Registration and operation interleave freely: states may be referenced
// before they are registered, and a state that is never registered simply
// has no effects or constraints.
//
// # Transitions
//
// To evaluates three checks against the pre-transition state, in order: the
// current descriptor's To allow-list, the target's From constraint, and the
// target's guard. A rejected attempt is not an error - the machine emits a
// transition event carrying the blocking reason ("to", "from" or "guard")
// and stays put. A permitted attempt pushes the pre-transition snapshot onto
// history, runs exit with the old context, applies the update, commits, runs
// enter with the new context, and emits a committed transition event. Exit
// always completes before enter starts.
//
// Transitions lists the states reachable next, preserving declared order for
// To lists and registration order otherwise, never including the current
// state.
//
// # Context Updates
//
// To, Set and Step accept updates as plain functions from old context to new
// context. Replace swaps the value wholesale; Patch shallow-merges into a
// map context:
//
//	m.Set(fsmkit.Replace(Doc{Words: 250}))
//
//	counters := fsmkit.New("idle", map[string]int{"count": 0})
//	counters.Set(fsmkit.Patch(map[string]int{"count": 5}))
//
// # History and Snapshots
//
// Every committed To pushes the pre-transition state onto a bounded history
// buffer (capacity 10 unless WithHistoryCapacity overrides it), evicting the
// oldest entry on overflow. Back pops the newest entry and rolls back to it
// unconditionally - no constraints or guards are re-evaluated; with empty
// history it is a silent no-op.
//
// Snapshot returns a deep-copied, detached capture of state and context;
// Restore overwrites the machine from one without checks, effects or a
// history push. Contexts holding channels, functions or unexported struct
// fields pass through the default cloner as plain value copies; supply
// WithCloner when such contexts need real deep copies.
//
// # Stepping and Sequencing
//
// Steps returns a pull-based cursor that drives one transition attempt per
// resumption and always yields the resulting current state, committed or
// blocked:
//
//	cursor := m.Steps()
//	snap, _ := cursor.Step(ctx)                                  // re-yields current
//	snap, _ = cursor.Step(ctx, fsmkit.Step[Doc]{To: "review"})   // one attempt
//
// Run executes a whole sequence of steps with optional per-step delays,
// continuing past blocked transitions:
//
//	_ = m.Run(ctx, []fsmkit.Step[Doc]{
//	    {To: "review"},
//	    {To: "published", Delay: time.Second},
//	})
//
// # Observability
//
// On subscribes a listener to every committed change and blocked attempt and
// returns an unsubscribe function. Listeners run synchronously in
// registration order; unsubscribing a listener mid-notification never skips
// or double-notifies the others. LogListener adapts a *slog.Logger into a
// listener, and WithLogger installs one at construction. For channel-based
// consumption see the watch subpackage.
//
// # Error Handling
//
// Blocked transitions are events, never errors. Effect errors propagate
// unwrapped to the caller of To, Back, Run or Step; the machine does not
// roll back work already done (the history push and exit effect precede the
// failure point). Undeclared state names are accepted everywhere a name is
// expected.
//
// # Concurrency
//
// A machine assumes one logical thread of control. Accessors (State,
// Context, Is, Meta, Transitions, Snapshot, History) are guarded and safe
// from any goroutine, but callers must not overlap To, Back, Set or Restore
// calls on the same instance: effects and delays are suspension points and
// the machine does not queue or serialize transition requests. Guards,
// effects and listeners run outside the machine's internal lock, so they may
// call accessors synchronously.
package fsmkit
