package fsmkit

import (
	"context"
	"time"
)

// Step describes one transition attempt for Run or Stepper.Step: an optional
// delay, the target state, and an optional context update. A step with an
// empty To is skipped after its delay.
type Step[C any] struct {
	To     string
	Update Update[C]
	Delay  time.Duration
}

// Stepper is a pull-based cursor over a machine, for driving transitions one
// resumption at a time. It never terminates on its own; the machine stays
// operable for its entire lifetime.
type Stepper[C any] struct {
	m *Machine[C]
}

// Steps returns a resumable cursor over the machine.
func (m *Machine[C]) Steps() *Stepper[C] {
	return &Stepper[C]{m: m}
}

// Step drives the supplied steps in order, then yields a detached snapshot
// of the current state. Called with no arguments it just re-yields the
// current state. The yielded snapshot reflects the state after each attempt
// whether it committed or was blocked; only an effect error surfaces, and it
// stops the remaining steps.
func (s *Stepper[C]) Step(ctx context.Context, steps ...Step[C]) (Snapshot[C], error) {
	for _, st := range steps {
		if err := s.m.apply(ctx, st); err != nil {
			return s.m.Snapshot(), err
		}
	}
	return s.m.Snapshot(), nil
}
