package fsmkit

import (
	"context"
	"time"
)

// Run executes the steps sequentially: honor the step's delay, then attempt
// its transition via To. Blocked transitions never abort the sequence; the
// following steps still run. Run returns early only when an effect fails or
// the context is cancelled during a delay.
func (m *Machine[C]) Run(ctx context.Context, steps []Step[C]) error {
	for _, st := range steps {
		if err := m.apply(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// apply executes a single step: delay, then transition attempt.
func (m *Machine[C]) apply(ctx context.Context, st Step[C]) error {
	if st.Delay > 0 {
		timer := time.NewTimer(st.Delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	if st.To == "" {
		return nil
	}

	if st.Update != nil {
		return m.To(ctx, st.To, st.Update)
	}
	return m.To(ctx, st.To)
}
