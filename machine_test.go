package fsmkit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsmkit/fsmkit"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("starts at initial state with context", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("idle", map[string]int{"count": 0})

		assert.Equal(t, "idle", m.State())
		assert.True(t, m.Is("idle"))
		assert.False(t, m.Is("busy"))
		assert.Equal(t, map[string]int{"count": 0}, m.Context())
		assert.Empty(t, m.History())
	})

	t.Run("initial state needs no registration", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("anywhere", 0)

		require.NoError(t, m.To(context.Background(), "elsewhere"))
		assert.Equal(t, "elsewhere", m.State())
	})

	t.Run("machines get distinct identities", func(t *testing.T) {
		t.Parallel()

		a := fsmkit.New("idle", 0)
		b := fsmkit.New("idle", 0)

		assert.NotEqual(t, a.ID(), b.ID())
	})
}

func TestMachine_To(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unconstrained transition commits", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", 0)

		require.NoError(t, m.To(ctx, "b"))
		assert.Equal(t, "b", m.State())
		assert.Len(t, m.History(), 1)
	})

	t.Run("to list permits declared targets only", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", 0).
			When("a", fsmkit.State[int]{To: []string{"b"}})

		require.NoError(t, m.To(ctx, "c"))
		assert.Equal(t, "a", m.State(), "undeclared target must be blocked")

		require.NoError(t, m.To(ctx, "b"))
		assert.Equal(t, "b", m.State())
	})

	t.Run("empty to list blocks everything", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", 0).
			When("a", fsmkit.State[int]{To: []string{}})

		require.NoError(t, m.To(ctx, "b"))
		assert.Equal(t, "a", m.State())
	})

	t.Run("from constraint rejects excluded origins", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", 0).
			When("b", fsmkit.State[int]{From: fsmkit.FromStates("c")})

		require.NoError(t, m.To(ctx, "b"))
		assert.Equal(t, "a", m.State())

		require.NoError(t, m.To(ctx, "c"))
		require.NoError(t, m.To(ctx, "b"))
		assert.Equal(t, "b", m.State())
	})

	t.Run("guard gates entry against pre-transition snapshot", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", map[string]int{"ready": 0}).
			Can("b", func(s fsmkit.Snapshot[map[string]int]) bool {
				return s.Context["ready"] == 1
			})

		require.NoError(t, m.To(ctx, "b"))
		assert.Equal(t, "a", m.State())

		m.Set(fsmkit.Patch(map[string]int{"ready": 1}))
		require.NoError(t, m.To(ctx, "b"))
		assert.Equal(t, "b", m.State())
	})

	t.Run("checks evaluate in to, from, guard order", func(t *testing.T) {
		t.Parallel()

		var got []fsmkit.BlockReason
		m := fsmkit.New("a", 0).
			When("a", fsmkit.State[int]{To: []string{"allowed"}}).
			When("b", fsmkit.State[int]{From: fsmkit.FromStates("elsewhere")}).
			Can("b", func(fsmkit.Snapshot[int]) bool { return false })
		m.On(func(e fsmkit.Event[int]) {
			got = append(got, e.Blocked)
		})

		// To list misses "b", so the check order must classify it as "to"
		// even though from and guard would also reject it.
		require.NoError(t, m.To(ctx, "b"))
		require.Equal(t, []fsmkit.BlockReason{fsmkit.BlockedTo}, got)

		got = nil
		m.When("a", fsmkit.State[int]{})
		require.NoError(t, m.To(ctx, "b"))
		require.Equal(t, []fsmkit.BlockReason{fsmkit.BlockedFrom}, got)

		got = nil
		m.When("b", fsmkit.State[int]{})
		require.NoError(t, m.To(ctx, "b"))
		require.Equal(t, []fsmkit.BlockReason{fsmkit.BlockedGuard}, got)
	})

	t.Run("exit and enter run sequentially around the commit", func(t *testing.T) {
		t.Parallel()

		var trace []string
		m := fsmkit.New("a", "old")
		m.When("a", fsmkit.State[string]{
			Exit: func(_ context.Context, data string) error {
				trace = append(trace, "exit:"+data+":"+m.State())
				return nil
			},
		})
		m.When("b", fsmkit.State[string]{
			Enter: func(_ context.Context, data string) error {
				trace = append(trace, "enter:"+data+":"+m.State())
				return nil
			},
		})

		require.NoError(t, m.To(ctx, "b", fsmkit.Replace("new")))

		// Exit sees the old context before the commit; enter sees the new
		// context after it.
		assert.Equal(t, []string{"exit:old:a", "enter:new:b"}, trace)
	})

	t.Run("no update keeps the context unchanged", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", map[string]int{"count": 7})

		require.NoError(t, m.To(ctx, "b"))
		assert.Equal(t, map[string]int{"count": 7}, m.Context())
	})

	t.Run("function update replaces wholesale", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", map[string]int{"count": 1, "extra": 2})

		require.NoError(t, m.To(ctx, "b", func(map[string]int) map[string]int {
			return map[string]int{"count": 5}
		}))
		assert.Equal(t, map[string]int{"count": 5}, m.Context())
	})

	t.Run("patch update shallow-merges over old", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", map[string]int{"count": 1, "extra": 2})

		require.NoError(t, m.To(ctx, "b", fsmkit.Patch(map[string]int{"count": 5})))
		assert.Equal(t, map[string]int{"count": 5, "extra": 2}, m.Context())
	})

	t.Run("exit error aborts before commit", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("exit failed")
		m := fsmkit.New("a", 0).
			When("a", fsmkit.State[int]{
				Exit: func(context.Context, int) error { return boom },
			})

		err := m.To(ctx, "b")
		require.ErrorIs(t, err, boom)
		assert.Equal(t, "a", m.State(), "state must not commit after exit failure")
		assert.Len(t, m.History(), 1, "history push precedes the exit effect")
	})

	t.Run("enter error surfaces after commit", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("enter failed")
		var events int
		m := fsmkit.New("a", 0).
			When("b", fsmkit.State[int]{
				Enter: func(context.Context, int) error { return boom },
			})
		m.On(func(fsmkit.Event[int]) { events++ })

		err := m.To(ctx, "b")
		require.ErrorIs(t, err, boom)
		assert.Equal(t, "b", m.State(), "commit happens before enter runs")
		assert.Zero(t, events, "no event for a transition whose enter failed")
	})

	t.Run("self transition is not special-cased", func(t *testing.T) {
		t.Parallel()

		var trace []string
		m := fsmkit.New("a", 0).
			When("a", fsmkit.State[int]{
				To:    []string{"a"},
				Enter: func(context.Context, int) error { trace = append(trace, "enter"); return nil },
				Exit:  func(context.Context, int) error { trace = append(trace, "exit"); return nil },
			})

		require.NoError(t, m.To(ctx, "a"))
		assert.Equal(t, "a", m.State())
		assert.Equal(t, []string{"exit", "enter"}, trace)
		assert.Len(t, m.History(), 1)
	})

	t.Run("blocked attempt leaves no trace beyond the event", func(t *testing.T) {
		t.Parallel()

		var effects int
		m := fsmkit.New("a", 0).
			When("a", fsmkit.State[int]{
				To:   []string{"b"},
				Exit: func(context.Context, int) error { effects++; return nil },
			}).
			When("c", fsmkit.State[int]{
				Enter: func(context.Context, int) error { effects++; return nil },
			})

		require.NoError(t, m.To(ctx, "c"))
		assert.Equal(t, "a", m.State())
		assert.Empty(t, m.History())
		assert.Zero(t, effects)
	})
}

func TestMachine_Registration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("when replaces prior descriptor", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", 0).
			When("a", fsmkit.State[int]{To: []string{"b"}}).
			When("a", fsmkit.State[int]{To: []string{"c"}})

		require.NoError(t, m.To(ctx, "b"))
		assert.Equal(t, "a", m.State(), "replaced descriptor must win")

		require.NoError(t, m.To(ctx, "c"))
		assert.Equal(t, "c", m.State())
	})

	t.Run("can replaces prior guard", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", 0).
			Can("b", func(fsmkit.Snapshot[int]) bool { return false }).
			Can("b", func(fsmkit.Snapshot[int]) bool { return true })

		require.NoError(t, m.To(ctx, "b"))
		assert.Equal(t, "b", m.State())
	})

	t.Run("nil guard removes the gate", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", 0).
			Can("b", func(fsmkit.Snapshot[int]) bool { return false }).
			Can("b", nil)

		require.NoError(t, m.To(ctx, "b"))
		assert.Equal(t, "b", m.State())
	})

	t.Run("registration interleaves with operation", func(t *testing.T) {
		t.Parallel()

		m := fsmkit.New("a", 0)
		require.NoError(t, m.To(ctx, "b"))

		m.When("b", fsmkit.State[int]{To: []string{"c"}})
		require.NoError(t, m.To(ctx, "a"))
		assert.Equal(t, "b", m.State(), "late descriptor still constrains")
	})
}

func TestMachine_Meta(t *testing.T) {
	t.Parallel()

	m := fsmkit.New("a", 0).
		When("a", fsmkit.State[int]{Meta: map[string]string{"label": "Start"}}).
		When("b", fsmkit.State[int]{})

	meta, ok := m.Meta("a")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"label": "Start"}, meta)

	_, ok = m.Meta("b")
	assert.False(t, ok, "registered state without metadata reads as absent")

	_, ok = m.Meta("nope")
	assert.False(t, ok)
}

func TestMachine_ConcreteWorkflow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := fsmkit.New("idle", map[string]int{"count": 0}).
		When("idle", fsmkit.State[map[string]int]{To: []string{"loading"}}).
		When("loading", fsmkit.State[map[string]int]{
			From: fsmkit.FromStates("idle"),
			To:   []string{"done"},
		})

	require.NoError(t, m.To(ctx, "loading"))
	assert.Equal(t, "loading", m.State())

	require.NoError(t, m.To(ctx, "done", fsmkit.Patch(map[string]int{"count": 5})))
	assert.Equal(t, "done", m.State())
	assert.Equal(t, map[string]int{"count": 5}, m.Context())

	history := m.History()
	require.Len(t, history, 2)
	assert.Equal(t, "idle", history[0].State)
	assert.Equal(t, map[string]int{"count": 0}, history[0].Context)
	assert.Equal(t, "loading", history[1].State)
}
