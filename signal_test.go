package arbor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitterOrderAndUnsubscribe(t *testing.T) {
	var e Emitter[int]
	var got []string
	a := e.On(func(v int) { got = append(got, "a") })
	e.On(func(v int) { got = append(got, "b") })
	require.Equal(t, 2, e.Len())

	e.Emit(1)
	require.Equal(t, []string{"a", "b"}, got)

	a.Unsubscribe()
	a.Unsubscribe()
	require.False(t, a.Active())
	got = got[:0]
	e.Emit(2)
	require.Equal(t, []string{"b"}, got)
}

func TestEmitterUnsubscribeDuringEmit(t *testing.T) {
	var e Emitter[int]
	calls := 0
	var second Subscription
	e.On(func(int) {
		calls++
		second.Unsubscribe()
	})
	second = e.On(func(int) { calls++ })

	// The running Emit still sees the listener it started with.
	e.Emit(0)
	require.Equal(t, 2, calls)
	e.Emit(0)
	require.Equal(t, 3, calls)
}

func TestZeroSubscription(t *testing.T) {
	var s Subscription
	require.False(t, s.Active())
	s.Unsubscribe()
}

func TestPropertyLinkAndSet(t *testing.T) {
	p := NewProperty(3)
	var seen []int
	sub := p.Link(func(v int) { seen = append(seen, v) })
	require.Equal(t, []int{3}, seen)

	p.Set(3)
	p.Set(4)
	require.Equal(t, []int{3, 4}, seen)

	var lazy []int
	p.LazyLink(func(v int) { lazy = append(lazy, v) })
	require.Empty(t, lazy)
	require.Equal(t, 2, p.Listeners())

	sub.Unsubscribe()
	p.Set(5)
	require.Equal(t, []int{3, 4}, seen)
	require.Equal(t, []int{5}, lazy)
	require.Equal(t, 5, p.Get())
}
