package pubsub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreGetSet(t *testing.T) {
	t.Parallel()

	s := NewStore(10)
	require.Equal(t, 10, s.Get())

	s.Set(20)
	require.Equal(t, 20, s.Get())

	s.Update(func(v int) int { return v + 1 })
	require.Equal(t, 21, s.Get())
}

func TestStoreSubscribeReceivesPublishes(t *testing.T) {
	t.Parallel()

	s := NewStore("a")
	ch, cancel := s.Subscribe(4)
	defer cancel()

	s.Set("b")
	s.Set("c")

	require.Equal(t, "b", <-ch)
	require.Equal(t, "c", <-ch)
}

func TestStoreSlowSubscriberNeverBlocksWriter(t *testing.T) {
	t.Parallel()

	s := NewStore(0)
	ch, cancel := s.Subscribe(1)
	defer cancel()

	// Nobody drains; writes must still return.
	for i := 1; i <= 100; i++ {
		s.Set(i)
	}

	// The latest snapshot wins.
	require.Equal(t, 100, <-ch)
	require.Equal(t, 100, s.Get())
}

func TestStoreCancelClosesChannel(t *testing.T) {
	t.Parallel()

	s := NewStore(0)
	ch, cancel := s.Subscribe(1)
	cancel()
	cancel() // idempotent

	_, ok := <-ch
	require.False(t, ok)

	// Publishing after cancel must not panic.
	s.Set(1)
}
