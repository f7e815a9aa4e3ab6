package ws

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSink records every payload written to it.
type fakeSink struct {
	mu       sync.Mutex
	payloads []any
	failWith error
	closed   bool
}

func (s *fakeSink) WriteJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.payloads = append(s.payloads, v)
	return nil
}

func (s *fakeSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSink) received() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.payloads...)
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()

	h1 := NewHandle(1, &fakeSink{})
	h2 := NewHandle(1, &fakeSink{})
	hub.Register(h1)
	hub.Register(h2)
	assert.Equal(t, 2, hub.HandleCount(1))

	assert.Equal(t, 1, hub.Unregister(h1))
	assert.Equal(t, 0, hub.Unregister(h2))
	assert.Equal(t, 0, hub.HandleCount(1))

	// unregistering an unknown handle is harmless
	assert.Equal(t, 0, hub.Unregister(h1))
}

func TestFanOutReachesEveryHandleOnce(t *testing.T) {
	hub := NewHub()

	s1, s2 := &fakeSink{}, &fakeSink{}
	hub.Register(NewHandle(1, s1))
	hub.Register(NewHandle(1, s2))
	hub.Register(NewHandle(2, &fakeSink{}))

	n := hub.FanOut(1, "", map[string]string{"type": "ping"})
	assert.Equal(t, 2, n)
	assert.Len(t, s1.received(), 1)
	assert.Len(t, s2.received(), 1)
}

func TestFanOutFiltersByJoinedPair(t *testing.T) {
	hub := NewHub()

	joined := &fakeSink{}
	idle := &fakeSink{}
	hJoined := NewHandle(2, joined)
	hJoined.Join(PairKey(1, 2))
	hub.Register(hJoined)
	hub.Register(NewHandle(2, idle))

	n := hub.FanOut(2, PairKey(2, 1), map[string]string{"type": "messageReceived"})
	assert.Equal(t, 1, n)
	assert.Len(t, joined.received(), 1)
	assert.Empty(t, idle.received())
}

func TestFanOutEvictsDeadHandles(t *testing.T) {
	hub := NewHub()

	dead := &fakeSink{failWith: errors.New("broken pipe")}
	live := &fakeSink{}
	hub.Register(NewHandle(1, dead))
	hub.Register(NewHandle(1, live))

	n := hub.FanOut(1, "", map[string]string{"type": "ping"})
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, hub.HandleCount(1))
	assert.True(t, dead.closed)

	// the dead handle stays gone
	n = hub.FanOut(1, "", map[string]string{"type": "ping"})
	assert.Equal(t, 1, n)
	assert.Len(t, live.received(), 2)
}

func TestFanOutNoHandles(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.FanOut(42, "", map[string]string{"type": "ping"}))
}

func TestPairKeyIsCanonical(t *testing.T) {
	require.Equal(t, PairKey(1, 2), PairKey(2, 1))
	assert.Equal(t, "1:2", PairKey(2, 1))
}

func TestJoinIsIdempotent(t *testing.T) {
	h := NewHandle(1, &fakeSink{})
	key := PairKey(1, 2)

	assert.False(t, h.Joined(key))
	h.Join(key)
	h.Join(key)
	assert.True(t, h.Joined(key))
}
