package ws

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"devconnect_go/internal/domain"
)

// Sink is an addressable outbound channel for one live connection. A
// *websocket.Conn satisfies it; tests substitute fakes.
type Sink interface {
	WriteJSON(v any) error
	Close() error
}

// Handle is one live connection of a user (one tab, one device). A user may
// hold any number of handles; delivery of an event to a user means writing
// it to at least one of them.
type Handle struct {
	ID     uuid.UUID
	UserID int64

	sink Sink

	mu     sync.Mutex
	joined map[string]struct{}
}

func NewHandle(userID int64, sink Sink) *Handle {
	return &Handle{
		ID:     uuid.New(),
		UserID: userID,
		sink:   sink,
		joined: make(map[string]struct{}),
	}
}

// Send writes one JSON payload to the underlying connection. Writes are
// serialized per handle; the websocket allows a single concurrent writer.
func (h *Handle) Send(v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sink.WriteJSON(v)
}

// Join announces interest in a chat pair. Joining an already joined pair is
// a no-op.
func (h *Handle) Join(pairKey string) {
	h.mu.Lock()
	h.joined[pairKey] = struct{}{}
	h.mu.Unlock()
}

// Joined reports whether the handle announced itself on the pair.
func (h *Handle) Joined(pairKey string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.joined[pairKey]
	return ok
}

func (h *Handle) close() {
	_ = h.sink.Close()
}

// PairKey returns the canonical room key for an unordered user pair.
func PairKey(a, b int64) string {
	lo, hi := domain.PairOf(a, b)
	return fmt.Sprintf("%d:%d", lo, hi)
}

// Hub tracks the live handles of every connected user and fans events out to
// them. Handles whose writes fail are treated as dead and evicted rather
// than retried.
type Hub struct {
	mu      sync.RWMutex
	handles map[int64]map[*Handle]struct{}
}

func NewHub() *Hub {
	return &Hub{
		handles: make(map[int64]map[*Handle]struct{}),
	}
}

// Register adds a handle for its user.
func (hub *Hub) Register(h *Handle) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if hub.handles[h.UserID] == nil {
		hub.handles[h.UserID] = make(map[*Handle]struct{})
	}
	hub.handles[h.UserID][h] = struct{}{}
}

// Unregister removes a handle and returns how many handles the user has left.
func (hub *Hub) Unregister(h *Handle) int {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	if set, ok := hub.handles[h.UserID]; ok {
		delete(set, h)
		if len(set) == 0 {
			delete(hub.handles, h.UserID)
			return 0
		}
		return len(set)
	}
	return 0
}

// HandleCount returns the number of live handles for a user.
func (hub *Hub) HandleCount(userID int64) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.handles[userID])
}

// HandlesFor returns a snapshot of the user's live handles.
func (hub *Hub) HandlesFor(userID int64) []*Handle {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	set := hub.handles[userID]
	if len(set) == 0 {
		return nil
	}
	res := make([]*Handle, 0, len(set))
	for h := range set {
		res = append(res, h)
	}
	return res
}

// FanOut writes the payload to every live handle of userID. When pairKey is
// non-empty, only handles that joined the pair receive it. Returns the
// number of handles that took the write; failed handles are closed and
// evicted.
func (hub *Hub) FanOut(userID int64, pairKey string, payload any) int {
	delivered := 0
	var dead []*Handle

	for _, h := range hub.HandlesFor(userID) {
		if pairKey != "" && !h.Joined(pairKey) {
			continue
		}
		if err := h.Send(payload); err != nil {
			dead = append(dead, h)
			continue
		}
		delivered++
	}

	for _, h := range dead {
		h.close()
		hub.Unregister(h)
	}
	return delivered
}
