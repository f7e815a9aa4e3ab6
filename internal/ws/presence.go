package ws

import (
	"context"
	"log"
	"sync"
	"time"

	"devconnect_go/internal/domain"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
)

// Registry tracks which users are live and tells their connected partners
// when that changes. It is rebuilt from connection events and holds no
// persistent state; only last_seen is written back, best-effort, when a user
// goes offline.
//
// The offline broadcast is debounced: losing the last handle starts a grace
// timer, and a reconnect within the grace window cancels it, so a tab
// refresh does not flap the user's presence.
type Registry struct {
	hub      *Hub
	requests domain.RequestRepository
	users    domain.UserRepository
	grace    time.Duration

	mu       sync.Mutex
	pending  map[int64]*time.Timer
	lastSeen map[int64]time.Time
}

func NewRegistry(hub *Hub, requests domain.RequestRepository, users domain.UserRepository, grace time.Duration) *Registry {
	return &Registry{
		hub:      hub,
		requests: requests,
		users:    users,
		grace:    grace,
		pending:  make(map[int64]*time.Timer),
		lastSeen: make(map[int64]time.Time),
	}
}

// Connect registers a live handle. The user's partners hear "online" only
// when this is the first handle and no grace timer was pending.
func (r *Registry) Connect(ctx context.Context, h *Handle) {
	r.mu.Lock()
	graced := false
	if t, ok := r.pending[h.UserID]; ok {
		t.Stop()
		delete(r.pending, h.UserID)
		graced = true
	}
	first := !graced && r.hub.HandleCount(h.UserID) == 0
	r.mu.Unlock()

	r.hub.Register(h)

	if first {
		r.broadcastStatus(ctx, h.UserID, statusOnline)
	}
}

// Disconnect removes a handle. When it was the user's last one, the offline
// broadcast fires after the grace delay unless the user reconnects first.
func (r *Registry) Disconnect(h *Handle) {
	if r.hub.Unregister(h) > 0 {
		return
	}

	r.mu.Lock()
	r.lastSeen[h.UserID] = time.Now().UTC()
	if t, ok := r.pending[h.UserID]; ok {
		t.Stop()
	}
	userID := h.UserID
	r.pending[userID] = time.AfterFunc(r.grace, func() {
		r.mu.Lock()
		delete(r.pending, userID)
		r.mu.Unlock()

		if r.hub.HandleCount(userID) > 0 {
			return
		}
		r.broadcastStatus(context.Background(), userID, statusOffline)
		if r.users != nil {
			if err := r.users.TouchLastSeen(context.Background(), userID); err != nil {
				log.Printf("presence: touch last seen for %d: %v", userID, err)
			}
		}
	})
	r.mu.Unlock()
}

// IsOnline reports whether the user has any live handle or is within the
// disconnect grace window.
func (r *Registry) IsOnline(userID int64) bool {
	if r.hub.HandleCount(userID) > 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, graced := r.pending[userID]
	return graced
}

// LastSeen returns when the user last dropped their final handle, if the
// registry observed it this process lifetime.
func (r *Registry) LastSeen(userID int64) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.lastSeen[userID]
	return t, ok
}

// broadcastStatus fans a userStatus event out to every partner the user is
// mutually connected with. Failures are logged and swallowed; presence is
// best-effort.
func (r *Registry) broadcastStatus(ctx context.Context, userID int64, status string) {
	partners, err := r.requests.ListConnectedIDs(ctx, userID)
	if err != nil {
		log.Printf("presence: list partners for %d: %v", userID, err)
		return
	}
	payload := map[string]any{
		"type":    "userStatus",
		"user_id": userID,
		"status":  status,
	}
	for _, pid := range partners {
		r.hub.FanOut(pid, "", payload)
	}
}
