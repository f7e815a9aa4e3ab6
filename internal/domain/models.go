package domain

import "time"

// User represents an application user.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          *string   `db:"email" json:"email,omitempty"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	DisplayName    string    `db:"display_name" json:"display_name"`
	PhotoURL       *string   `db:"photo_url" json:"photo_url,omitempty"`
	About          *string   `db:"about" json:"about,omitempty"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastSeen       time.Time `db:"last_seen" json:"last_seen"`
}

// RequestStatus is the lifecycle state of a connection request.
type RequestStatus string

const (
	RequestStatusInterested RequestStatus = "interested"
	RequestStatusIgnored    RequestStatus = "ignored"
	RequestStatusAccepted   RequestStatus = "accepted"
	RequestStatusRejected   RequestStatus = "rejected"
)

// ValidIntent reports whether s is a status a sender may submit.
func (s RequestStatus) ValidIntent() bool {
	return s == RequestStatusInterested || s == RequestStatusIgnored
}

// ValidDecision reports whether s is a status a recipient may review to.
func (s RequestStatus) ValidDecision() bool {
	return s == RequestStatusAccepted || s == RequestStatusRejected
}

// Terminal reports whether the status can never transition again.
// Only a pending "interested" request is reviewable.
func (s RequestStatus) Terminal() bool {
	return s != RequestStatusInterested
}

// ConnectionRequest is a directional interest signal between two users.
// At most one record exists per unordered user pair, in either direction.
type ConnectionRequest struct {
	ID         int64         `db:"id" json:"id"`
	FromUserID int64         `db:"from_user_id" json:"from_user_id"`
	ToUserID   int64         `db:"to_user_id" json:"to_user_id"`
	Status     RequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	ReviewedAt *time.Time    `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// PairOf returns the canonical (lo, hi) key for an unordered user pair.
func PairOf(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// MessageStatus is the delivery state of a chat message. It only ever
// moves forward: sent -> delivered -> seen.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusSeen      MessageStatus = "seen"
)

func (s MessageStatus) rank() int {
	switch s {
	case MessageStatusSent:
		return 0
	case MessageStatusDelivered:
		return 1
	case MessageStatusSeen:
		return 2
	}
	return -1
}

// Before reports whether s precedes other in the delivery lifecycle.
func (s MessageStatus) Before(other MessageStatus) bool {
	return s.rank() < other.rank()
}

// Message is a single chat message between a connected pair of users.
// The pair columns hold the canonical unordered pair key.
type Message struct {
	ID        int64         `db:"id" json:"id"`
	PairLo    int64         `db:"pair_lo" json:"-"`
	PairHi    int64         `db:"pair_hi" json:"-"`
	SenderID  int64         `db:"sender_id" json:"sender_id"`
	Text      string        `db:"text" json:"text"`
	ImageURL  *string       `db:"image_url" json:"image_url,omitempty"`
	Status    MessageStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// Recipient returns the pair member that did not send the message.
func (m *Message) Recipient() int64 {
	if m.SenderID == m.PairLo {
		return m.PairHi
	}
	return m.PairLo
}

// InPair reports whether userID is one of the message's pair members.
func (m *Message) InPair(userID int64) bool {
	return userID == m.PairLo || userID == m.PairHi
}
