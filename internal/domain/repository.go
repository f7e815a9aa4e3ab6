package domain

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, id int64) error
	TouchLastSeen(ctx context.Context, id int64) error

	// NextCandidate returns an active user other than callerID that shares no
	// connection request record with the caller (any status, either
	// direction) and whose id is not in exclude. Returns nil when the feed is
	// exhausted.
	NextCandidate(ctx context.Context, callerID int64, exclude []int64) (*User, error)
}

// RequestRepository defines persistence operations for connection requests.
type RequestRepository interface {
	// Insert atomically creates the record unless one already exists for the
	// unordered pair, in which case it returns ErrDuplicateRequest. The
	// uniqueness check and the write are a single store operation.
	Insert(ctx context.Context, r *ConnectionRequest) error

	GetByID(ctx context.Context, id int64) (*ConnectionRequest, error)
	GetByPair(ctx context.Context, a, b int64) (*ConnectionRequest, error)

	// ReviewIfPending transitions the request to decision only if its status
	// is still "interested" (compare-and-swap). Returns false when the
	// request was already terminal.
	ReviewIfPending(ctx context.Context, id int64, decision RequestStatus, reviewedAt time.Time) (bool, error)

	// ListReceived returns pending interested requests addressed to userID,
	// oldest first.
	ListReceived(ctx context.Context, userID int64) ([]*ConnectionRequest, error)

	// ListConnectedIDs returns the ids of all users sharing an accepted
	// request with userID.
	ListConnectedIDs(ctx context.Context, userID int64) ([]int64, error)

	IsConnected(ctx context.Context, a, b int64) (bool, error)
}

// MessageRepository defines persistence operations for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id int64) (*Message, error)

	// ListForPair returns the pair's messages in creation order.
	ListForPair(ctx context.Context, lo, hi int64, limit int) ([]*Message, error)

	// MarkDelivered advances the message from sent to delivered. Returns
	// false if the message was not in the sent state.
	MarkDelivered(ctx context.Context, id int64) (bool, error)

	// MarkSeen advances the message to seen from any earlier state. Returns
	// false if the message was already seen; the call never moves a status
	// backward and is safe to repeat.
	MarkSeen(ctx context.Context, id int64) (bool, error)
}
