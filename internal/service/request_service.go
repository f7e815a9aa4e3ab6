package service

import (
	"context"
	"fmt"
	"time"

	"devconnect_go/internal/domain"
)

// RequestService implements the connection request state machine:
// none -> interested -> {accepted, rejected}, and none -> ignored.
type RequestService struct {
	requests domain.RequestRepository
	users    domain.UserRepository
}

func NewRequestService(requests domain.RequestRepository, users domain.UserRepository) *RequestService {
	return &RequestService{
		requests: requests,
		users:    users,
	}
}

// Submit records the caller's review of a candidate. "interested" creates a
// pending request; "ignored" is immediately terminal. The pair slot is
// claimed atomically: whichever of two concurrent submissions loses gets
// ErrDuplicateRequest.
func (s *RequestService) Submit(ctx context.Context, fromID, toID int64, intent domain.RequestStatus) (*domain.ConnectionRequest, error) {
	if !intent.ValidIntent() {
		return nil, fmt.Errorf("%w: intent must be %q or %q", domain.ErrInvalidInput,
			domain.RequestStatusInterested, domain.RequestStatusIgnored)
	}
	if fromID == toID {
		return nil, domain.ErrSelfRequest
	}

	target, err := s.users.GetByID(ctx, toID)
	if err != nil {
		return nil, fmt.Errorf("get target user: %w", err)
	}
	if target == nil || !target.IsActive {
		return nil, fmt.Errorf("target user: %w", domain.ErrNotFound)
	}

	req := &domain.ConnectionRequest{
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     intent,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.requests.Insert(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Review applies the recipient's decision to a pending request. Only the
// request's recipient may review it, and review is write-once: the
// transition is a compare-and-swap on the pending status, so of two
// concurrent reviews exactly one succeeds.
func (s *RequestService) Review(ctx context.Context, callerID, requestID int64, decision domain.RequestStatus) (*domain.ConnectionRequest, error) {
	if !decision.ValidDecision() {
		return nil, fmt.Errorf("%w: decision must be %q or %q", domain.ErrInvalidInput,
			domain.RequestStatusAccepted, domain.RequestStatusRejected)
	}

	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return nil, fmt.Errorf("request %d: %w", requestID, domain.ErrNotFound)
	}
	if req.ToUserID != callerID {
		return nil, domain.ErrForbidden
	}

	reviewedAt := time.Now().UTC()
	ok, err := s.requests.ReviewIfPending(ctx, requestID, decision, reviewedAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrAlreadyReviewed
	}

	req.Status = decision
	req.ReviewedAt = &reviewedAt
	return req, nil
}

// ReceivedRequest pairs a pending request with its sender's profile.
type ReceivedRequest struct {
	Request *domain.ConnectionRequest `json:"request"`
	From    *domain.User              `json:"from"`
}

// ListReceived returns the pending requests addressed to userID, with the
// sender profile attached for display.
func (s *RequestService) ListReceived(ctx context.Context, userID int64) ([]*ReceivedRequest, error) {
	reqs, err := s.requests.ListReceived(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := make([]*ReceivedRequest, 0, len(reqs))
	for _, req := range reqs {
		from, err := s.users.GetByID(ctx, req.FromUserID)
		if err != nil {
			return nil, fmt.Errorf("get sender: %w", err)
		}
		res = append(res, &ReceivedRequest{Request: req, From: from})
	}
	return res, nil
}

// ListConnections returns the profiles of everyone userID is mutually
// connected with.
func (s *RequestService) ListConnections(ctx context.Context, userID int64) ([]*domain.User, error) {
	ids, err := s.requests.ListConnectedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get connection: %w", err)
		}
		if u != nil {
			users = append(users, u)
		}
	}
	return users, nil
}

// IsConnected reports whether a and b share an accepted request.
func (s *RequestService) IsConnected(ctx context.Context, a, b int64) (bool, error) {
	return s.requests.IsConnected(ctx, a, b)
}
