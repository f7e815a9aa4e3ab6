package service

import (
	"context"
	"sync"

	"devconnect_go/internal/domain"
)

// FeedService produces the next unreviewed candidate for a caller. The store
// excludes anyone sharing a request record with the caller; on top of that
// the service remembers which candidates it already handed out this session,
// so an unreviewed candidate is not served twice in a row. The memory is
// cleared whenever the caller submits a review.
type FeedService struct {
	users domain.UserRepository

	mu     sync.Mutex
	served map[int64]map[int64]struct{}
}

func NewFeedService(users domain.UserRepository) *FeedService {
	return &FeedService{
		users:  users,
		served: make(map[int64]map[int64]struct{}),
	}
}

// NextCandidate returns the next candidate for callerID, or nil when the
// feed is exhausted.
func (s *FeedService) NextCandidate(ctx context.Context, callerID int64) (*domain.User, error) {
	exclude := s.servedIDs(callerID)

	u, err := s.users.NextCandidate(ctx, callerID, exclude)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}

	s.mu.Lock()
	if s.served[callerID] == nil {
		s.served[callerID] = make(map[int64]struct{})
	}
	s.served[callerID][u.ID] = struct{}{}
	s.mu.Unlock()

	return u, nil
}

// NoteReviewed resets the caller's served set after a successful review;
// skipped candidates become eligible again.
func (s *FeedService) NoteReviewed(callerID int64) {
	s.mu.Lock()
	delete(s.served, callerID)
	s.mu.Unlock()
}

func (s *FeedService) servedIDs(callerID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.served[callerID]
	if len(set) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
