package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devconnect_go/internal/domain"
)

func TestSubmitRejectsInvalidIntent(t *testing.T) {
	svc := NewRequestService(new(MockRequestRepo), new(MockUserRepo))

	_, err := svc.Submit(context.Background(), 1, 2, domain.RequestStatusAccepted)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSubmitRejectsSelf(t *testing.T) {
	svc := NewRequestService(new(MockRequestRepo), new(MockUserRepo))

	_, err := svc.Submit(context.Background(), 7, 7, domain.RequestStatusInterested)
	assert.ErrorIs(t, err, domain.ErrSelfRequest)
}

func TestSubmitUnknownTarget(t *testing.T) {
	users := new(MockUserRepo)
	users.On("GetByID", mock.Anything, int64(2)).Return(nil, nil)

	svc := NewRequestService(new(MockRequestRepo), users)

	_, err := svc.Submit(context.Background(), 1, 2, domain.RequestStatusInterested)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	users.AssertExpectations(t)
}

func TestSubmitInactiveTarget(t *testing.T) {
	users := new(MockUserRepo)
	users.On("GetByID", mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, IsActive: false}, nil)

	svc := NewRequestService(new(MockRequestRepo), users)

	_, err := svc.Submit(context.Background(), 1, 2, domain.RequestStatusInterested)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	users := new(MockUserRepo)
	users.On("GetByID", mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, IsActive: true}, nil)

	requests := new(MockRequestRepo)
	requests.On("Insert", mock.Anything, mock.MatchedBy(func(r *domain.ConnectionRequest) bool {
		return r.FromUserID == 1 && r.ToUserID == 2 && r.Status == domain.RequestStatusInterested
	})).Return(nil)

	svc := NewRequestService(requests, users)

	req, err := svc.Submit(context.Background(), 1, 2, domain.RequestStatusInterested)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusInterested, req.Status)
	requests.AssertExpectations(t)
}

func TestSubmitPropagatesDuplicate(t *testing.T) {
	users := new(MockUserRepo)
	users.On("GetByID", mock.Anything, int64(2)).
		Return(&domain.User{ID: 2, IsActive: true}, nil)

	requests := new(MockRequestRepo)
	requests.On("Insert", mock.Anything, mock.Anything).Return(domain.ErrDuplicateRequest)

	svc := NewRequestService(requests, users)

	_, err := svc.Submit(context.Background(), 1, 2, domain.RequestStatusIgnored)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
}

func TestReviewRejectsInvalidDecision(t *testing.T) {
	svc := NewRequestService(new(MockRequestRepo), new(MockUserRepo))

	_, err := svc.Review(context.Background(), 2, 10, domain.RequestStatusInterested)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReviewUnknownRequest(t *testing.T) {
	requests := new(MockRequestRepo)
	requests.On("GetByID", mock.Anything, int64(10)).Return(nil, nil)

	svc := NewRequestService(requests, new(MockUserRepo))

	_, err := svc.Review(context.Background(), 2, 10, domain.RequestStatusAccepted)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewOnlyRecipientMayReview(t *testing.T) {
	requests := new(MockRequestRepo)
	requests.On("GetByID", mock.Anything, int64(10)).Return(&domain.ConnectionRequest{
		ID: 10, FromUserID: 1, ToUserID: 2, Status: domain.RequestStatusInterested,
	}, nil)

	svc := NewRequestService(requests, new(MockUserRepo))

	// the sender cannot review their own request
	_, err := svc.Review(context.Background(), 1, 10, domain.RequestStatusAccepted)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// neither can a third party
	_, err = svc.Review(context.Background(), 3, 10, domain.RequestStatusAccepted)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestReviewAlreadyTerminal(t *testing.T) {
	requests := new(MockRequestRepo)
	requests.On("GetByID", mock.Anything, int64(10)).Return(&domain.ConnectionRequest{
		ID: 10, FromUserID: 1, ToUserID: 2, Status: domain.RequestStatusAccepted,
	}, nil)
	requests.On("ReviewIfPending", mock.Anything, int64(10), domain.RequestStatusRejected, mock.Anything).
		Return(false, nil)

	svc := NewRequestService(requests, new(MockUserRepo))

	_, err := svc.Review(context.Background(), 2, 10, domain.RequestStatusRejected)
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
}

func TestReviewAccepts(t *testing.T) {
	requests := new(MockRequestRepo)
	requests.On("GetByID", mock.Anything, int64(10)).Return(&domain.ConnectionRequest{
		ID: 10, FromUserID: 1, ToUserID: 2, Status: domain.RequestStatusInterested,
	}, nil)
	requests.On("ReviewIfPending", mock.Anything, int64(10), domain.RequestStatusAccepted, mock.Anything).
		Return(true, nil)

	svc := NewRequestService(requests, new(MockUserRepo))

	req, err := svc.Review(context.Background(), 2, 10, domain.RequestStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusAccepted, req.Status)
	require.NotNil(t, req.ReviewedAt)
	requests.AssertExpectations(t)
}

func TestListReceivedAttachesSenders(t *testing.T) {
	requests := new(MockRequestRepo)
	requests.On("ListReceived", mock.Anything, int64(2)).Return([]*domain.ConnectionRequest{
		{ID: 10, FromUserID: 1, ToUserID: 2, Status: domain.RequestStatusInterested},
	}, nil)

	users := new(MockUserRepo)
	users.On("GetByID", mock.Anything, int64(1)).
		Return(&domain.User{ID: 1, Username: "alice", DisplayName: "Alice", IsActive: true}, nil)

	svc := NewRequestService(requests, users)

	got, err := svc.ListReceived(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].Request.ID)
	assert.Equal(t, "Alice", got[0].From.DisplayName)
}
