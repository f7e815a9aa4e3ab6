package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"devconnect_go/internal/domain"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepo) TouchLastSeen(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepo) NextCandidate(ctx context.Context, callerID int64, exclude []int64) (*domain.User, error) {
	args := m.Called(ctx, callerID, exclude)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) Insert(ctx context.Context, r *domain.ConnectionRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRequestRepo) GetByID(ctx context.Context, id int64) (*domain.ConnectionRequest, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*domain.ConnectionRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepo) GetByPair(ctx context.Context, a, b int64) (*domain.ConnectionRequest, error) {
	args := m.Called(ctx, a, b)
	if r := args.Get(0); r != nil {
		return r.(*domain.ConnectionRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepo) ReviewIfPending(ctx context.Context, id int64, decision domain.RequestStatus, reviewedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, decision, reviewedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestRepo) ListReceived(ctx context.Context, userID int64) ([]*domain.ConnectionRequest, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.([]*domain.ConnectionRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepo) ListConnectedIDs(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.([]int64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRequestRepo) IsConnected(ctx context.Context, a, b int64) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepo) ListForPair(ctx context.Context, lo, hi int64, limit int) ([]*domain.Message, error) {
	args := m.Called(ctx, lo, hi, limit)
	if r := args.Get(0); r != nil {
		return r.([]*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageRepo) MarkDelivered(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockMessageRepo) MarkSeen(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
