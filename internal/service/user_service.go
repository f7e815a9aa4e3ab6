package service

import (
	"context"

	"devconnect_go/internal/domain"
)

// UserService provides user directory operations.
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// Exists reports whether an active user with the given id exists.
func (s *UserService) Exists(ctx context.Context, id int64) (bool, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return u != nil && u.IsActive, nil
}

func (s *UserService) SoftDelete(ctx context.Context, id int64) error {
	return s.users.SoftDelete(ctx, id)
}
