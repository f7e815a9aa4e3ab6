package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"devconnect_go/internal/domain"
	"devconnect_go/internal/security"
)

func newAuthService(users *MockUserRepo) *AuthService {
	tokens := security.NewTokenService("test-secret", time.Hour)
	return NewAuthService(users, tokens, security.NewPasswordHasher(4))
}

func TestRegisterRequiresCredentials(t *testing.T) {
	svc := newAuthService(new(MockUserRepo))

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterUsernameTaken(t *testing.T) {
	users := new(MockUserRepo)
	users.On("GetByUsername", mock.Anything, "alice").
		Return(&domain.User{ID: 1, Username: "alice"}, nil)

	svc := newAuthService(users)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterDefaultsDisplayName(t *testing.T) {
	users := new(MockUserRepo)
	users.On("GetByUsername", mock.Anything, "alice").Return(nil, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Username == "alice" && u.DisplayName == "alice" && u.IsActive
	})).Return(nil)

	svc := newAuthService(users)

	u, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.NotEqual(t, "secret", u.HashedPassword)
	users.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	hasher := security.NewPasswordHasher(4)
	hashed, err := hasher.Hash("right")
	require.NoError(t, err)

	users := new(MockUserRepo)
	users.On("GetByUsername", mock.Anything, "alice").
		Return(&domain.User{ID: 1, Username: "alice", HashedPassword: hashed, IsActive: true}, nil)

	svc := newAuthService(users)

	_, err = svc.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginUnknownOrInactiveUser(t *testing.T) {
	users := new(MockUserRepo)
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, nil)
	users.On("GetByUsername", mock.Anything, "gone").
		Return(&domain.User{ID: 2, Username: "gone", IsActive: false}, nil)

	svc := newAuthService(users)

	_, err := svc.Login(context.Background(), LoginInput{Username: "ghost", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Login(context.Background(), LoginInput{Username: "gone", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginIssuesBearerToken(t *testing.T) {
	hasher := security.NewPasswordHasher(4)
	hashed, err := hasher.Hash("secret")
	require.NoError(t, err)

	users := new(MockUserRepo)
	users.On("GetByUsername", mock.Anything, "alice").
		Return(&domain.User{ID: 1, Username: "alice", HashedPassword: hashed, IsActive: true}, nil)

	svc := newAuthService(users)

	res, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.NotEmpty(t, res.AccessToken)

	tokens := security.NewTokenService("test-secret", time.Hour)
	claims, err := tokens.Parse(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims["sub"])
}
