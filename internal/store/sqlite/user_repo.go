package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"devconnect_go/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

const userColumns = `id, username, email, hashed_password, display_name, photo_url, about, is_active, created_at, last_seen`

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, email, hashed_password, display_name, photo_url, about, is_active, created_at, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	res, err := execRetry(ctx, r.db, query, u.Username, u.Email, u.HashedPassword, u.DisplayName, u.PhotoURL, u.About, true)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	u.ID = id
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET email = ?, hashed_password = ?, display_name = ?, photo_url = ?, about = ?, is_active = ?
		WHERE id = ?
	`
	if _, err := execRetry(ctx, r.db, query, u.Email, u.HashedPassword, u.DisplayName, u.PhotoURL, u.About, u.IsActive, u.ID); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, id int64) error {
	if _, err := execRetry(ctx, r.db, `UPDATE users SET is_active = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	return nil
}

func (r *UserRepo) TouchLastSeen(ctx context.Context, id int64) error {
	if _, err := execRetry(ctx, r.db, `UPDATE users SET last_seen = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return fmt.Errorf("touch last seen: %w", err)
	}
	return nil
}

func (r *UserRepo) NextCandidate(ctx context.Context, callerID int64, exclude []int64) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE u.id <> ?
		AND u.is_active = 1
		AND NOT EXISTS (
			SELECT 1 FROM connection_requests cr
			WHERE (cr.from_user_id = ? AND cr.to_user_id = u.id)
			   OR (cr.from_user_id = u.id AND cr.to_user_id = ?)
		)
	`
	args := []any{callerID, callerID, callerID}
	if len(exclude) > 0 {
		placeholders := strings.TrimRight(strings.Repeat("?,", len(exclude)), ",")
		query += ` AND u.id NOT IN (` + placeholders + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	query += ` ORDER BY u.created_at ASC, u.id ASC LIMIT 1`

	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.HashedPassword,
		&u.DisplayName,
		&u.PhotoURL,
		&u.About,
		&u.IsActive,
		&u.CreatedAt,
		&u.LastSeen,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next candidate: %w", err)
	}
	return u, nil
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.HashedPassword,
		&u.DisplayName,
		&u.PhotoURL,
		&u.About,
		&u.IsActive,
		&u.CreatedAt,
		&u.LastSeen,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
