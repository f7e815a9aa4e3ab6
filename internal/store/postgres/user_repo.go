package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

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
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, hashed_password, display_name, photo_url, about, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id
	`, u.Username, u.Email, u.HashedPassword, u.DisplayName, u.PhotoURL, u.About).Scan(&u.ID)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET email = $1, hashed_password = $2, display_name = $3, photo_url = $4, about = $5, is_active = $6
		WHERE id = $7
	`
	if _, err := r.db.ExecContext(ctx, query, u.Email, u.HashedPassword, u.DisplayName, u.PhotoURL, u.About, u.IsActive, u.ID); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = FALSE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	return nil
}

func (r *UserRepo) TouchLastSeen(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET last_seen = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touch last seen: %w", err)
	}
	return nil
}

func (r *UserRepo) NextCandidate(ctx context.Context, callerID int64, exclude []int64) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users u
		WHERE u.id <> $1
		AND u.is_active
		AND NOT EXISTS (
			SELECT 1 FROM connection_requests cr
			WHERE (cr.from_user_id = $1 AND cr.to_user_id = u.id)
			   OR (cr.from_user_id = u.id AND cr.to_user_id = $1)
		)
	`
	args := []any{callerID}
	if len(exclude) > 0 {
		query += ` AND u.id <> ALL(ARRAY[`
		for i, id := range exclude {
			if i > 0 {
				query += `,`
			}
			query += `$` + strconv.Itoa(len(args)+1)
			args = append(args, id)
		}
		query += `]::bigint[])`
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
