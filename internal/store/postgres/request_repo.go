package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devconnect_go/internal/domain"
)

type RequestRepo struct {
	db *sql.DB
}

func NewRequestRepo(db *sql.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

var _ domain.RequestRepository = (*RequestRepo)(nil)

func (r *RequestRepo) Insert(ctx context.Context, req *domain.ConnectionRequest) error {
	lo, hi := domain.PairOf(req.FromUserID, req.ToUserID)
	// ON CONFLICT DO NOTHING makes the pair-uniqueness check and the write a
	// single atomic statement; no row back means the pair slot was taken.
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO connection_requests (pair_lo, pair_hi, from_user_id, to_user_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (pair_lo, pair_hi) DO NOTHING
		RETURNING id
	`, lo, hi, req.FromUserID, req.ToUserID, req.Status, req.CreatedAt).Scan(&req.ID)
	if err == sql.ErrNoRows {
		return domain.ErrDuplicateRequest
	}
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *RequestRepo) GetByID(ctx context.Context, id int64) (*domain.ConnectionRequest, error) {
	query := `
		SELECT id, from_user_id, to_user_id, status, created_at, reviewed_at
		FROM connection_requests
		WHERE id = $1
	`
	return r.scanRequest(r.db.QueryRowContext(ctx, query, id))
}

func (r *RequestRepo) GetByPair(ctx context.Context, a, b int64) (*domain.ConnectionRequest, error) {
	lo, hi := domain.PairOf(a, b)
	query := `
		SELECT id, from_user_id, to_user_id, status, created_at, reviewed_at
		FROM connection_requests
		WHERE pair_lo = $1 AND pair_hi = $2
	`
	return r.scanRequest(r.db.QueryRowContext(ctx, query, lo, hi))
}

func (r *RequestRepo) ReviewIfPending(ctx context.Context, id int64, decision domain.RequestStatus, reviewedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE connection_requests
		SET status = $1, reviewed_at = $2
		WHERE id = $3 AND status = $4
	`, decision, reviewedAt, id, domain.RequestStatusInterested)
	if err != nil {
		return false, fmt.Errorf("review request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *RequestRepo) ListReceived(ctx context.Context, userID int64) ([]*domain.ConnectionRequest, error) {
	query := `
		SELECT id, from_user_id, to_user_id, status, created_at, reviewed_at
		FROM connection_requests
		WHERE to_user_id = $1 AND status = $2
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, domain.RequestStatusInterested)
	if err != nil {
		return nil, fmt.Errorf("list received requests: %w", err)
	}
	defer rows.Close()

	var res []*domain.ConnectionRequest
	for rows.Next() {
		req := &domain.ConnectionRequest{}
		if err := rows.Scan(
			&req.ID,
			&req.FromUserID,
			&req.ToUserID,
			&req.Status,
			&req.CreatedAt,
			&req.ReviewedAt,
		); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		res = append(res, req)
	}
	return res, rows.Err()
}

func (r *RequestRepo) ListConnectedIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT CASE WHEN from_user_id = $1 THEN to_user_id ELSE from_user_id END
		FROM connection_requests
		WHERE (from_user_id = $1 OR to_user_id = $1) AND status = $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, domain.RequestStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("list connected ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *RequestRepo) IsConnected(ctx context.Context, a, b int64) (bool, error) {
	lo, hi := domain.PairOf(a, b)
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM connection_requests
			WHERE pair_lo = $1 AND pair_hi = $2 AND status = $3
		)
	`, lo, hi, domain.RequestStatusAccepted).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check connected: %w", err)
	}
	return exists, nil
}

func (r *RequestRepo) scanRequest(row *sql.Row) (*domain.ConnectionRequest, error) {
	req := &domain.ConnectionRequest{}
	err := row.Scan(
		&req.ID,
		&req.FromUserID,
		&req.ToUserID,
		&req.Status,
		&req.CreatedAt,
		&req.ReviewedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan request: %w", err)
	}
	return req, nil
}
