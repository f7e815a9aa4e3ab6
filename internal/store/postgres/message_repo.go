package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"devconnect_go/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO messages (pair_lo, pair_hi, sender_id, text, image_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, m.PairLo, m.PairHi, m.SenderID, m.Text, m.ImageURL, m.Status, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	query := `
		SELECT id, pair_lo, pair_hi, sender_id, text, image_url, status, created_at
		FROM messages
		WHERE id = $1
	`
	m := &domain.Message{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID,
		&m.PairLo,
		&m.PairHi,
		&m.SenderID,
		&m.Text,
		&m.ImageURL,
		&m.Status,
		&m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

func (r *MessageRepo) ListForPair(ctx context.Context, lo, hi int64, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, pair_lo, pair_hi, sender_id, text, image_url, status, created_at
		FROM messages
		WHERE pair_lo = $1 AND pair_hi = $2
		ORDER BY created_at ASC, id ASC
	`
	args := []any{lo, hi}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID,
			&m.PairLo,
			&m.PairHi,
			&m.SenderID,
			&m.Text,
			&m.ImageURL,
			&m.Status,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r *MessageRepo) MarkDelivered(ctx context.Context, id int64) (bool, error) {
	return r.advance(ctx, `
		UPDATE messages SET status = $1 WHERE id = $2 AND status = $3
	`, domain.MessageStatusDelivered, id, domain.MessageStatusSent)
}

func (r *MessageRepo) MarkSeen(ctx context.Context, id int64) (bool, error) {
	return r.advance(ctx, `
		UPDATE messages SET status = $1 WHERE id = $2 AND status IN ($3, $4)
	`, domain.MessageStatusSeen, id, domain.MessageStatusSent, domain.MessageStatusDelivered)
}

func (r *MessageRepo) advance(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("advance message status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
