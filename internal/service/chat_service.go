package service

import (
	"context"
	"fmt"
	"time"

	"devconnect_go/internal/domain"
)

// ChatService owns the per-pair message sequence. A chat exists exactly when
// an accepted connection request exists for the pair; the check happens at
// send and history time, nothing is materialized eagerly.
type ChatService struct {
	requests domain.RequestRepository
	messages domain.MessageRepository
	users    domain.UserRepository

	MaxMessageLen int
}

func NewChatService(
	requests domain.RequestRepository,
	messages domain.MessageRepository,
	users domain.UserRepository,
	maxMessageLen int,
) *ChatService {
	return &ChatService{
		requests:      requests,
		messages:      messages,
		users:         users,
		MaxMessageLen: maxMessageLen,
	}
}

type SendInput struct {
	ToUserID int64
	Text     string
	ImageURL *string
}

// Send appends a message to the pair's chat with status "sent". Delivery to
// live handles is the caller's concern; an offline recipient simply leaves
// the message in the sent state to be picked up via History.
func (s *ChatService) Send(ctx context.Context, fromID int64, in SendInput) (*domain.Message, error) {
	if fromID == in.ToUserID {
		return nil, fmt.Errorf("%w: cannot message yourself", domain.ErrInvalidInput)
	}
	if in.Text == "" && (in.ImageURL == nil || *in.ImageURL == "") {
		return nil, fmt.Errorf("%w: message requires text or an image", domain.ErrInvalidInput)
	}
	if s.MaxMessageLen > 0 && len([]rune(in.Text)) > s.MaxMessageLen {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, s.MaxMessageLen)
	}

	connected, err := s.requests.IsConnected(ctx, fromID, in.ToUserID)
	if err != nil {
		return nil, fmt.Errorf("check connection: %w", err)
	}
	if !connected {
		return nil, domain.ErrNotConnected
	}

	lo, hi := domain.PairOf(fromID, in.ToUserID)
	msg := &domain.Message{
		PairLo:    lo,
		PairHi:    hi,
		SenderID:  fromID,
		Text:      in.Text,
		ImageURL:  in.ImageURL,
		Status:    domain.MessageStatusSent,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns the pair's messages in creation order. Pure read; callers
// may repeat it freely.
func (s *ChatService) History(ctx context.Context, callerID, otherID int64, limit int) ([]*domain.Message, error) {
	connected, err := s.requests.IsConnected(ctx, callerID, otherID)
	if err != nil {
		return nil, fmt.Errorf("check connection: %w", err)
	}
	if !connected {
		return nil, domain.ErrNotConnected
	}

	lo, hi := domain.PairOf(callerID, otherID)
	return s.messages.ListForPair(ctx, lo, hi, limit)
}

// MarkDelivered advances a message from sent to delivered after at least one
// live handle of the recipient took it.
func (s *ChatService) MarkDelivered(ctx context.Context, messageID int64) (bool, error) {
	return s.messages.MarkDelivered(ctx, messageID)
}

// MarkSeen advances a message to seen on behalf of the viewer. Only the
// pair's non-sender may mark a message; repeats and races are no-ops
// (advanced=false) since the status can only move forward. The returned
// message carries the sender id so the caller can notify them.
func (s *ChatService) MarkSeen(ctx context.Context, viewerID, messageID int64) (msg *domain.Message, advanced bool, err error) {
	msg, err = s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, false, fmt.Errorf("get message: %w", err)
	}
	if msg == nil {
		return nil, false, fmt.Errorf("message %d: %w", messageID, domain.ErrNotFound)
	}
	if !msg.InPair(viewerID) || msg.SenderID == viewerID {
		return nil, false, domain.ErrForbidden
	}

	advanced, err = s.messages.MarkSeen(ctx, messageID)
	if err != nil {
		return nil, false, err
	}
	if advanced {
		msg.Status = domain.MessageStatusSeen
	}
	return msg, advanced, nil
}

// MessageResponse is the wire shape for a message, with the sender profile
// fields the client renders.
type MessageResponse struct {
	ID          int64                `json:"id"`
	SenderID    int64                `json:"sender_id"`
	SenderName  string               `json:"sender_name"`
	SenderPhoto *string              `json:"sender_photo,omitempty"`
	Text        string               `json:"text"`
	ImageURL    *string              `json:"image_url,omitempty"`
	Status      domain.MessageStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
}

func (s *ChatService) ToResponse(ctx context.Context, m *domain.Message) (*MessageResponse, error) {
	resp := &MessageResponse{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		ImageURL:  m.ImageURL,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
	if u, err := s.users.GetByID(ctx, m.SenderID); err == nil && u != nil {
		resp.SenderName = u.DisplayName
		resp.SenderPhoto = u.PhotoURL
	}
	return resp, nil
}

func (s *ChatService) ToResponses(ctx context.Context, msgs []*domain.Message) ([]*MessageResponse, error) {
	res := make([]*MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		dto, err := s.ToResponse(ctx, m)
		if err != nil {
			return nil, err
		}
		res = append(res, dto)
	}
	return res, nil
}
