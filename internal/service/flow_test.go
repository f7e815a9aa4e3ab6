package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect_go/internal/domain"
	"devconnect_go/internal/store/sqlite"
)

type flowEnv struct {
	users    domain.UserRepository
	requests *RequestService
	feed     *FeedService
	chat     *ChatService
}

func newFlowEnv(t *testing.T) *flowEnv {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, sqlite.Migrate(db))
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepo(db)
	requests := sqlite.NewRequestRepo(db)
	messages := sqlite.NewMessageRepo(db)

	return &flowEnv{
		users:    users,
		requests: NewRequestService(requests, users),
		feed:     NewFeedService(users),
		chat:     NewChatService(requests, messages, users, 5000),
	}
}

func (e *flowEnv) addUser(t *testing.T, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, HashedPassword: "x", DisplayName: username, IsActive: true}
	require.NoError(t, e.users.Create(context.Background(), u), "create %s", username)
	return u
}

// Full round trip: feed -> submit -> review -> chat, including the
// store-and-forward path for a recipient with no live handle.
func TestConnectAndChatFlow(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	// alice sees bob in her feed and submits interest
	candidate, err := env.feed.NextCandidate(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, bob.ID, candidate.ID)

	req, err := env.requests.Submit(ctx, alice.ID, bob.ID, domain.RequestStatusInterested)
	require.NoError(t, err)
	env.feed.NoteReviewed(alice.ID)

	// no chat before acceptance
	_, err = env.chat.Send(ctx, alice.ID, SendInput{ToUserID: bob.ID, Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotConnected)

	// bob sees the pending request and accepts it
	received, err := env.requests.ListReceived(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, alice.ID, received[0].From.ID)

	_, err = env.requests.Review(ctx, bob.ID, req.ID, domain.RequestStatusAccepted)
	require.NoError(t, err)

	// neither side sees the other in the feed anymore
	candidate, err = env.feed.NextCandidate(ctx, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, candidate)

	// alice messages bob while he has no live handle; it stays "sent"
	msg, err := env.chat.Send(ctx, alice.ID, SendInput{ToUserID: bob.ID, Text: "hello bob"})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageStatusSent, msg.Status)

	// bob comes back, reads history, marks the message seen
	history, err := env.chat.History(ctx, bob.ID, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hello bob", history[0].Text)
	assert.Equal(t, domain.MessageStatusSent, history[0].Status)

	seen, advanced, err := env.chat.MarkSeen(ctx, bob.ID, msg.ID)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, domain.MessageStatusSeen, seen.Status)
	assert.Equal(t, alice.ID, seen.SenderID)

	// marking again changes nothing
	_, advanced, err = env.chat.MarkSeen(ctx, bob.ID, msg.ID)
	require.NoError(t, err)
	assert.False(t, advanced)
}

func TestRejectedPairCannotChatOrResubmit(t *testing.T) {
	env := newFlowEnv(t)
	ctx := context.Background()

	alice := env.addUser(t, "alice")
	bob := env.addUser(t, "bob")

	req, err := env.requests.Submit(ctx, alice.ID, bob.ID, domain.RequestStatusInterested)
	require.NoError(t, err)

	_, err = env.requests.Review(ctx, bob.ID, req.ID, domain.RequestStatusRejected)
	require.NoError(t, err)

	// the pair slot stays claimed in both directions
	_, err = env.requests.Submit(ctx, alice.ID, bob.ID, domain.RequestStatusInterested)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	_, err = env.requests.Submit(ctx, bob.ID, alice.ID, domain.RequestStatusInterested)
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)

	// rejection never opens a chat
	_, err = env.chat.Send(ctx, alice.ID, SendInput{ToUserID: bob.ID, Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotConnected)

	// and the decision is final
	_, err = env.requests.Review(ctx, bob.ID, req.ID, domain.RequestStatusAccepted)
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
}
