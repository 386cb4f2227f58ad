package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lostandfound/backend/internal/clock"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/dto"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type chatFixture struct {
	svc      *ChatService
	chats    *memChats
	messages *memMessages
	profiles *memProfiles
	notifier *memNotifier
	clk      *clock.Fixed
	alice    string
	bob      string
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		chats:    newMemChats(),
		messages: &memMessages{},
		profiles: newMemProfiles(),
		notifier: newMemNotifier(),
		clk:      &clock.Fixed{At: testNow},
		alice:    uuid.NewString(),
		bob:      uuid.NewString(),
	}
	ctx := context.Background()
	require.NoError(t, f.profiles.Create(ctx, &domain.Profile{UserID: f.alice, Username: "alice1"}))
	require.NoError(t, f.profiles.Create(ctx, &domain.Profile{UserID: f.bob, Username: "bob001"}))
	f.svc = NewChatService(f.chats, f.messages, f.profiles, f.notifier, f.clk, zap.NewNop())
	return f
}

func (f *chatFixture) send(t *testing.T, from, fromName, to, content string) *dto.MessageResponse {
	t.Helper()
	f.clk.At = f.clk.At.Add(time.Minute)
	out, err := f.svc.SendMessage(context.Background(), from, fromName, to, &dto.SendMessageRequest{Content: content})
	require.NoError(t, err)
	return out
}

func TestChat_SendOpensChatAndNotifies(t *testing.T) {
	f := newChatFixture(t)

	out := f.send(t, f.alice, "alice1", f.bob, "I found your wallet")
	assert.Equal(t, f.alice, out.AuthorID)
	assert.Equal(t, "I found your wallet", out.Content)
	assert.True(t, f.clk.At.Equal(out.CreationTime))

	id, err := ulid.ParseStrict(out.ID)
	require.NoError(t, err, "message ids are ULIDs")
	assert.Equal(t, ulid.Timestamp(f.clk.At), id.Time())

	require.Len(t, f.notifier.sent[f.bob], 1)
	assert.Equal(t, out.ID, f.notifier.sent[f.bob][0].ClientID)
	assert.Empty(t, f.notifier.sent[f.alice])

	f.send(t, f.bob, "bob001", f.alice, "thanks!")
	assert.Len(t, f.chats.items, 1, "both directions share one chat")
}

func TestChat_SendValidation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	req := &dto.SendMessageRequest{Content: "hello"}

	_, err := f.svc.SendMessage(ctx, "garbage", "x", f.bob, req)
	assert.True(t, domain.IsUnauthorized(err))

	_, err = f.svc.SendMessage(ctx, f.alice, "alice1", "garbage", req)
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.SendMessage(ctx, f.alice, "alice1", uuid.NewString(), req)
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.SendMessage(ctx, f.alice, "alice1", f.alice, req)
	assert.True(t, domain.IsBadRequest(err))

	assert.Empty(t, f.messages.items)
	assert.Empty(t, f.chats.items)
}

func TestChat_SendJoinsConcurrentlyOpenedChat(t *testing.T) {
	f := newChatFixture(t)
	f.chats.insertRace = &domain.Chat{
		ExposedID: "opened-by-bob",
		MemberKey: domain.ChatMemberKey(f.alice, f.bob),
		Members: []domain.ChatMember{
			{UserID: f.bob, Username: "bob001"},
			{UserID: f.alice, Username: "alice1"},
		},
	}

	f.send(t, f.alice, "alice1", f.bob, "hi")
	require.Len(t, f.messages.items, 1)
	assert.Equal(t, "opened-by-bob", f.messages.items[0].ChatID)
}

func TestChat_NotifierFailureDoesNotFailSend(t *testing.T) {
	f := newChatFixture(t)
	f.notifier.err = errBoom

	f.send(t, f.alice, "alice1", f.bob, "hi")
	assert.Len(t, f.messages.items, 1)
}

func TestChat_ListAndUnread(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	carol := uuid.NewString()
	require.NoError(t, f.profiles.Create(ctx, &domain.Profile{UserID: carol, Username: "carol1"}))

	f.send(t, f.alice, "alice1", f.bob, "first")
	f.send(t, carol, "carol1", f.bob, "second")

	count, err := f.svc.GetUnreadChatsCount(ctx, f.bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.UnreadChatsCount)

	chats, meta, err := f.svc.GetChats(ctx, f.bob, 1, 10)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, 2, meta.TotalItemCount)
	assert.Equal(t, "carol1", chats[0].Recipient.Username, "most recent first")
	assert.False(t, chats[0].Read)
	require.NotNil(t, chats[0].LastMessage)
	assert.Equal(t, "second", chats[0].LastMessage.Content)

	senderView, _, err := f.svc.GetChats(ctx, f.alice, 1, 10)
	require.NoError(t, err)
	require.Len(t, senderView, 1)
	assert.True(t, senderView[0].Read)
	assert.Equal(t, f.bob, senderView[0].Recipient.ID)

	page, _, err := f.svc.GetChats(ctx, f.bob, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "alice1", page[0].Recipient.Username)

	_, err = f.svc.GetUnreadChatsCount(ctx, "garbage")
	assert.True(t, domain.IsUnauthorized(err))
}

func TestChat_GetMessages(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		f.send(t, f.alice, "alice1", f.bob, content)
	}

	msgs, meta, err := f.svc.GetMessages(ctx, f.bob, f.alice, 1, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "three", msgs[0].Content, "newest first")
	assert.Equal(t, "two", msgs[1].Content)
	assert.Equal(t, 3, meta.TotalItemCount)
	assert.Equal(t, 2, meta.TotalPageCount)
	assert.Equal(t, 1, f.chats.markReads)

	count, err := f.svc.GetUnreadChatsCount(ctx, f.bob)
	require.NoError(t, err)
	assert.Zero(t, count.UnreadChatsCount, "reading marks the chat read")

	msgs, _, err = f.svc.GetMessages(ctx, f.bob, f.alice, 2, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "one", msgs[0].Content)
	assert.Equal(t, 1, f.chats.markReads, "already read chats are not updated again")

	_, _, err = f.svc.GetMessages(ctx, f.bob, uuid.NewString(), 1, 2)
	assert.True(t, domain.IsNotFound(err))
	_, _, err = f.svc.GetMessages(ctx, f.bob, "garbage", 1, 2)
	assert.True(t, domain.IsNotFound(err))
}

func TestChat_HugePageNumber(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	f.send(t, f.alice, "alice1", f.bob, "hi")
	lists := f.messages.lists

	require.NotPanics(t, func() {
		msgs, meta, err := f.svc.GetMessages(ctx, f.bob, f.alice, math.MaxInt, 20)
		require.NoError(t, err)
		assert.Empty(t, msgs)
		assert.Equal(t, math.MaxInt, meta.CurrentPage)

		chats, _, err := f.svc.GetChats(ctx, f.bob, math.MaxInt, 20)
		require.NoError(t, err)
		assert.Empty(t, chats)
	})
	assert.Equal(t, lists, f.messages.lists, "out of range pages skip the query")
}
