package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"holiday-service/internal/mocks"
	"holiday-service/internal/models"
	"holiday-service/internal/moderation"
	"holiday-service/internal/repositories"
)

type staticRules []models.BannedWord

func (r staticRules) Rules(context.Context) ([]models.BannedWord, error) { return r, nil }

func newConversationService(store *mocks.Store) (*ConversationService, *mocks.BroadcasterMock) {
	bc := new(mocks.BroadcasterMock)
	gate := moderation.NewGate(staticRules{{Pattern: "venmo", Category: "payment"}})
	svc := NewConversationService(store, gate, nil, bc)
	svc.now = func() time.Time { return testNow }
	return svc, bc
}

func TestRequestJoinCreatesWithFirstMessage(t *testing.T) {
	store := mocks.NewStore()
	svc, _ := newConversationService(store)
	guest, host := uuid.New(), uuid.New()
	conv := models.Conversation{ID: uuid.New(), GuestID: guest, HostID: host, Status: models.ConversationRequested}

	store.Conversations.On("GetByPair", mock.Anything, guest, host).Return(models.Conversation{}, repositories.ErrNotFound).Once()
	store.Users.On("GetByID", mock.Anything, host).Return(models.User{ID: host}, nil).Once()
	store.Blocks.On("ExistsBetween", mock.Anything, guest, host).Return(false, nil).Once()
	store.Conversations.On("CreateIfAbsent", mock.Anything, guest, host, models.ConversationRequested, testNow).Return(conv, true, nil).Once()
	store.Messages.On("Create", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
		return m.SenderID == guest && m.Content == "Can I join?" && m.ModerationStatus == models.ModerationClean && !m.Read
	})).Return(models.Message{ID: uuid.New(), ModerationStatus: models.ModerationClean}, nil).Once()
	store.Conversations.On("TouchLastMessage", mock.Anything, conv.ID, testNow).Return(nil).Once()

	got, created, err := svc.RequestJoin(context.Background(), guest, host, "Can I join?")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, conv.ID, got.ID)
	store.AssertExpectations(t)
}

func TestRequestJoinIsIdempotent(t *testing.T) {
	guest, host := uuid.New(), uuid.New()
	existing := models.Conversation{ID: uuid.New(), GuestID: guest, HostID: host, Status: models.ConversationRequested}

	t.Run("second request returns the same conversation", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newConversationService(store)
		store.Conversations.On("GetByPair", mock.Anything, guest, host).Return(existing, nil).Twice()

		first, _, err := svc.RequestJoin(context.Background(), guest, host, "hello")
		require.NoError(t, err)
		second, created, err := svc.RequestJoin(context.Background(), guest, host, "hello again")
		require.NoError(t, err)

		assert.False(t, created)
		assert.Equal(t, first.ID, second.ID)
		store.Messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		store.Conversations.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank message on existing pair", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newConversationService(store)
		store.Conversations.On("GetByPair", mock.Anything, guest, host).Return(existing, nil).Once()

		got, created, err := svc.RequestJoin(context.Background(), guest, host, "   ")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, got.ID)
	})

	t.Run("block added after the conversation exists", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newConversationService(store)
		store.Conversations.On("GetByPair", mock.Anything, host, guest).Return(existing, nil).Once()

		got, created, err := svc.RequestJoin(context.Background(), host, guest, "still there?")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, got.ID)
		store.Blocks.AssertNotCalled(t, "ExistsBetween", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent creator wins the insert", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newConversationService(store)
		store.Conversations.On("GetByPair", mock.Anything, guest, host).Return(models.Conversation{}, repositories.ErrNotFound).Once()
		store.Users.On("GetByID", mock.Anything, host).Return(models.User{ID: host}, nil).Once()
		store.Blocks.On("ExistsBetween", mock.Anything, guest, host).Return(false, nil).Once()
		store.Conversations.On("CreateIfAbsent", mock.Anything, guest, host, models.ConversationRequested, testNow).Return(existing, false, nil).Once()

		got, created, err := svc.RequestJoin(context.Background(), guest, host, "hello")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, existing.ID, got.ID)
		store.Messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestRequestJoinValidation(t *testing.T) {
	store := mocks.NewStore()
	svc, _ := newConversationService(store)
	a, b := uuid.New(), uuid.New()

	_, _, err := svc.RequestJoin(context.Background(), a, a, "hi")
	assert.ErrorIs(t, err, ErrInvalidTarget)

	store.Conversations.On("GetByPair", mock.Anything, a, b).Return(models.Conversation{}, repositories.ErrNotFound).Once()
	_, _, err = svc.RequestJoin(context.Background(), a, b, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRequestJoinRefusedWhenBlocked(t *testing.T) {
	store := mocks.NewStore()
	svc, _ := newConversationService(store)
	guest, host := uuid.New(), uuid.New()

	store.Conversations.On("GetByPair", mock.Anything, guest, host).Return(models.Conversation{}, repositories.ErrNotFound).Once()
	store.Users.On("GetByID", mock.Anything, host).Return(models.User{ID: host}, nil).Once()
	store.Blocks.On("ExistsBetween", mock.Anything, guest, host).Return(true, nil).Once()

	_, _, err := svc.RequestJoin(context.Background(), guest, host, "hi")
	assert.ErrorIs(t, err, ErrBlocked)
	store.Conversations.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerRequest(t *testing.T) {
	guest, host := uuid.New(), uuid.New()
	requested := models.Conversation{ID: uuid.New(), GuestID: guest, HostID: host, Status: models.ConversationRequested}

	t.Run("host accepts", func(t *testing.T) {
		store := mocks.NewStore()
		svc, bc := newConversationService(store)
		store.Conversations.On("GetForUpdate", mock.Anything, requested.ID).Return(requested, nil).Once()
		store.Conversations.On("SetStatus", mock.Anything, requested.ID, models.ConversationAccepted).Return(nil).Once()
		store.Messages.On("Create", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
			return m.Kind == models.MessageSystem && m.SenderID == host
		})).Return(models.Message{ID: uuid.New(), Kind: models.MessageSystem}, nil).Once()
		store.Conversations.On("TouchLastMessage", mock.Anything, requested.ID, testNow).Return(nil).Once()
		bc.On("BroadcastConversationEvent", requested.ID, mock.MatchedBy(func(e models.ConversationEvent) bool {
			return e.Type == "status" && e.Status == models.ConversationAccepted && e.Message != nil
		})).Once()

		got, err := svc.AcceptRequest(context.Background(), host, requested.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ConversationAccepted, got.Status)
		store.AssertExpectations(t)
		bc.AssertExpectations(t)
	})

	t.Run("host declines", func(t *testing.T) {
		store := mocks.NewStore()
		svc, bc := newConversationService(store)
		store.Conversations.On("GetForUpdate", mock.Anything, requested.ID).Return(requested, nil).Once()
		store.Conversations.On("SetStatus", mock.Anything, requested.ID, models.ConversationDeclined).Return(nil).Once()
		bc.On("BroadcastConversationEvent", requested.ID, mock.Anything).Once()

		got, err := svc.DeclineRequest(context.Background(), host, requested.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ConversationDeclined, got.Status)
		store.Messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("guest cannot answer", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newConversationService(store)
		store.Conversations.On("GetForUpdate", mock.Anything, requested.ID).Return(requested, nil).Once()

		_, err := svc.AcceptRequest(context.Background(), guest, requested.ID)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("already accepted", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newConversationService(store)
		accepted := requested
		accepted.Status = models.ConversationAccepted
		store.Conversations.On("GetForUpdate", mock.Anything, requested.ID).Return(accepted, nil).Once()

		_, err := svc.DeclineRequest(context.Background(), host, requested.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func acceptedConversation(guest, host uuid.UUID) models.Conversation {
	return models.Conversation{ID: uuid.New(), GuestID: guest, HostID: host, Status: models.ConversationAccepted}
}

func TestSendMessageStoresAndBroadcasts(t *testing.T) {
	store := mocks.NewStore()
	svc, bc := newConversationService(store)
	a, b := uuid.New(), uuid.New()
	conv := acceptedConversation(a, b)
	stored := models.Message{ID: uuid.New(), ConversationID: conv.ID, SenderID: b, Content: "Hi!", ModerationStatus: models.ModerationClean}

	store.Conversations.On("GetForUpdate", mock.Anything, conv.ID).Return(conv, nil).Once()
	store.Blocks.On("ExistsBetween", mock.Anything, a, b).Return(false, nil).Once()
	store.Messages.On("Create", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
		return m.SenderID == b && m.Content == "Hi!" && m.Kind == models.MessageText && m.CreatedAt.Equal(testNow)
	})).Return(stored, nil).Once()
	store.Conversations.On("TouchLastMessage", mock.Anything, conv.ID, testNow).Return(nil).Once()
	bc.On("BroadcastConversationEvent", conv.ID, mock.MatchedBy(func(e models.ConversationEvent) bool {
		return e.Type == "message" && e.Message != nil && e.Message.ID == stored.ID
	})).Once()

	got, err := svc.SendMessage(context.Background(), b, conv.ID, "  Hi!  ")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)
	store.AssertExpectations(t)
	bc.AssertExpectations(t)
}

func TestSendMessageFlaggedIsStillStored(t *testing.T) {
	store := mocks.NewStore()
	svc, bc := newConversationService(store)
	a, b := uuid.New(), uuid.New()
	conv := acceptedConversation(a, b)

	store.Conversations.On("GetForUpdate", mock.Anything, conv.ID).Return(conv, nil).Once()
	store.Blocks.On("ExistsBetween", mock.Anything, a, b).Return(false, nil).Once()
	store.Messages.On("Create", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
		return m.ModerationStatus == models.ModerationFlagged && m.ModerationCategory != nil && *m.ModerationCategory == "payment"
	})).Return(models.Message{ID: uuid.New(), ConversationID: conv.ID, ModerationStatus: models.ModerationFlagged}, nil).Once()
	store.Conversations.On("TouchLastMessage", mock.Anything, conv.ID, testNow).Return(nil).Once()
	bc.On("BroadcastConversationEvent", conv.ID, mock.Anything).Once()

	got, err := svc.SendMessage(context.Background(), a, conv.ID, "send it via VENMO please")
	require.NoError(t, err)
	assert.Equal(t, models.ModerationFlagged, got.ModerationStatus)
	store.AssertExpectations(t)
}

func TestSendMessageRejections(t *testing.T) {
	a, b, outsider := uuid.New(), uuid.New(), uuid.New()

	t.Run("not a participant", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newConversationService(store)
		conv := acceptedConversation(a, b)
		store.Conversations.On("GetForUpdate", mock.Anything, conv.ID).Return(conv, nil).Once()

		_, err := svc.SendMessage(context.Background(), outsider, conv.ID, "hi")
		assert.ErrorIs(t, err, ErrNotAuthorized)
		store.Messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("blocked either direction", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newConversationService(store)
		conv := acceptedConversation(a, b)
		store.Conversations.On("GetForUpdate", mock.Anything, conv.ID).Return(conv, nil).Once()
		store.Blocks.On("ExistsBetween", mock.Anything, a, b).Return(true, nil).Once()

		_, err := svc.SendMessage(context.Background(), a, conv.ID, "hi")
		assert.ErrorIs(t, err, ErrBlocked)
		store.Messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("declined conversation", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newConversationService(store)
		conv := acceptedConversation(a, b)
		conv.Status = models.ConversationDeclined
		store.Conversations.On("GetForUpdate", mock.Anything, conv.ID).Return(conv, nil).Once()
		store.Blocks.On("ExistsBetween", mock.Anything, a, b).Return(false, nil).Once()

		_, err := svc.SendMessage(context.Background(), b, conv.ID, "hi")
		assert.ErrorIs(t, err, ErrConversationClosed)
		store.Messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing conversation", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newConversationService(store)
		id := uuid.New()
		store.Conversations.On("GetForUpdate", mock.Anything, id).Return(models.Conversation{}, repositories.ErrNotFound).Once()

		_, err := svc.SendMessage(context.Background(), a, id, "hi")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("too long", func(t *testing.T) {
		svc, _ := newConversationService(mocks.NewStore())
		_, err := svc.SendMessage(context.Background(), a, uuid.New(), strings.Repeat("x", MaxMessageLength+1))
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestSendMessageTimestampsStayMonotonic(t *testing.T) {
	store := mocks.NewStore()
	svc, bc := newConversationService(store)
	a, b := uuid.New(), uuid.New()
	conv := acceptedConversation(a, b)
	last := testNow.Add(time.Second)
	conv.LastMessageAt = &last
	want := last.Add(time.Microsecond)

	store.Conversations.On("GetForUpdate", mock.Anything, conv.ID).Return(conv, nil).Once()
	store.Blocks.On("ExistsBetween", mock.Anything, a, b).Return(false, nil).Once()
	store.Messages.On("Create", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
		return m.CreatedAt.Equal(want)
	})).Return(models.Message{ID: uuid.New(), ConversationID: conv.ID}, nil).Once()
	store.Conversations.On("TouchLastMessage", mock.Anything, conv.ID, want).Return(nil).Once()
	bc.On("BroadcastConversationEvent", conv.ID, mock.Anything).Once()

	_, err := svc.SendMessage(context.Background(), a, conv.ID, "later")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestNextTimestamp(t *testing.T) {
	earlier := testNow.Add(-time.Minute)
	assert.Equal(t, testNow, nextTimestamp(testNow, nil))
	assert.Equal(t, testNow, nextTimestamp(testNow, &earlier))
	same := testNow
	assert.Equal(t, testNow.Add(time.Microsecond), nextTimestamp(testNow, &same))
}

func TestMarkAsRead(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	conv := acceptedConversation(a, b)

	t.Run("marks counterpart messages", func(t *testing.T) {
		store := mocks.NewStore()
		svc, bc := newConversationService(store)
		store.Conversations.On("Get", mock.Anything, conv.ID).Return(conv, nil).Once()
		store.Messages.On("MarkRead", mock.Anything, conv.ID, a).Return(int64(2), nil).Once()
		bc.On("BroadcastConversationEvent", conv.ID, models.ConversationEvent{
			Type: "read", ConversationID: conv.ID, ReaderID: a, ReadCount: 2,
		}).Once()

		n, err := svc.MarkAsRead(context.Background(), a, conv.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		bc.AssertExpectations(t)
	})

	t.Run("nothing unread is a no-op", func(t *testing.T) {
		store := mocks.NewStore()
		svc, bc := newConversationService(store)
		store.Conversations.On("Get", mock.Anything, conv.ID).Return(conv, nil).Once()
		store.Messages.On("MarkRead", mock.Anything, conv.ID, b).Return(int64(0), nil).Once()

		n, err := svc.MarkAsRead(context.Background(), b, conv.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
		bc.AssertNotCalled(t, "BroadcastConversationEvent", mock.Anything, mock.Anything)
	})

	t.Run("outsider", func(t *testing.T) {
		store := mocks.NewStore()
		svc, _ := newConversationService(store)
		store.Conversations.On("Get", mock.Anything, conv.ID).Return(conv, nil).Once()

		_, err := svc.MarkAsRead(context.Background(), uuid.New(), conv.ID)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestListMessagesParticipantOnly(t *testing.T) {
	store := mocks.NewStore()
	svc, _ := newConversationService(store)
	a, b := uuid.New(), uuid.New()
	conv := acceptedConversation(a, b)
	msgs := []models.Message{{ID: uuid.New(), ModerationStatus: models.ModerationFlagged}}

	store.Conversations.On("Get", mock.Anything, conv.ID).Return(conv, nil).Twice()
	store.Messages.On("ListForConversation", mock.Anything, conv.ID).Return(msgs, nil).Once()

	got, err := svc.ListMessages(context.Background(), b, conv.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.ListMessages(context.Background(), uuid.New(), conv.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestInboxOrdersByActivityAndCountsUnread(t *testing.T) {
	store := mocks.NewStore()
	svc, _ := newConversationService(store)
	me, b, c := uuid.New(), uuid.New(), uuid.New()
	older := testNow.Add(-time.Hour)
	quiet := models.Conversation{ID: uuid.New(), GuestID: me, HostID: b, CreatedAt: testNow.Add(-2 * time.Hour)}
	busy := models.Conversation{ID: uuid.New(), GuestID: c, HostID: me, CreatedAt: testNow.Add(-3 * time.Hour), LastMessageAt: &older}
	fresh := models.Conversation{ID: uuid.New(), GuestID: me, HostID: c, CreatedAt: testNow}
	latest := &models.Message{ID: uuid.New(), Content: "see you"}

	store.Conversations.On("ListInbox", mock.Anything, me).Return([]models.InboxRow{
		{Conversation: quiet},
		{Conversation: busy, LastMessage: latest, UnreadCount: 3},
		{Conversation: fresh},
	}, nil).Once()
	store.Profiles.On("ListByUserIDs", mock.Anything, []uuid.UUID{b, c}).
		Return([]models.Profile{{UserID: b, Name: "Bruno"}, {UserID: c, Name: "Carla"}}, nil).Once()
	store.Users.On("ListByIDs", mock.Anything, []uuid.UUID{b, c}).Return(nil, nil).Once()

	got, err := svc.Inbox(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, fresh.ID, got[0].Conversation.ID)
	assert.Equal(t, busy.ID, got[1].Conversation.ID)
	assert.Equal(t, quiet.ID, got[2].Conversation.ID)
	assert.Equal(t, 3, got[1].UnreadCount)
	assert.Equal(t, "Carla", got[1].Counterpart.Name)
	assert.Equal(t, latest, got[1].LastMessage)
	assert.Equal(t, "Bruno", got[2].Counterpart.Name)
}
