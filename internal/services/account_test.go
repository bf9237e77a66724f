package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"holiday-service/internal/mocks"
	"holiday-service/internal/models"
)

func TestDeleteAccountCascadeOrder(t *testing.T) {
	store := mocks.NewStore()
	svc := NewAccountService(store, nil)
	user, other := uuid.New(), uuid.New()
	c1 := models.Conversation{ID: uuid.New(), GuestID: user, HostID: other}
	c2 := models.Conversation{ID: uuid.New(), GuestID: other, HostID: user}

	var steps []string
	record := func(step string) func(mock.Arguments) {
		return func(mock.Arguments) { steps = append(steps, step) }
	}

	store.Profiles.On("Delete", mock.Anything, user).Return(nil).Run(record("profile")).Once()
	store.Conversations.On("ListForUser", mock.Anything, user).Return([]models.Conversation{c1, c2}, nil).Once()
	store.Messages.On("DeleteForConversation", mock.Anything, c1.ID).Return(nil).Run(record("messages:c1")).Once()
	store.Conversations.On("Delete", mock.Anything, c1.ID).Return(nil).Run(record("conversation:c1")).Once()
	store.Messages.On("DeleteForConversation", mock.Anything, c2.ID).Return(nil).Run(record("messages:c2")).Once()
	store.Conversations.On("Delete", mock.Anything, c2.ID).Return(nil).Run(record("conversation:c2")).Once()
	store.Connections.On("DeleteForUser", mock.Anything, user).Return(int64(3), nil).Run(record("connections")).Once()
	store.Gatherings.On("RemoveMemberFromOthers", mock.Anything, user).Return(int64(1), nil).Run(record("memberships")).Once()
	store.Gatherings.On("DeleteOwnedBy", mock.Anything, user).Return(int64(1), nil).Run(record("owned")).Once()
	store.Blocks.On("DeleteForUser", mock.Anything, user).Return(nil).Run(record("blocks")).Once()
	store.Users.On("Delete", mock.Anything, user).Return(nil).Run(record("user")).Once()

	require.NoError(t, svc.DeleteAccount(context.Background(), user))
	assert.Equal(t, []string{
		"profile",
		"messages:c1", "conversation:c1",
		"messages:c2", "conversation:c2",
		"connections", "memberships", "owned", "blocks", "user",
	}, steps)
	assert.Equal(t, 1, store.Transactions)
	store.AssertExpectations(t)
}

func TestDeleteAccountIsRetryableAfterPartialCleanup(t *testing.T) {
	store := mocks.NewStore()
	svc := NewAccountService(store, nil)
	user := uuid.New()

	store.Profiles.On("Delete", mock.Anything, user).Return(nil)
	store.Conversations.On("ListForUser", mock.Anything, user).Return(nil, nil)
	store.Connections.On("DeleteForUser", mock.Anything, user).Return(int64(0), nil)
	store.Gatherings.On("RemoveMemberFromOthers", mock.Anything, user).Return(int64(0), nil)
	store.Gatherings.On("DeleteOwnedBy", mock.Anything, user).Return(int64(0), nil)
	store.Blocks.On("DeleteForUser", mock.Anything, user).Return(nil)
	store.Users.On("Delete", mock.Anything, user).Return(nil)

	require.NoError(t, svc.DeleteAccount(context.Background(), user))
	require.NoError(t, svc.DeleteAccount(context.Background(), user))
}

func TestDeleteAccountStopsOnFailure(t *testing.T) {
	store := mocks.NewStore()
	svc := NewAccountService(store, nil)
	user := uuid.New()

	store.Profiles.On("Delete", mock.Anything, user).Return(nil).Once()
	store.Conversations.On("ListForUser", mock.Anything, user).Return(nil, assert.AnError).Once()

	err := svc.DeleteAccount(context.Background(), user)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, store.RolledBack)
	store.Users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
