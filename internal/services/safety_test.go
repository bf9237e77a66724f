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
	"holiday-service/internal/repositories"
)

func TestBlock(t *testing.T) {
	store := mocks.NewStore()
	svc := NewSafetyService(store, nil)
	a, b := uuid.New(), uuid.New()

	assert.ErrorIs(t, svc.Block(context.Background(), a, a), ErrInvalidTarget)

	store.Users.On("GetByID", mock.Anything, b).Return(models.User{ID: b}, nil).Once()
	store.Blocks.On("Create", mock.Anything, a, b).Return(nil).Once()
	require.NoError(t, svc.Block(context.Background(), a, b))

	missing := uuid.New()
	store.Users.On("GetByID", mock.Anything, missing).Return(models.User{}, repositories.ErrNotFound).Once()
	assert.ErrorIs(t, svc.Block(context.Background(), a, missing), ErrNotFound)
	store.AssertExpectations(t)
}

func TestUnblockAndList(t *testing.T) {
	store := mocks.NewStore()
	svc := NewSafetyService(store, nil)
	a, b := uuid.New(), uuid.New()

	store.Blocks.On("Delete", mock.Anything, a, b).Return(nil).Once()
	store.Blocks.On("ListByBlocker", mock.Anything, a).Return([]models.Block{}, nil).Once()

	require.NoError(t, svc.Unblock(context.Background(), a, b))
	blocks, err := svc.ListBlocked(context.Background(), a)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestReport(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	t.Run("stores report", func(t *testing.T) {
		store := mocks.NewStore()
		svc := NewSafetyService(store, nil)
		conv := models.Conversation{ID: uuid.New(), GuestID: a, HostID: b}
		store.Conversations.On("Get", mock.Anything, conv.ID).Return(conv, nil).Once()
		store.Blocks.On("CreateReport", mock.Anything, mock.MatchedBy(func(r models.Report) bool {
			return r.ReporterID == a && r.ReportedID == b && r.Reason == "spam"
		})).Return(models.Report{ID: uuid.New()}, nil).Once()

		_, err := svc.Report(context.Background(), a, ReportInput{ReportedID: b, ConversationID: &conv.ID, Reason: " spam "})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("conversation must include both", func(t *testing.T) {
		store := mocks.NewStore()
		svc := NewSafetyService(store, nil)
		conv := models.Conversation{ID: uuid.New(), GuestID: a, HostID: uuid.New()}
		store.Conversations.On("Get", mock.Anything, conv.ID).Return(conv, nil).Once()

		_, err := svc.Report(context.Background(), a, ReportInput{ReportedID: b, ConversationID: &conv.ID, Reason: "spam"})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("reason required", func(t *testing.T) {
		svc := NewSafetyService(mocks.NewStore(), nil)
		_, err := svc.Report(context.Background(), a, ReportInput{ReportedID: b})
		assert.ErrorIs(t, err, ErrValidation)
	})
}
