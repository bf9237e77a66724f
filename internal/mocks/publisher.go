package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"holiday-service/internal/models"
	"holiday-service/internal/notify"
)

// PublisherMock stands in for the AMQP publisher.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// BroadcasterMock records conversation events.
type BroadcasterMock struct {
	mock.Mock
}

func (m *BroadcasterMock) BroadcastConversationEvent(conversationID uuid.UUID, event models.ConversationEvent) {
	m.Called(conversationID, event)
}

// NotifierMock records notifications.
type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) Notify(n notify.Notification) {
	m.Called(n)
}
