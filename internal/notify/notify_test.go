package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"holiday-service/internal/mocks"
	"holiday-service/internal/notify"
)

func TestDispatcherPublishesEnvelope(t *testing.T) {
	pub := new(mocks.PublisherMock)
	pub.On("Publish", mock.Anything, "notifications.invitation_received", mock.MatchedBy(func(e notify.Envelope) bool {
		return e.Recipient == "bob@example.com" && e.Params["date"] == "25 Dec"
	})).Return(nil).Once()

	d := notify.NewDispatcher(pub, 4, 1, time.Second)
	d.Notify(notify.Notification{Recipient: "bob@example.com", Template: notify.InvitationReceived, Params: map[string]string{"date": "25 Dec"}})
	d.Close()

	pub.AssertExpectations(t)
}

func TestDispatcherSwallowsPublishFailure(t *testing.T) {
	pub := new(mocks.PublisherMock)
	pub.On("Publish", mock.Anything, "notifications.invitation_declined", mock.Anything).Return(assert.AnError).Once()

	d := notify.NewDispatcher(pub, 4, 1, time.Second)
	assert.NotPanics(t, func() {
		d.Notify(notify.Notification{Recipient: "a@example.com", Template: notify.InvitationDeclined})
	})
	d.Close()

	pub.AssertExpectations(t)
}

func TestDispatcherSkipsEmptyRecipient(t *testing.T) {
	pub := new(mocks.PublisherMock)
	d := notify.NewDispatcher(pub, 4, 1, time.Second)
	d.Notify(notify.Notification{Template: notify.InvitationAccepted})
	d.Close()

	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

type blockingPublisher struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingPublisher) Publish(ctx context.Context, _ string, _ any) error {
	p.started <- struct{}{}
	<-p.release
	return nil
}

func TestDispatcherNotifyNeverBlocks(t *testing.T) {
	pub := &blockingPublisher{started: make(chan struct{}, 1), release: make(chan struct{})}
	d := notify.NewDispatcher(pub, 1, 1, time.Second)

	d.Notify(notify.Notification{Recipient: "a@example.com", Template: notify.InvitationReceived})
	<-pub.started

	done := make(chan struct{})
	go func() {
		d.Notify(notify.Notification{Recipient: "b@example.com", Template: notify.InvitationReceived})
		d.Notify(notify.Notification{Recipient: "c@example.com", Template: notify.InvitationReceived})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a slow publisher")
	}

	close(pub.release)
	go func() {
		for range pub.started {
		}
	}()
	d.Close()
	close(pub.started)
}

func TestDispatcherNotifyAfterClose(t *testing.T) {
	d := notify.NewDispatcher(new(mocks.PublisherMock), 1, 1, time.Second)
	d.Close()
	d.Close()

	require.NotPanics(t, func() {
		d.Notify(notify.Notification{Recipient: "a@example.com", Template: notify.InvitationReceived})
	})
}
