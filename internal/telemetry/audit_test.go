package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holiday-service/internal/observability"
)

type capturePublisher struct {
	routingKey string
	event      any
	err        error
}

func (p *capturePublisher) Publish(_ context.Context, routingKey string, event any) error {
	p.routingKey = routingKey
	p.event = event
	return p.err
}

func TestAuditEmitterEmit(t *testing.T) {
	pub := &capturePublisher{}
	emitter := NewAuditEmitter(pub, "audit.holiday", "holiday-service", "test")
	emitter.now = func() time.Time { return time.Date(2025, 12, 25, 12, 0, 0, 0, time.UTC) }

	emitter.Emit(context.Background(), AuditEvent{Action: "connection.accepted", Subject: "c-1", RequestID: "r-1", UserID: "u-1"})

	require.Equal(t, "audit.holiday", pub.routingKey)
	envelope, ok := pub.event.(AuditEnvelope)
	require.True(t, ok)
	assert.Equal(t, "audit_log", envelope.EventType)
	assert.Equal(t, "2025-12-25T12:00:00Z", envelope.OccurredAt)
	assert.Equal(t, "connection.accepted", envelope.Payload.Action)
	require.NotNil(t, envelope.UserID)
	assert.Equal(t, "u-1", *envelope.UserID)
}

func TestAuditEmitterFallsBackToContextRequestID(t *testing.T) {
	pub := &capturePublisher{}
	emitter := NewAuditEmitter(pub, "audit.holiday", "holiday-service", "test")

	ctx := observability.WithRequestID(context.Background(), "ctx-req")
	emitter.Emit(ctx, AuditEvent{Action: "user.blocked"})

	envelope, ok := pub.event.(AuditEnvelope)
	require.True(t, ok)
	assert.Equal(t, "ctx-req", envelope.RequestID)
	assert.Nil(t, envelope.UserID)
}

func TestAuditEmitterSwallowsPublishError(t *testing.T) {
	pub := &capturePublisher{err: assert.AnError}
	emitter := NewAuditEmitter(pub, "audit.holiday", "holiday-service", "test")

	assert.NotPanics(t, func() {
		emitter.Emit(context.Background(), AuditEvent{Action: "account.deleted"})
	})

	var nilEmitter *AuditEmitter
	assert.NotPanics(t, func() { nilEmitter.Emit(context.Background(), AuditEvent{}) })
}

func TestInitTracerWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "", "holiday-service", "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
