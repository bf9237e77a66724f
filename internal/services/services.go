// Package services holds the connection and conversation state machines,
// the privacy-gated profile projection and the account deletion cascade.
// Every mutating operation runs inside a single repositories transaction.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"holiday-service/internal/models"
	"holiday-service/internal/observability"
	"holiday-service/internal/telemetry"
)

// Auditor records state transitions.
type Auditor interface {
	Emit(ctx context.Context, ev telemetry.AuditEvent)
}

// Broadcaster pushes conversation events to live subscribers.
type Broadcaster interface {
	BroadcastConversationEvent(conversationID uuid.UUID, event models.ConversationEvent)
}

type noopAuditor struct{}

func (noopAuditor) Emit(context.Context, telemetry.AuditEvent) {}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastConversationEvent(uuid.UUID, models.ConversationEvent) {}

var tracer = otel.Tracer("holiday-service/services")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

func audit(ctx context.Context, a Auditor, action string, actor uuid.UUID, subject uuid.UUID, detail string) {
	a.Emit(ctx, telemetry.AuditEvent{
		Action:    action,
		Subject:   subject.String(),
		Detail:    detail,
		RequestID: observability.RequestIDFromContext(ctx),
		UserID:    actor.String(),
	})
}

// timestamps are stored with microsecond precision.
func nowMicro(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Microsecond)
}
