// Package rabbitmq publishes domain events (notifications, audit records and
// websocket lifecycle events) to a topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"holiday-service/internal/notify"
	"holiday-service/internal/observability"
	"holiday-service/internal/telemetry"
)

const dialTimeout = 5 * time.Second

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("rabbitmq: publisher closed")

// Publisher publishes JSON events to a topic exchange.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// Options configures the broker connection.
type Options struct {
	URL      string
	Exchange string
	AppID    string
}

// NewPublisher connects to the broker and declares the exchange. When AMQP is
// disabled or unreachable it returns a publisher that only logs, so the
// service keeps running without a broker.
func NewPublisher(opts Options) Publisher {
	if opts.URL == "" {
		return newNoop("empty amqp url", nil)
	}

	conn, err := amqp.DialConfig(opts.URL, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		return newNoop(err.Error(), err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return newNoop(err.Error(), err)
	}
	// durable topic exchange, not auto-deleted
	if err := ch.ExchangeDeclare(opts.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return newNoop(err.Error(), err)
	}

	log.Info().Str("exchange", opts.Exchange).Msg("rabbitmq connected")
	return &amqpPublisher{conn: conn, ch: ch, exchange: opts.Exchange, appID: opts.AppID, now: time.Now}
}

type amqpPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	appID    string
	closed   bool
	now      func() time.Time
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    p.now().UTC(),
		AppId:        p.appID,
		Headers:      headersFromContext(ctx),
		Body:         body,
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	p.mu.Unlock()

	if err != nil {
		observability.IncAMQPPublishError()
		log.Error().Err(err).Str("routing_key", routingKey).Msg("rabbitmq publish failed")
	}
	return err
}

func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// headersFromContext carries correlation ids to consumers.
func headersFromContext(ctx context.Context) amqp.Table {
	headers := amqp.Table{}
	if id := observability.RequestIDFromContext(ctx); id != "" {
		headers["x-request-id"] = id
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		headers["x-trace-id"] = sc.TraceID().String()
	}
	return headers
}

type noopPublisher struct {
	reason string
}

func newNoop(reason string, err error) noopPublisher {
	log.Warn().Err(err).Str("reason", reason).Msg("rabbitmq disabled, using noop")
	return noopPublisher{reason: reason}
}

func (noopPublisher) Publish(_ context.Context, routingKey string, event any) error {
	e := log.Debug().Str("routing_key", routingKey)
	describe(e, event).Msg("rabbitmq noop publish")
	return nil
}

func (noopPublisher) Close() error {
	return nil
}

// describe adds the identifying fields of known envelopes to a log event.
func describe(e *zerolog.Event, event any) *zerolog.Event {
	switch env := event.(type) {
	case telemetry.AuditEnvelope:
		return e.Str("action", env.Payload.Action).Str("request_id", env.RequestID)
	case notify.Envelope:
		return e.Str("template", string(env.Template))
	case observability.EventEnvelope:
		return e.Str("event_name", env.EventName).Str("request_id", env.RequestID)
	}
	return e
}

// Describe reports whether p talks to a broker and, if not, why.
func Describe(p Publisher) (mode, noopReason string) {
	switch pub := p.(type) {
	case *amqpPublisher:
		return "amqp", ""
	case noopPublisher:
		return "noop", pub.reason
	}
	return "unknown", ""
}
