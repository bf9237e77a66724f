// Package notify delivers outbound notifications without ever blocking or
// failing the request that triggered them.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"holiday-service/internal/observability"
)

type Template string

const (
	InvitationReceived Template = "invitation_received"
	InvitationAccepted Template = "invitation_accepted"
	InvitationDeclined Template = "invitation_declined"
)

// Notification is one message for the external notification channel.
type Notification struct {
	Recipient string
	Template  Template
	Params    map[string]string
}

// Notifier accepts notifications fire-and-forget.
type Notifier interface {
	Notify(n Notification)
}

// Publisher is the transport the dispatcher hands notifications to.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Envelope is the wire shape published for the mailer.
type Envelope struct {
	SchemaVersion int               `json:"schema_version"`
	Template      Template          `json:"template"`
	Recipient     string            `json:"recipient"`
	Params        map[string]string `json:"params"`
	OccurredAt    string            `json:"occurred_at"`
}

// RoutingKey is the AMQP routing key for a template.
func RoutingKey(t Template) string {
	return "notifications." + string(t)
}

// Dispatcher queues notifications and publishes them from background workers.
// A full queue drops the notification instead of blocking the caller.
type Dispatcher struct {
	publisher Publisher
	timeout   time.Duration
	queue     chan Notification
	wg        sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts workers goroutines draining a queue of queueSize.
func NewDispatcher(publisher Publisher, queueSize, workers int, timeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	d := &Dispatcher{
		publisher: publisher,
		timeout:   timeout,
		queue:     make(chan Notification, queueSize),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
	return d
}

// Notify enqueues n and returns immediately.
func (d *Dispatcher) Notify(n Notification) {
	if n.Recipient == "" {
		observability.IncNotification(string(n.Template), "no_recipient")
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		observability.IncNotification(string(n.Template), "dropped")
		log.Warn().Str("template", string(n.Template)).Msg("notify: dispatcher closed, dropping notification")
		return
	}

	select {
	case d.queue <- n:
	default:
		observability.IncNotification(string(n.Template), "dropped")
		log.Warn().Str("template", string(n.Template)).Msg("notify: queue full, dropping notification")
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	envelope := Envelope{
		SchemaVersion: 1,
		Template:      n.Template,
		Recipient:     n.Recipient,
		Params:        n.Params,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := d.publisher.Publish(ctx, RoutingKey(n.Template), envelope); err != nil {
		observability.IncNotification(string(n.Template), "failed")
		log.Error().Err(err).Str("template", string(n.Template)).Msg("notify: delivery failed")
		return
	}
	observability.IncNotification(string(n.Template), "sent")
}

// Close stops accepting notifications and waits for queued ones to drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}
