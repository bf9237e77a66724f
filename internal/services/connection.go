package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"holiday-service/internal/models"
	"holiday-service/internal/notify"
	"holiday-service/internal/observability"
	"holiday-service/internal/repositories"
)

// ConnectionService is the invitation ledger: pending -> accepted | declined.
type ConnectionService struct {
	uow         repositories.UnitOfWork
	notifier    notify.Notifier
	auditor     Auditor
	broadcaster Broadcaster
	now         func() time.Time
}

func NewConnectionService(uow repositories.UnitOfWork, notifier notify.Notifier, auditor Auditor, broadcaster Broadcaster) *ConnectionService {
	s := &ConnectionService{uow: uow, notifier: notifier, auditor: auditor, broadcaster: broadcaster, now: time.Now}
	if s.auditor == nil {
		s.auditor = noopAuditor{}
	}
	if s.broadcaster == nil {
		s.broadcaster = noopBroadcaster{}
	}
	return s
}

// Propose creates a pending invitation from sender to recipient.
func (s *ConnectionService) Propose(ctx context.Context, senderID, recipientID uuid.UUID, date string) (models.Connection, error) {
	ctx, span := startSpan(ctx, "connections.propose")
	defer span.End()

	if senderID == recipientID {
		return models.Connection{}, ErrInvalidTarget
	}
	date = strings.TrimSpace(date)
	if date == "" {
		return models.Connection{}, validationError("date is required")
	}

	var (
		conn       models.Connection
		recipient  models.User
		senderName string
	)
	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		var err error
		recipient, err = r.Users.GetByID(ctx, recipientID)
		if err != nil {
			return notFound("recipient", err)
		}
		// An existing edge conflicts before any block is considered.
		edges, err := r.Connections.Between(ctx, senderID, recipientID)
		if err != nil {
			return fmt.Errorf("load connections: %w", err)
		}
		for _, e := range edges {
			if e.SenderID == senderID {
				return fmt.Errorf("%w: invitation already sent", ErrConflict)
			}
		}
		blocked, err := r.Blocks.ExistsBetween(ctx, senderID, recipientID)
		if err != nil {
			return fmt.Errorf("check block: %w", err)
		}
		if blocked {
			return ErrBlocked
		}

		conn, err = r.Connections.Create(ctx, senderID, recipientID, date, nowMicro(s.now))
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("%w: invitation already sent", ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("create connection: %w", err)
		}
		senderName = displayName(ctx, r, senderID)
		return nil
	})
	if err != nil {
		return models.Connection{}, err
	}

	observability.IncConnectionTransition("proposed")
	audit(ctx, s.auditor, "connection.proposed", senderID, conn.ID, date)
	s.notify(recipient.Email, notify.InvitationReceived, map[string]string{
		"sender_name": senderName,
		"date":        date,
	})
	return conn, nil
}

// Respond lets the recipient accept or decline a pending invitation.
// Accepting ensures exactly one conversation exists for the pair.
func (s *ConnectionService) Respond(ctx context.Context, recipientID, connectionID uuid.UUID, accept bool) (models.Connection, error) {
	ctx, span := startSpan(ctx, "connections.respond")
	defer span.End()

	now := nowMicro(s.now)
	var (
		conn          models.Connection
		sender        models.User
		created       *models.Message
		responderName string
	)
	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		var err error
		conn, err = r.Connections.GetForUpdate(ctx, connectionID)
		if err != nil {
			return notFound("connection", err)
		}
		if conn.RecipientID != recipientID {
			return ErrNotAuthorized
		}
		if conn.Status != models.ConnectionPending {
			return fmt.Errorf("%w: invitation already %s", ErrInvalidState, conn.Status)
		}

		status := models.ConnectionDeclined
		if accept {
			status = models.ConnectionAccepted
		}
		if err := r.Connections.SetStatus(ctx, conn.ID, status, now); err != nil {
			return fmt.Errorf("set status: %w", err)
		}
		conn.Status = status
		conn.RespondedAt = &now

		if accept {
			created, err = ensureConversation(ctx, r, conn, now)
			if err != nil {
				return err
			}
		}

		sender, err = r.Users.GetByID(ctx, conn.SenderID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("load sender: %w", err)
		}
		responderName = displayName(ctx, r, recipientID)
		return nil
	})
	if err != nil {
		return models.Connection{}, err
	}

	template := notify.InvitationDeclined
	if accept {
		template = notify.InvitationAccepted
	}
	observability.IncConnectionTransition(string(conn.Status))
	audit(ctx, s.auditor, "connection."+string(conn.Status), recipientID, conn.ID, conn.Date)
	s.notify(sender.Email, template, map[string]string{
		"recipient_name": responderName,
		"date":           conn.Date,
	})
	if created != nil {
		s.broadcaster.BroadcastConversationEvent(created.ConversationID, models.ConversationEvent{
			Type:           "message",
			ConversationID: created.ConversationID,
			Message:        created,
		})
	}
	return conn, nil
}

// ensureConversation creates the pair's conversation with a system message
// unless one already exists. The returned message is nil when nothing was created.
func ensureConversation(ctx context.Context, r repositories.Repos, conn models.Connection, now time.Time) (*models.Message, error) {
	conv, created, err := r.Conversations.CreateIfAbsent(ctx, conn.SenderID, conn.RecipientID, models.ConversationAccepted, now)
	if err != nil {
		return nil, fmt.Errorf("ensure conversation: %w", err)
	}
	if !created {
		return nil, nil
	}
	msg, err := r.Messages.Create(ctx, systemMessage(conv.ID, conn.RecipientID, "Invitation accepted for "+conn.Date, now))
	if err != nil {
		return nil, fmt.Errorf("create system message: %w", err)
	}
	if err := r.Conversations.TouchLastMessage(ctx, conv.ID, now); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}
	return &msg, nil
}

// Withdraw deletes a pending invitation on behalf of its sender.
func (s *ConnectionService) Withdraw(ctx context.Context, senderID, connectionID uuid.UUID) error {
	ctx, span := startSpan(ctx, "connections.withdraw")
	defer span.End()

	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		conn, err := r.Connections.GetForUpdate(ctx, connectionID)
		if err != nil {
			return notFound("connection", err)
		}
		if conn.SenderID != senderID {
			return ErrNotAuthorized
		}
		if conn.Status != models.ConnectionPending {
			return fmt.Errorf("%w: only pending invitations can be withdrawn", ErrInvalidState)
		}
		return r.Connections.Delete(ctx, conn.ID)
	})
	if err != nil {
		return err
	}

	observability.IncConnectionTransition("withdrawn")
	audit(ctx, s.auditor, "connection.withdrawn", senderID, connectionID, "")
	return nil
}

// MyConnections lists every edge the user sent or received with the
// counterpart's public summary.
func (s *ConnectionService) MyConnections(ctx context.Context, userID uuid.UUID) ([]models.ConnectionView, error) {
	repos := s.uow.Repos()
	conns, err := repos.Connections.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.Counterpart(userID))
	}
	people, err := summaries(ctx, repos, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.ConnectionView, 0, len(conns))
	for _, c := range conns {
		dir := models.DirectionReceived
		if c.SenderID == userID {
			dir = models.DirectionSent
		}
		out = append(out, models.ConnectionView{
			Connection:  c,
			Direction:   dir,
			Counterpart: people[c.Counterpart(userID)],
		})
	}
	return out, nil
}

// Status resolves the single relationship between the user and other.
func (s *ConnectionService) Status(ctx context.Context, userID, otherID uuid.UUID) (models.RelationshipStatus, error) {
	if userID == otherID {
		return models.RelationshipNone, nil
	}
	edges, err := s.uow.Repos().Connections.Between(ctx, userID, otherID)
	if err != nil {
		return "", fmt.Errorf("load connections: %w", err)
	}
	return ResolveStatus(userID, edges), nil
}

// ResolveStatus collapses the edges between two users into one status. An
// accepted edge in either direction dominates everything else.
func ResolveStatus(userID uuid.UUID, edges []models.Connection) models.RelationshipStatus {
	var pendingSent, pendingReceived, declinedByThem, declinedByMe bool
	for _, e := range edges {
		sent := e.SenderID == userID
		switch e.Status {
		case models.ConnectionAccepted:
			return models.RelationshipMatched
		case models.ConnectionPending:
			if sent {
				pendingSent = true
			} else {
				pendingReceived = true
			}
		case models.ConnectionDeclined:
			if sent {
				declinedByThem = true
			} else {
				declinedByMe = true
			}
		}
	}
	switch {
	case pendingSent:
		return models.RelationshipPendingSent
	case pendingReceived:
		return models.RelationshipPendingReceived
	case declinedByThem:
		return models.RelationshipDeclinedByThem
	case declinedByMe:
		return models.RelationshipDeclinedByMe
	}
	return models.RelationshipNone
}

func (s *ConnectionService) notify(email *string, template notify.Template, params map[string]string) {
	if s.notifier == nil {
		return
	}
	if email == nil || *email == "" {
		log.Debug().Str("template", string(template)).Msg("notify: recipient has no email, skipping")
		return
	}
	s.notifier.Notify(notify.Notification{Recipient: *email, Template: template, Params: params})
}

// displayName is best-effort; a missing name only degrades the notification text.
func displayName(ctx context.Context, r repositories.Repos, userID uuid.UUID) string {
	if p, err := r.Profiles.Get(ctx, userID); err == nil && p.Name != "" {
		return p.Name
	}
	if u, err := r.Users.GetByID(ctx, userID); err == nil && u.Name != nil {
		return *u.Name
	}
	return ""
}

func systemMessage(conversationID, senderID uuid.UUID, content string, at time.Time) models.Message {
	return models.Message{
		ConversationID:   conversationID,
		SenderID:         senderID,
		Kind:             models.MessageSystem,
		Content:          content,
		Read:             true,
		ModerationStatus: models.ModerationClean,
		CreatedAt:        at,
	}
}
