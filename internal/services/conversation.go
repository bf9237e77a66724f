package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"holiday-service/internal/models"
	"holiday-service/internal/moderation"
	"holiday-service/internal/observability"
	"holiday-service/internal/repositories"
)

// MaxMessageLength bounds message content in characters.
const MaxMessageLength = 4000

// Moderator classifies outgoing content.
type Moderator interface {
	Check(ctx context.Context, content string) moderation.Verdict
}

// ConversationService is the conversation ledger and the message admission gate.
type ConversationService struct {
	uow         repositories.UnitOfWork
	moderator   Moderator
	auditor     Auditor
	broadcaster Broadcaster
	now         func() time.Time
}

func NewConversationService(uow repositories.UnitOfWork, moderator Moderator, auditor Auditor, broadcaster Broadcaster) *ConversationService {
	s := &ConversationService{uow: uow, moderator: moderator, auditor: auditor, broadcaster: broadcaster, now: time.Now}
	if s.moderator == nil {
		s.moderator = moderation.NewGate(nil)
	}
	if s.auditor == nil {
		s.auditor = noopAuditor{}
	}
	if s.broadcaster == nil {
		s.broadcaster = noopBroadcaster{}
	}
	return s
}

// RequestJoin opens a conversation from guest to host with a first message.
// When the pair already has a conversation it is returned unchanged.
func (s *ConversationService) RequestJoin(ctx context.Context, guestID, hostID uuid.UUID, message string) (models.Conversation, bool, error) {
	ctx, span := startSpan(ctx, "conversations.request_join")
	defer span.End()

	if guestID == hostID {
		return models.Conversation{}, false, ErrInvalidTarget
	}

	now := nowMicro(s.now)
	var (
		conv    models.Conversation
		created bool
		first   models.Message
	)
	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		existing, err := r.Conversations.GetByPair(ctx, guestID, hostID)
		if err == nil {
			conv = existing
			return nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("lookup conversation: %w", err)
		}

		content, err := normalizeContent(message)
		if err != nil {
			return err
		}
		if _, err := r.Users.GetByID(ctx, hostID); err != nil {
			return notFound("host", err)
		}
		blocked, err := r.Blocks.ExistsBetween(ctx, guestID, hostID)
		if err != nil {
			return fmt.Errorf("check block: %w", err)
		}
		if blocked {
			return ErrBlocked
		}

		conv, created, err = r.Conversations.CreateIfAbsent(ctx, guestID, hostID, models.ConversationRequested, now)
		if err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		if !created {
			return nil
		}

		verdict := s.moderator.Check(ctx, content)
		first, err = r.Messages.Create(ctx, models.Message{
			ConversationID:     conv.ID,
			SenderID:           guestID,
			Kind:               models.MessageText,
			Content:            content,
			ModerationStatus:   verdict.Status(),
			ModerationCategory: verdict.CategoryPtr(),
			CreatedAt:          now,
		})
		if err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		if err := r.Conversations.TouchLastMessage(ctx, conv.ID, now); err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		conv.LastMessageAt = &now
		return nil
	})
	if err != nil {
		return models.Conversation{}, false, err
	}

	if created {
		observability.IncMessage(string(first.ModerationStatus))
		audit(ctx, s.auditor, "conversation.requested", guestID, conv.ID, "")
	}
	return conv, created, nil
}

// AcceptRequest moves a requested conversation to accepted. Host only.
func (s *ConversationService) AcceptRequest(ctx context.Context, hostID, conversationID uuid.UUID) (models.Conversation, error) {
	return s.answerRequest(ctx, hostID, conversationID, true)
}

// DeclineRequest closes a requested conversation. Host only.
func (s *ConversationService) DeclineRequest(ctx context.Context, hostID, conversationID uuid.UUID) (models.Conversation, error) {
	return s.answerRequest(ctx, hostID, conversationID, false)
}

func (s *ConversationService) answerRequest(ctx context.Context, hostID, conversationID uuid.UUID, accept bool) (models.Conversation, error) {
	ctx, span := startSpan(ctx, "conversations.answer_request")
	defer span.End()

	now := nowMicro(s.now)
	var (
		conv models.Conversation
		sys  *models.Message
	)
	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		var err error
		conv, err = r.Conversations.GetForUpdate(ctx, conversationID)
		if err != nil {
			return notFound("conversation", err)
		}
		if conv.HostID != hostID {
			return ErrNotAuthorized
		}
		if conv.Status != models.ConversationRequested {
			return fmt.Errorf("%w: conversation is %s", ErrInvalidState, conv.Status)
		}

		status := models.ConversationDeclined
		if accept {
			status = models.ConversationAccepted
		}
		if err := r.Conversations.SetStatus(ctx, conv.ID, status); err != nil {
			return fmt.Errorf("set status: %w", err)
		}
		conv.Status = status
		if !accept {
			return nil
		}

		at := nextTimestamp(now, conv.LastMessageAt)
		msg, err := r.Messages.Create(ctx, systemMessage(conv.ID, hostID, "Request accepted", at))
		if err != nil {
			return fmt.Errorf("create system message: %w", err)
		}
		if err := r.Conversations.TouchLastMessage(ctx, conv.ID, at); err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		conv.LastMessageAt = &at
		sys = &msg
		return nil
	})
	if err != nil {
		return models.Conversation{}, err
	}

	audit(ctx, s.auditor, "conversation."+string(conv.Status), hostID, conv.ID, "")
	event := models.ConversationEvent{Type: "status", ConversationID: conv.ID, Status: conv.Status}
	if sys != nil {
		event.Message = sys
	}
	s.broadcaster.BroadcastConversationEvent(conv.ID, event)
	return conv, nil
}

// SendMessage is the admission gate: participant, block, closed, moderation,
// then insert. Flagged content is stored and tagged rather than refused.
func (s *ConversationService) SendMessage(ctx context.Context, senderID, conversationID uuid.UUID, content string) (models.Message, error) {
	ctx, span := startSpan(ctx, "conversations.send_message")
	defer span.End()

	content, err := normalizeContent(content)
	if err != nil {
		return models.Message{}, err
	}

	var msg models.Message
	err = s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		conv, err := r.Conversations.GetForUpdate(ctx, conversationID)
		if err != nil {
			return notFound("conversation", err)
		}
		if !conv.HasParticipant(senderID) {
			return ErrNotAuthorized
		}
		blocked, err := r.Blocks.ExistsBetween(ctx, conv.GuestID, conv.HostID)
		if err != nil {
			return fmt.Errorf("check block: %w", err)
		}
		if blocked {
			return ErrBlocked
		}
		if conv.Status == models.ConversationDeclined {
			return ErrConversationClosed
		}

		verdict := s.moderator.Check(ctx, content)
		at := nextTimestamp(nowMicro(s.now), conv.LastMessageAt)
		msg, err = r.Messages.Create(ctx, models.Message{
			ConversationID:     conv.ID,
			SenderID:           senderID,
			Kind:               models.MessageText,
			Content:            content,
			ModerationStatus:   verdict.Status(),
			ModerationCategory: verdict.CategoryPtr(),
			CreatedAt:          at,
		})
		if err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		if err := r.Conversations.TouchLastMessage(ctx, conv.ID, at); err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		return nil
	})
	if err != nil {
		observability.IncMessage(rejectionLabel(err))
		return models.Message{}, err
	}

	observability.IncMessage(string(msg.ModerationStatus))
	s.broadcaster.BroadcastConversationEvent(msg.ConversationID, models.ConversationEvent{
		Type:           "message",
		ConversationID: msg.ConversationID,
		Message:        &msg,
	})
	return msg, nil
}

// MarkAsRead marks the counterpart's unread messages as read.
func (s *ConversationService) MarkAsRead(ctx context.Context, userID, conversationID uuid.UUID) (int64, error) {
	repos := s.uow.Repos()
	conv, err := repos.Conversations.Get(ctx, conversationID)
	if err != nil {
		return 0, notFound("conversation", err)
	}
	if !conv.HasParticipant(userID) {
		return 0, ErrNotAuthorized
	}
	n, err := repos.Messages.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	if n > 0 {
		s.broadcaster.BroadcastConversationEvent(conversationID, models.ConversationEvent{
			Type:           "read",
			ConversationID: conversationID,
			ReaderID:       userID,
			ReadCount:      int(n),
		})
	}
	return n, nil
}

// ListMessages returns the conversation's messages oldest first. Flagged
// messages are included for both participants.
func (s *ConversationService) ListMessages(ctx context.Context, userID, conversationID uuid.UUID) ([]models.Message, error) {
	repos := s.uow.Repos()
	conv, err := repos.Conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, notFound("conversation", err)
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotAuthorized
	}
	msgs, err := repos.Messages.ListForConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// Inbox lists the user's conversations, most recent activity first.
func (s *ConversationService) Inbox(ctx context.Context, userID uuid.UUID) ([]models.InboxEntry, error) {
	repos := s.uow.Repos()
	rows, err := repos.Conversations.ListInbox(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Conversation.Counterpart(userID))
	}
	people, err := summaries(ctx, repos, ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.InboxEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.InboxEntry{
			Conversation: row.Conversation,
			Counterpart:  people[row.Conversation.Counterpart(userID)],
			LastMessage:  row.LastMessage,
			UnreadCount:  row.UnreadCount,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Conversation.ActivityAt().After(out[j].Conversation.ActivityAt())
	})
	return out, nil
}

// nextTimestamp keeps message timestamps strictly increasing within a
// conversation even when the clock does not advance between sends.
func nextTimestamp(now time.Time, last *time.Time) time.Time {
	if last != nil && !now.After(*last) {
		return last.Add(time.Microsecond)
	}
	return now
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", validationError("message content is required")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return "", validationError(fmt.Sprintf("message exceeds %d characters", MaxMessageLength))
	}
	return content, nil
}

func rejectionLabel(err error) string {
	switch {
	case errors.Is(err, ErrBlocked):
		return "rejected_blocked"
	case errors.Is(err, ErrConversationClosed):
		return "rejected_closed"
	case errors.Is(err, ErrNotAuthorized):
		return "rejected_unauthorized"
	case errors.Is(err, ErrNotFound):
		return "rejected_not_found"
	}
	return "error"
}
