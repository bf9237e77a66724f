package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"holiday-service/internal/models"
	"holiday-service/internal/repositories"
)

// SafetyService is the block and report registry.
type SafetyService struct {
	uow     repositories.UnitOfWork
	auditor Auditor
}

func NewSafetyService(uow repositories.UnitOfWork, auditor Auditor) *SafetyService {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	return &SafetyService{uow: uow, auditor: auditor}
}

// Block records blocker -> blocked. Blocking twice is a no-op.
func (s *SafetyService) Block(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if blockerID == blockedID {
		return ErrInvalidTarget
	}
	repos := s.uow.Repos()
	if _, err := repos.Users.GetByID(ctx, blockedID); err != nil {
		return notFound("user", err)
	}
	if err := repos.Blocks.Create(ctx, blockerID, blockedID); err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	audit(ctx, s.auditor, "user.blocked", blockerID, blockedID, "")
	return nil
}

// Unblock removes blocker -> blocked. Removing an absent block is a no-op.
func (s *SafetyService) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	if err := s.uow.Repos().Blocks.Delete(ctx, blockerID, blockedID); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	audit(ctx, s.auditor, "user.unblocked", blockerID, blockedID, "")
	return nil
}

func (s *SafetyService) ListBlocked(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error) {
	blocks, err := s.uow.Repos().Blocks.ListByBlocker(ctx, blockerID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// ReportInput describes a report against another user.
type ReportInput struct {
	ReportedID     uuid.UUID  `json:"reported_id"`
	ConversationID *uuid.UUID `json:"conversation_id"`
	Reason         string     `json:"reason"`
}

// Report stores a report for the admin surface. A referenced conversation
// must include both the reporter and the reported user.
func (s *SafetyService) Report(ctx context.Context, reporterID uuid.UUID, in ReportInput) (models.Report, error) {
	if reporterID == in.ReportedID {
		return models.Report{}, ErrInvalidTarget
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return models.Report{}, validationError("reason is required")
	}

	repos := s.uow.Repos()
	if in.ConversationID != nil {
		conv, err := repos.Conversations.Get(ctx, *in.ConversationID)
		if err != nil {
			return models.Report{}, notFound("conversation", err)
		}
		if !conv.HasParticipant(reporterID) || !conv.HasParticipant(in.ReportedID) {
			return models.Report{}, ErrNotAuthorized
		}
	}

	report, err := repos.Blocks.CreateReport(ctx, models.Report{
		ReporterID:     reporterID,
		ReportedID:     in.ReportedID,
		ConversationID: in.ConversationID,
		Reason:         reason,
	})
	if err != nil {
		return models.Report{}, fmt.Errorf("create report: %w", err)
	}
	audit(ctx, s.auditor, "user.reported", reporterID, in.ReportedID, reason)
	return report, nil
}
