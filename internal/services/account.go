package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"holiday-service/internal/observability"
	"holiday-service/internal/repositories"
)

// AccountService runs the account deletion cascade.
type AccountService struct {
	uow     repositories.UnitOfWork
	auditor Auditor
}

func NewAccountService(uow repositories.UnitOfWork, auditor Auditor) *AccountService {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	return &AccountService{uow: uow, auditor: auditor}
}

// DeleteAccount removes everything the user owns or participates in, then
// the user itself, in one transaction. Every step tolerates rows that a
// previous partial run already removed, so the call can be retried.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	ctx, span := startSpan(ctx, "accounts.delete")
	defer span.End()

	var stats struct {
		conversations int
		connections   int64
		memberships   int64
		owned         int64
	}
	err := s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		if err := r.Profiles.Delete(ctx, userID); err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}

		convs, err := r.Conversations.ListForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("list conversations: %w", err)
		}
		for _, c := range convs {
			if err := r.Messages.DeleteForConversation(ctx, c.ID); err != nil {
				return fmt.Errorf("delete messages of %s: %w", c.ID, err)
			}
			if err := r.Conversations.Delete(ctx, c.ID); err != nil {
				return fmt.Errorf("delete conversation %s: %w", c.ID, err)
			}
		}
		stats.conversations = len(convs)

		if stats.connections, err = r.Connections.DeleteForUser(ctx, userID); err != nil {
			return fmt.Errorf("delete connections: %w", err)
		}
		if stats.memberships, err = r.Gatherings.RemoveMemberFromOthers(ctx, userID); err != nil {
			return fmt.Errorf("remove memberships: %w", err)
		}
		if stats.owned, err = r.Gatherings.DeleteOwnedBy(ctx, userID); err != nil {
			return fmt.Errorf("delete owned gatherings: %w", err)
		}
		if err := r.Blocks.DeleteForUser(ctx, userID); err != nil {
			return fmt.Errorf("delete blocks: %w", err)
		}
		if err := r.Users.Delete(ctx, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		observability.IncAccountDeletion("failed")
		log.Error().Err(err).Str("user_id", userID.String()).Msg("account deletion failed")
		return err
	}

	observability.IncAccountDeletion("completed")
	log.Info().
		Str("user_id", userID.String()).
		Int("conversations", stats.conversations).
		Int64("connections", stats.connections).
		Int64("memberships", stats.memberships).
		Int64("owned_gatherings", stats.owned).
		Msg("account deleted")
	audit(ctx, s.auditor, "account.deleted", userID, userID, "")
	return nil
}
