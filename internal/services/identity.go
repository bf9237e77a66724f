package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"holiday-service/internal/models"
	"holiday-service/internal/repositories"
)

// IdentityResolver maps an authenticated caller to the internal user,
// creating the user on first contact.
type IdentityResolver struct {
	uow repositories.UnitOfWork
}

func NewIdentityResolver(uow repositories.UnitOfWork) *IdentityResolver {
	return &IdentityResolver{uow: uow}
}

// Resolve looks the caller up by external ref, then by stable id (the
// provider may reissue a different external ref for the same account), and
// creates the user when neither matches. Provider fields are refreshed.
func (r *IdentityResolver) Resolve(ctx context.Context, id models.Identity) (models.User, error) {
	if strings.TrimSpace(id.ExternalRef) == "" || strings.TrimSpace(id.StableID) == "" {
		return models.User{}, ErrNotAuthenticated
	}

	users := r.uow.Repos().Users
	user, err := users.GetByExternalRef(ctx, id.ExternalRef)
	if err == nil {
		if needsRefresh(user, id) {
			return users.UpdateIdentity(ctx, user.ID, id)
		}
		return user, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup by external ref: %w", err)
	}

	user, err = users.GetByStableID(ctx, id.StableID)
	if err == nil {
		log.Info().Str("user_id", user.ID.String()).Msg("identity: external ref changed, relinking user")
		return users.UpdateIdentity(ctx, user.ID, id)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, fmt.Errorf("lookup by stable id: %w", err)
	}

	user, err = users.Create(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	log.Info().Str("user_id", user.ID.String()).Msg("identity: user created")
	return user, nil
}

// Lookup finds an existing user by stable id without creating one.
func (r *IdentityResolver) Lookup(ctx context.Context, stableID string) (models.User, error) {
	user, err := r.uow.Repos().Users.GetByStableID(ctx, stableID)
	if err != nil {
		return models.User{}, notFound("user", err)
	}
	return user, nil
}

func needsRefresh(u models.User, id models.Identity) bool {
	differs := func(stored *string, fresh string) bool {
		return fresh != "" && (stored == nil || *stored != fresh)
	}
	return differs(u.Email, id.Email) || differs(u.Name, id.Name) || differs(u.AvatarURL, id.AvatarURL)
}

// Get returns the user behind an already resolved internal id.
func (r *IdentityResolver) Get(ctx context.Context, userID uuid.UUID) (models.User, error) {
	user, err := r.uow.Repos().Users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, notFound("user", err)
	}
	return user, nil
}
