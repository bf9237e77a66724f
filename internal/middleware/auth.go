package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"holiday-service/internal/auth"
	"holiday-service/internal/models"
)

// UserIDKey is the gin context key holding the caller's internal uuid.UUID.
const UserIDKey = "userID"

// TokenVerifier turns a bearer token into the asserted identity.
type TokenVerifier interface {
	Verify(token string) (models.Identity, error)
}

// IdentityResolver maps the asserted identity to the internal user.
type IdentityResolver interface {
	Resolve(ctx context.Context, identity models.Identity) (models.User, error)
}

// AuthMiddleware validates the bearer token and resolves the caller to an
// internal user, creating one on first contact. Websocket clients that cannot
// set headers may pass the token as ?token=.
func AuthMiddleware(verifier TokenVerifier, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), identity)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.Abort()
				return
			}
			log.Error().Err(err).Str("stable_id", identity.StableID).Msg("resolve caller identity failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "could not resolve identity"})
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// UserID returns the authenticated caller, if any.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
