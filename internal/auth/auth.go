// Package auth verifies identity-provider tokens and turns them into a
// caller identity.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"holiday-service/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity token issued by the identity provider.
type Claims struct {
	ExternalID string `json:"external_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Picture    string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 identity tokens.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier builds a Verifier. An empty issuer accepts any issuer.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses the token and returns the identity it asserts.
func (v *Verifier) Verify(token string) (models.Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return models.Identity{}, ErrInvalidToken
	}
	return claims.Identity(), nil
}

// Identity maps the claims to a caller identity. The subject is the stable
// account id; the external ref is whatever representation the provider uses
// for this session and may change across reissues.
func (c Claims) Identity() models.Identity {
	ref := c.ExternalID
	if ref == "" {
		ref = c.Issuer + "|" + c.Subject
	}
	return models.Identity{
		ExternalRef: ref,
		StableID:    c.Subject,
		Email:       c.Email,
		Name:        c.Name,
		AvatarURL:   c.Picture,
	}
}

// Sign issues a token for claims. Used by tooling and tests.
func (v *Verifier) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
