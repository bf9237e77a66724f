package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimsFor(subject string) Claims {
	return Claims{
		Email: "ana@example.com",
		Name:  "Ana",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "https://id.example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	v := NewVerifier("secret", "https://id.example.com")
	token, err := v.Sign(claimsFor("acct-1"))
	require.NoError(t, err)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", id.StableID)
	assert.Equal(t, "https://id.example.com|acct-1", id.ExternalRef)
	assert.Equal(t, "ana@example.com", id.Email)
	assert.Equal(t, "Ana", id.Name)
}

func TestVerifyPrefersExplicitExternalID(t *testing.T) {
	v := NewVerifier("secret", "")
	claims := claimsFor("acct-1")
	claims.ExternalID = "session-42"
	token, err := v.Sign(claims)
	require.NoError(t, err)

	id, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "session-42", id.ExternalRef)
	assert.Equal(t, "acct-1", id.StableID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewVerifier("other", "").Sign(claimsFor("acct-1"))
	require.NoError(t, err)

	_, err = NewVerifier("secret", "").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	v := NewVerifier("secret", "")
	claims := claimsFor("acct-1")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token, err := v.Sign(claims)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	token, err := NewVerifier("secret", "").Sign(claimsFor("acct-1"))
	require.NoError(t, err)

	_, err = NewVerifier("secret", "https://other.example.com").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	v := NewVerifier("secret", "")
	token, err := v.Sign(claimsFor(""))
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = BearerToken("bearer  xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("")
	assert.False(t, ok)
}
