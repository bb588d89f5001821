package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	token, err := tokens.Generate("01HUSER", "admin")
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "01HUSER", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
}

func TestTokens_RejectsOtherSecret(t *testing.T) {
	token, err := NewTokens("secret", time.Hour).Generate("01HUSER", "user")
	require.NoError(t, err)

	_, err = NewTokens("other", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestTokens_RejectsExpired(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	tokens.now = func() time.Time { return issued }

	token, err := tokens.Generate("01HUSER", "user")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Validate(token)
	assert.Error(t, err)
}

func TestTokens_UninitializedSecret(t *testing.T) {
	_, err := NewTokens("", 0).Generate("01HUSER", "user")
	assert.EqualError(t, err, "JWT secret not initialized")
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword("correct horse", hash))
	assert.Error(t, VerifyPassword("battery staple", hash))
}
