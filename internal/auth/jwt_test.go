package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateToken("user-1")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestGenerateToken_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateToken("user-1")
	assert.ErrorIs(t, err, errMissingSecret)
}

func TestTokenTTL_EnvOverride(t *testing.T) {
	t.Setenv("JWT_TTL_HOURS", "24")
	assert.Equal(t, 24*time.Hour, tokenTTL())

	t.Setenv("JWT_TTL_HOURS", "not-a-number")
	assert.Equal(t, defaultTokenTTL, tokenTTL())
}
