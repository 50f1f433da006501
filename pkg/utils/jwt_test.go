package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	m := NewJWTManager("test-secret", "test-issuer")

	pair, err := m.GenerateTokenPair("user-1", "member", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "test-issuer", claims.Issuer)

	refresh, err := m.ParseToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "refresh", refresh.Type)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret", "test-issuer")

	token, err := m.GenerateToken("user-1", "member", "access", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	m := NewJWTManager("test-secret", "test-issuer")
	other := NewJWTManager("other-secret", "test-issuer")

	token, err := m.GenerateToken("user-1", "member", "access", time.Hour)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", "test-issuer")
	_, err := m.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
