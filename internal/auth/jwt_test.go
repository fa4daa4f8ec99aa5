package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndGetClaims(t *testing.T) {
	m := NewJWTManager("test-secret")

	token, err := m.Generate("u1", "alice@example.com", "Alice", time.Hour)
	require.NoError(t, err)

	claims, err := m.GetClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.DisplayName)
}

func TestExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret")

	token, err := m.Generate("u1", "", "", -time.Minute)
	require.NoError(t, err)

	_, err = m.GetClaims(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a").Generate("u1", "", "", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b").GetClaims(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageToken(t *testing.T) {
	_, err := NewJWTManager("s").GetClaims("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
