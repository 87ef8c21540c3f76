package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("rahasia-kantor")
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia-kantor", hash)

	assert.True(t, CheckPassword("rahasia-kantor", hash))
	assert.False(t, CheckPassword("salah", hash))
	assert.False(t, CheckPassword("rahasia-kantor", "not-a-hash"))
}

func TestSessionSigner(t *testing.T) {
	signer := NewSessionSigner("secret-one", time.Hour)
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return now }

	token, expires, err := signer.Issue()
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)
	assert.NoError(t, signer.Verify(token))

	t.Run("tokens are unique", func(t *testing.T) {
		other, _, err := signer.Issue()
		require.NoError(t, err)
		assert.NotEqual(t, token, other)
	})

	t.Run("tampered expiry", func(t *testing.T) {
		parts := strings.Split(token, ".")
		parts[0] = "9999999999"
		assert.ErrorIs(t, signer.Verify(strings.Join(parts, ".")), ErrInvalidSession)
	})

	t.Run("other secret", func(t *testing.T) {
		assert.ErrorIs(t, NewSessionSigner("secret-two", time.Hour).Verify(token), ErrInvalidSession)
	})

	t.Run("garbage", func(t *testing.T) {
		assert.ErrorIs(t, signer.Verify(""), ErrInvalidSession)
		assert.ErrorIs(t, signer.Verify("a.b"), ErrInvalidSession)
	})

	t.Run("expired", func(t *testing.T) {
		signer.now = func() time.Time { return now.Add(2 * time.Hour) }
		assert.ErrorIs(t, signer.Verify(token), ErrSessionExpired)
	})

	assert.Equal(t, DefaultSessionDuration, NewSessionSigner("x", 0).TTL())
}
