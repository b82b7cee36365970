package jwt

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken_RoundTrip(t *testing.T) {
	subject := gofakeit.Username()
	secret := gofakeit.Password(true, true, true, false, false, 32)

	token, err := NewToken(subject, []string{CapEditGalleries}, time.Hour, secret)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)

	assert.Equal(t, subject, claims.Subject)
	assert.True(t, claims.Can(CapEditGalleries))
	assert.False(t, claims.Can(CapUploadFiles))
}

func TestParseToken_Rejects(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewToken("editor", nil, time.Hour, "secret-a")
		require.NoError(t, err)

		_, err = ParseToken(token, "secret-b")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := NewToken("editor", nil, -time.Minute, "secret")
		require.NoError(t, err)

		_, err = ParseToken(token, "secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
