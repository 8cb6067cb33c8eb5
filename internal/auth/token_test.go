package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/recycle-be/internal/models"
)

func TestGenerateParseRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", "recycle-be", time.Minute)
	user := models.User{IdentityToken: "U1", DisplayName: "Aruna", Email: "aruna@example.com"}

	token, err := tm.Generate(user)
	require.NoError(t, err)

	subject, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "U1", subject)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", "recycle-be", time.Minute)
	other := NewTokenManager("secret-b", "recycle-be", time.Minute)

	token, err := tm.Generate(models.User{IdentityToken: "U1"})
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", "recycle-be", -time.Minute)

	token, err := tm.Generate(models.User{IdentityToken: "U1"})
	require.NoError(t, err)

	_, err = tm.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", "recycle-be", time.Minute)
	_, err := tm.Parse("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
