package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/recycle-be/internal/models"
	"github.com/greenloop/recycle-be/internal/storage"
)

func TestFindByIdentityTokenExactlyOne(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.FindByIdentityToken(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	s.Seed(models.User{IdentityToken: "T1", Email: "a@example.com", Points: 5})
	got, err := s.FindByIdentityToken(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Points)

	// Duplicate token: the lookup must refuse rather than pick one.
	s.Seed(models.User{IdentityToken: "T1", Email: "b@example.com"})
	_, err = s.FindByIdentityToken(ctx, "T1")
	assert.ErrorIs(t, err, storage.ErrIntegrity)
}

func TestUpdatePointsConditional(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed(models.User{IdentityToken: "T1", Email: "a@example.com", Points: 10})

	require.NoError(t, s.UpdatePoints(ctx, "T1", 10, 15))

	// Stale prior loses.
	assert.ErrorIs(t, s.UpdatePoints(ctx, "T1", 10, 20), storage.ErrConflict)

	got, err := s.FindByIdentityToken(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, int64(15), got.Points)

	assert.ErrorIs(t, s.UpdatePoints(ctx, "missing", 0, 1), storage.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateUser(ctx, models.User{IdentityToken: "T1", Email: "a@example.com"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, models.User{IdentityToken: "T2", Email: "a@example.com"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestContextCancellationShortCircuits(t *testing.T) {
	s := New()
	s.Seed(models.User{IdentityToken: "T1", Email: "a@example.com", Points: 10})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.UpdatePoints(ctx, "T1", 10, 15)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := s.FindByIdentityToken(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Points, "cancelled update must not mutate")
}
