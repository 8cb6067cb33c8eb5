// Package points implements the award workflow: the authorization gate and
// the read-modify-write that credits a user's balance.
package points

import (
	"context"
	"errors"
	"fmt"

	"github.com/greenloop/recycle-be/internal/models"
	"github.com/greenloop/recycle-be/internal/storage"
)

// ErrAccessDenied means the acting user is not an admin. Not retryable
// without a privilege change; the session itself stays valid.
var ErrAccessDenied = errors.New("points award requires admin privileges")

// ErrInvalidDelta rejects non-positive adjustments.
var ErrInvalidDelta = errors.New("points delta must be a positive integer")

// DefaultMaxAttempts bounds the retry loop when concurrent awards collide.
const DefaultMaxAttempts = 3

// Notifier receives committed balance changes. The realtime broker satisfies
// this; a nil notifier is allowed.
type Notifier interface {
	PointsChanged(identityToken string, newTotal int64)
}

// Service runs point awards against the user directory.
type Service struct {
	users       storage.UserStore
	notifier    Notifier
	maxAttempts int
}

// NewService builds the award service. attempts <= 0 falls back to
// DefaultMaxAttempts.
func NewService(users storage.UserStore, notifier Notifier, attempts int) *Service {
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	return &Service{users: users, notifier: notifier, maxAttempts: attempts}
}

// CanAwardPoints reports whether the actor may run awards. The actor is
// fetched fresh from the directory: an in-memory copy is fine for display but
// never for an authorization decision.
func (s *Service) CanAwardPoints(ctx context.Context, actorToken string) (bool, error) {
	actor, err := s.users.FindByIdentityToken(ctx, actorToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return actor.IsAdmin, nil
}

// Award credits delta points to the target user and returns the committed new
// total. The gate runs before any target read; on write contention the
// read-modify-write is retried up to the configured bound, then
// storage.ErrConflict surfaces to the caller.
func (s *Service) Award(ctx context.Context, actorToken, targetToken string, delta int64) (int64, error) {
	if delta <= 0 {
		return 0, ErrInvalidDelta
	}

	allowed, err := s.CanAwardPoints(ctx, actorToken)
	if err != nil {
		return 0, fmt.Errorf("authorize award: %w", err)
	}
	if !allowed {
		return 0, ErrAccessDenied
	}

	target, err := s.users.FindByIdentityToken(ctx, targetToken)
	if err != nil {
		return 0, err
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		next := target.Points + delta
		err := s.users.UpdatePoints(ctx, targetToken, target.Points, next)
		if err == nil {
			if s.notifier != nil {
				s.notifier.PointsChanged(targetToken, next)
			}
			return next, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return 0, err
		}

		// Someone else landed first; re-read and try again on the fresh balance.
		target, err = s.users.FindByIdentityToken(ctx, targetToken)
		if err != nil {
			return 0, err
		}
	}
	return 0, storage.ErrConflict
}

// Resolve looks up the user a scanned token identifies, for display before an
// award is confirmed.
func (s *Service) Resolve(ctx context.Context, targetToken string) (models.User, error) {
	return s.users.FindByIdentityToken(ctx, targetToken)
}
