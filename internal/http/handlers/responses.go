package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/greenloop/recycle-be/internal/http/respond"
	"github.com/greenloop/recycle-be/internal/points"
	"github.com/greenloop/recycle-be/internal/qr"
	"github.com/greenloop/recycle-be/internal/storage"
)

// respondDomainError maps the workflow error taxonomy onto HTTP statuses.
// Every failure ends here as a user-facing message; nothing crashes the
// session and nothing is silently swallowed.
func respondDomainError(w http.ResponseWriter, err error) {
	var decodeErr *qr.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		respond.Error(w, http.StatusBadRequest, decodeErr.Error())
	case errors.Is(err, points.ErrInvalidDelta):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, points.ErrAccessDenied):
		respond.Error(w, http.StatusForbidden, "access denied: admin privileges required")
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "user not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, "record already exists")
	case errors.Is(err, storage.ErrConflict):
		respond.Error(w, http.StatusConflict, "balance changed concurrently, please retry")
	case errors.Is(err, storage.ErrIntegrity):
		log.Printf("directory integrity violation: %v", err)
		respond.Error(w, http.StatusInternalServerError, "directory in unexpected state, contact support")
	case errors.Is(err, context.DeadlineExceeded):
		respond.Error(w, http.StatusGatewayTimeout, "operation timed out, please retry")
	default:
		log.Printf("unhandled error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}
