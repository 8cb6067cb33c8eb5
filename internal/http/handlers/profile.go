package handlers

import (
	"net/http"

	"github.com/greenloop/recycle-be/internal/http/respond"
	"github.com/greenloop/recycle-be/internal/middleware"
	"github.com/greenloop/recycle-be/internal/models/dto"
	"github.com/greenloop/recycle-be/internal/qr"
	"github.com/greenloop/recycle-be/internal/storage"
)

// ProfileHandler serves the caller's own directory record plus the QR text
// their profile screen renders. The QR payload is generated on demand and
// never stored.
type ProfileHandler struct {
	store storage.UserStore
}

func NewProfileHandler(store storage.UserStore) *ProfileHandler {
	return &ProfileHandler{store: store}
}

// Register attaches the profile route to the mux behind the auth wrapper.
func (h *ProfileHandler) Register(mux *http.ServeMux, authed func(http.Handler) http.Handler) {
	mux.Handle("GET /me", authed(http.HandlerFunc(h.handleMe)))
}

func (h *ProfileHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	user, err := h.store.FindByIdentityToken(r.Context(), identity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	payload, err := qr.Encode(user)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "profile", dto.ProfileResponse{User: user, QRPayload: payload})
}
