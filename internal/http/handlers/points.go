package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/greenloop/recycle-be/internal/http/respond"
	"github.com/greenloop/recycle-be/internal/middleware"
	"github.com/greenloop/recycle-be/internal/models/dto"
	"github.com/greenloop/recycle-be/internal/points"
	"github.com/greenloop/recycle-be/internal/qr"
)

// PointsHandler exposes the award workflow. The target arrives either as a
// bare identity token or as raw scanned QR text, which is decoded here so the
// scanner client can stay dumb about the payload format.
type PointsHandler struct {
	svc *points.Service
}

func NewPointsHandler(svc *points.Service) *PointsHandler {
	return &PointsHandler{svc: svc}
}

// Register attaches the award route to the mux behind the auth wrapper.
func (h *PointsHandler) Register(mux *http.ServeMux, authed func(http.Handler) http.Handler) {
	mux.Handle("POST /points/award", authed(http.HandlerFunc(h.handleAward)))
}

func (h *PointsHandler) handleAward(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req dto.AwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	target := strings.TrimSpace(req.IdentityToken)
	if raw := strings.TrimSpace(req.QRPayload); raw != "" {
		payload, err := qr.Decode(raw)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		target = payload.IdentityToken
	}
	if target == "" {
		respond.Error(w, http.StatusBadRequest, "identityToken or qrPayload is required")
		return
	}

	newTotal, err := h.svc.Award(r.Context(), actor, target, req.Points)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK,
		fmt.Sprintf("Points updated successfully! New total: %d", newTotal),
		dto.AwardResponse{IdentityToken: target, NewTotal: newTotal})
}
