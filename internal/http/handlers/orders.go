package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/greenloop/recycle-be/internal/http/respond"
	"github.com/greenloop/recycle-be/internal/middleware"
	"github.com/greenloop/recycle-be/internal/models"
	"github.com/greenloop/recycle-be/internal/models/dto"
	"github.com/greenloop/recycle-be/internal/points"
	"github.com/greenloop/recycle-be/internal/storage"
)

// OrdersHandler records pickup/delivery orders. Any authenticated user may
// place one; only admins may list them.
type OrdersHandler struct {
	store storage.OrderStore
	gate  *points.Service
}

func NewOrdersHandler(store storage.OrderStore, gate *points.Service) *OrdersHandler {
	return &OrdersHandler{store: store, gate: gate}
}

// Register attaches order routes to the mux behind the auth wrapper.
func (h *OrdersHandler) Register(mux *http.ServeMux, authed func(http.Handler) http.Handler) {
	mux.Handle("POST /orders", authed(http.HandlerFunc(h.handleCreate)))
	mux.Handle("GET /orders", authed(http.HandlerFunc(h.handleList)))
}

func (h *OrdersHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Mobile) == "" || strings.TrimSpace(req.Address) == "" {
		respond.Error(w, http.StatusBadRequest, "name, mobile, and address are required")
		return
	}

	created, err := h.store.CreateOrder(r.Context(), models.Order{
		Name:            strings.TrimSpace(req.Name),
		Mobile:          strings.TrimSpace(req.Mobile),
		Address:         strings.TrimSpace(req.Address),
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		LocationAddress: strings.TrimSpace(req.LocationAddress),
	})
	if err != nil {
		log.Printf("create order: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to place order")
		return
	}
	respond.JSON(w, http.StatusCreated, "Order Placed Successfully", created)
}

func (h *OrdersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	allowed, err := h.gate.CanAwardPoints(r.Context(), actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if !allowed {
		respondDomainError(w, points.ErrAccessDenied)
		return
	}

	orders, err := h.store.ListOrders(r.Context())
	if err != nil {
		log.Printf("list orders: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	respond.JSON(w, http.StatusOK, "orders", orders)
}
