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
	"github.com/greenloop/recycle-be/internal/realtime"
	"github.com/greenloop/recycle-be/internal/storage"
)

// CatalogHandler serves the recycled-goods catalog. Listing is public;
// adding products goes through the same fresh admin gate as point awards.
type CatalogHandler struct {
	store  storage.ProductStore
	gate   *points.Service
	broker *realtime.Broker
}

func NewCatalogHandler(store storage.ProductStore, gate *points.Service, broker *realtime.Broker) *CatalogHandler {
	return &CatalogHandler{store: store, gate: gate, broker: broker}
}

// Register attaches catalog routes to the mux. Listing stays public; product
// creation sits behind the auth wrapper and the admin gate.
func (h *CatalogHandler) Register(mux *http.ServeMux, authed func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /products", h.handleList)
	mux.Handle("POST /products", authed(http.HandlerFunc(h.handleCreate)))
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("list products: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	respond.JSON(w, http.StatusOK, "products", products)
}

func (h *CatalogHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
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

	var req dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.Price < 0 {
		respond.Error(w, http.StatusBadRequest, "name is required and price must not be negative")
		return
	}

	created, err := h.store.CreateProduct(r.Context(), models.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		ImageURL:    strings.TrimSpace(req.ImageURL),
	})
	if err != nil {
		log.Printf("create product: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	if h.broker != nil {
		h.broker.Publish(realtime.ProductsTopic, created)
	}
	respond.JSON(w, http.StatusCreated, "Product created successfully", created)
}
