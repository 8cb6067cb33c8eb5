package server

import (
	"context"
	"net/http"
	"time"

	"github.com/greenloop/recycle-be/internal/auth"
	"github.com/greenloop/recycle-be/internal/config"
	"github.com/greenloop/recycle-be/internal/http/handlers"
	"github.com/greenloop/recycle-be/internal/middleware"
	"github.com/greenloop/recycle-be/internal/points"
	"github.com/greenloop/recycle-be/internal/realtime"
	"github.com/greenloop/recycle-be/internal/storage"
)

// Stores groups the persistence dependencies the server needs. The Postgres
// store satisfies all three; tests pass the in-memory one.
type Stores struct {
	Users    storage.UserStore
	Products storage.ProductStore
	Orders   storage.OrderStore
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires middleware, services, and routes, and returns a ready server.
func New(cfg config.Config, stores Stores) *Server {
	mux := NewMux(cfg, stores)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewMux builds the routed mux without the outer middleware or server
// timeouts. Handler tests drive it directly through httptest.
func NewMux(cfg config.Config, stores Stores) *http.ServeMux {
	mux := http.NewServeMux()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authed := func(next http.Handler) http.Handler {
		return middleware.RequireAuth(tokens, next)
	}

	broker := realtime.NewBroker(16)
	awardSvc := points.NewService(stores.Users, broker, cfg.AwardMaxRetries)

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(stores.Users, tokens, &cfg).Register(mux)
	handlers.NewProfileHandler(stores.Users).Register(mux, authed)
	handlers.NewPointsHandler(awardSvc).Register(mux, authed)
	handlers.NewCatalogHandler(stores.Products, awardSvc, broker).Register(mux, authed)
	handlers.NewOrdersHandler(stores.Orders, awardSvc).Register(mux, authed)
	handlers.NewWSHandler(broker).Register(mux, authed)

	return mux
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
