package storage

import (
	"context"
	"errors"

	"github.com/greenloop/recycle-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrConflict indicates a conditional update lost to a concurrent writer.
// Callers may retry the read-modify-write a bounded number of times.
var ErrConflict = errors.New("concurrent update conflict")

// ErrIntegrity indicates the directory holds more than one record for an
// identity token. The operation must abort without mutating anything;
// recovery needs operator escalation, not a retry.
var ErrIntegrity = errors.New("directory integrity violation")

// UserStore captures the directory operations the workflow needs.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)

	// FindByIdentityToken has exactly-one semantics: zero matches is
	// ErrNotFound, more than one is ErrIntegrity.
	FindByIdentityToken(ctx context.Context, token string) (models.User, error)

	// UpdatePoints writes the new balance only if the stored balance still
	// equals prior. A lost race returns ErrConflict; a missing user returns
	// ErrNotFound. Nothing else changes on either failure.
	UpdatePoints(ctx context.Context, token string, prior, next int64) error
}

// ProductStore holds the recycled-goods catalog.
type ProductStore interface {
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// OrderStore records delivery orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, o models.Order) (models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
}
