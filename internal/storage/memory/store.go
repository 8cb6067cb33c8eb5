// Package memory holds an in-process implementation of the storage
// interfaces. It backs handler and service tests and mirrors the conditional
// points update the Postgres store performs, including its failure modes.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/greenloop/recycle-be/internal/models"
	"github.com/greenloop/recycle-be/internal/storage"
)

var (
	_ storage.UserStore    = (*Store)(nil)
	_ storage.ProductStore = (*Store)(nil)
	_ storage.OrderStore   = (*Store)(nil)
)

// Store keeps everything behind one mutex; fine at test scale.
type Store struct {
	mu       sync.Mutex
	users    []models.User
	products []models.Product
	orders   []models.Order
	nextID   int64
}

func New() *Store {
	return &Store{nextID: 1}
}

// Seed inserts a user directly, bypassing uniqueness checks. Tests use it to
// stage duplicate identity tokens the way a corrupted directory would.
func (s *Store) Seed(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users = append(s.users, user)
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	user.CreatedAt = time.Now()
	s.users = append(s.users, user)
	return user, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) FindByIdentityToken(ctx context.Context, token string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var matches []models.User
	for _, user := range s.users {
		if user.IdentityToken == token {
			matches = append(matches, user)
		}
	}
	switch len(matches) {
	case 0:
		return models.User{}, storage.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return models.User{}, storage.ErrIntegrity
	}
}

func (s *Store) UpdatePoints(ctx context.Context, token string, prior, next int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].IdentityToken != token {
			continue
		}
		if s.users[i].Points != prior {
			return storage.ErrConflict
		}
		s.users[i].Points = next
		return nil
	}
	return storage.ErrNotFound
}

func (s *Store) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := ctx.Err(); err != nil {
		return models.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	p.CreatedAt = time.Now()
	s.products = append(s.products, p)
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateOrder(ctx context.Context, o models.Order) (models.Order, error) {
	if err := ctx.Err(); err != nil {
		return models.Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.nextID
	s.nextID++
	o.CreatedAt = time.Now()
	s.orders = append(s.orders, o)
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
