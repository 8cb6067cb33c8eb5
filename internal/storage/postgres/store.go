package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/greenloop/recycle-be/internal/models"
	"github.com/greenloop/recycle-be/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore    = (*Store)(nil)
	_ storage.ProductStore = (*Store)(nil)
	_ storage.OrderStore   = (*Store)(nil)
)

// Store provides Postgres-backed persistence for the loyalty directory,
// catalog, and orders.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			identity_token TEXT NOT NULL,
			display_name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			mobile TEXT NOT NULL,
			address TEXT NOT NULL,
			photo_reference TEXT NOT NULL DEFAULT '',
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			points BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		// The identity token is written once and treated as immutable, but the
		// index is deliberately non-unique: the directory inherited records
		// from a system without the constraint, and lookups must detect
		// duplicates instead of assuming them away.
		`CREATE INDEX IF NOT EXISTS users_identity_token_idx ON users (identity_token);`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			image_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			mobile TEXT NOT NULL,
			address TEXT NOT NULL,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			location_address TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

const userColumns = `identity_token, display_name, email, mobile, address, photo_reference, is_admin, points, password_hash, created_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (identity_token, display_name, email, mobile, address, photo_reference, is_admin, points, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + userColumns + `;`
	row := s.pool.QueryRow(ctx, query,
		user.IdentityToken, user.DisplayName, user.Email, user.Mobile, user.Address,
		user.PhotoReference, user.IsAdmin, user.Points, user.PasswordHash)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1;`
	row := s.pool.QueryRow(ctx, query, email)
	return scanUser(row)
}

// FindByIdentityToken fetches the single user owning an identity token.
// Zero rows is storage.ErrNotFound; more than one row means the directory is
// corrupt and the lookup aborts with storage.ErrIntegrity.
func (s *Store) FindByIdentityToken(ctx context.Context, token string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE identity_token = $1 LIMIT 2;`
	rows, err := s.pool.Query(ctx, query, token)
	if err != nil {
		return models.User{}, fmt.Errorf("query user by identity token: %w", err)
	}
	defer rows.Close()

	var matches []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return models.User{}, err
		}
		matches = append(matches, user)
	}
	if err := rows.Err(); err != nil {
		return models.User{}, fmt.Errorf("iterate users: %w", err)
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

// UpdatePoints performs the conditional balance write: it only lands when the
// stored balance still equals prior, so two concurrent awards can never
// silently collapse into one.
func (s *Store) UpdatePoints(ctx context.Context, token string, prior, next int64) error {
	const query = `UPDATE users SET points = $3 WHERE identity_token = $1 AND points = $2;`
	tag, err := s.pool.Exec(ctx, query, token, prior, next)
	if err != nil {
		return fmt.Errorf("update points: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE identity_token = $1);`, token).Scan(&exists); err != nil {
		return fmt.Errorf("check user existence: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrConflict
}

// CreateProduct inserts a catalog entry.
func (s *Store) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	const query = `
		INSERT INTO products (name, description, price, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, price, image_url, created_at;`
	row := s.pool.QueryRow(ctx, query, p.Name, p.Description, p.Price, p.ImageURL)
	var created models.Product
	if err := row.Scan(&created.ID, &created.Name, &created.Description, &created.Price, &created.ImageURL, &created.CreatedAt); err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

// ListProducts returns the catalog, newest first.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	const query = `SELECT id, name, description, price, image_url, created_at FROM products ORDER BY created_at DESC;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CreateOrder records a delivery order.
func (s *Store) CreateOrder(ctx context.Context, o models.Order) (models.Order, error) {
	const query = `
		INSERT INTO orders (name, mobile, address, latitude, longitude, location_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, mobile, address, latitude, longitude, location_address, created_at;`
	row := s.pool.QueryRow(ctx, query, o.Name, o.Mobile, o.Address, o.Latitude, o.Longitude, o.LocationAddress)
	var created models.Order
	if err := row.Scan(&created.ID, &created.Name, &created.Mobile, &created.Address,
		&created.Latitude, &created.Longitude, &created.LocationAddress, &created.CreatedAt); err != nil {
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return created, nil
}

// ListOrders returns all delivery orders, newest first.
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	const query = `SELECT id, name, mobile, address, latitude, longitude, location_address, created_at FROM orders ORDER BY created_at DESC;`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.Name, &o.Mobile, &o.Address,
			&o.Latitude, &o.Longitude, &o.LocationAddress, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.IdentityToken, &user.DisplayName, &user.Email, &user.Mobile, &user.Address,
		&user.PhotoReference, &user.IsAdmin, &user.Points, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
