package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/greenloop/recycle-be/internal/models"
	"github.com/greenloop/recycle-be/internal/storage"
)

// TestStoreIntegration exercises the directory against a live Postgres.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_PG_INTEGRATION") != "true" {
		t.Skip("set RUN_PG_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	token := uuid.NewString()
	email := fmt.Sprintf("itest_%d@example.com", time.Now().UnixNano())

	created, err := store.CreateUser(ctx, models.User{
		IdentityToken: token,
		DisplayName:   "Integration Tester",
		Email:         email,
		Mobile:        "+94770000000",
		Address:       "1 Test Lane",
		Points:        20,
		PasswordHash:  "x",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.IdentityToken != token || created.Points != 20 {
		t.Fatalf("created mismatch: %+v", created)
	}

	if _, err := store.CreateUser(ctx, models.User{IdentityToken: uuid.NewString(), Email: email, PasswordHash: "x"}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate email: want ErrAlreadyExists, got %v", err)
	}

	found, err := store.FindByIdentityToken(ctx, token)
	if err != nil {
		t.Fatalf("find by identity token: %v", err)
	}
	if found.Email != email {
		t.Fatalf("found wrong user: %+v", found)
	}

	if _, err := store.FindByIdentityToken(ctx, uuid.NewString()); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing token: want ErrNotFound, got %v", err)
	}

	// Conditional update: the stale prior must lose, the fresh one must land.
	if err := store.UpdatePoints(ctx, token, 19, 26); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("stale prior: want ErrConflict, got %v", err)
	}
	if err := store.UpdatePoints(ctx, token, 20, 27); err != nil {
		t.Fatalf("update points: %v", err)
	}
	updated, err := store.FindByIdentityToken(ctx, token)
	if err != nil {
		t.Fatalf("re-find: %v", err)
	}
	if updated.Points != 27 {
		t.Fatalf("points = %d, want 27", updated.Points)
	}

	if err := store.UpdatePoints(ctx, uuid.NewString(), 0, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing user update: want ErrNotFound, got %v", err)
	}

	// A second row with the same identity token corrupts the directory;
	// lookups must refuse it.
	dupEmail := fmt.Sprintf("itest_dup_%d@example.com", time.Now().UnixNano())
	if _, err := store.CreateUser(ctx, models.User{IdentityToken: token, Email: dupEmail, PasswordHash: "x"}); err != nil {
		t.Fatalf("seed duplicate token: %v", err)
	}
	if _, err := store.FindByIdentityToken(ctx, token); !errors.Is(err, storage.ErrIntegrity) {
		t.Fatalf("duplicate token lookup: want ErrIntegrity, got %v", err)
	}
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
		"../../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
