package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenloop/recycle-be/internal/auth"
	"github.com/greenloop/recycle-be/internal/config"
	"github.com/greenloop/recycle-be/internal/http/respond"
	"github.com/greenloop/recycle-be/internal/models"
	"github.com/greenloop/recycle-be/internal/models/dto"
	"github.com/greenloop/recycle-be/internal/storage"
)

// AuthHandler owns registration and login. Registration mints the identity
// token the rest of the workflow revolves around; the admin flag is never
// settable from here.
type AuthHandler struct {
	store  storage.UserStore
	tokens *auth.TokenManager
	cfg    *config.Config
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager, cfg *config.Config) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, cfg: cfg}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validateRegistration(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		IdentityToken:  uuid.NewString(),
		DisplayName:    strings.TrimSpace(req.DisplayName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Mobile:         strings.TrimSpace(req.Mobile),
		Address:        strings.TrimSpace(req.Address),
		PhotoReference: strings.TrimSpace(req.PhotoReference),
		Points:         h.cfg.StartingPoints,
		PasswordHash:   passwordHash,
	}
	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "user already exists")
			return
		}
		log.Printf("create user error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	respond.JSON(w, http.StatusCreated, "User created successfully", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Password) == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	user, err := h.store.FindByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("login failed: error fetching user %s: %v", email, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user})
}

func validateRegistration(req dto.RegisterRequest) error {
	if strings.TrimSpace(req.DisplayName) == "" || strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.Mobile) == "" || strings.TrimSpace(req.Address) == "" {
		return errors.New("displayName, email, mobile, and address are required")
	}
	if len(strings.TrimSpace(req.Password)) < 8 || !utf8.ValidString(req.Password) {
		return errors.New("password must be at least 8 characters")
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return errors.New("passwords do not match")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
