package dto

import "github.com/greenloop/recycle-be/internal/models"

type RegisterRequest struct {
	DisplayName     string `json:"displayName"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile"`
	Address         string `json:"address"`
	PhotoReference  string `json:"photoReference"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
