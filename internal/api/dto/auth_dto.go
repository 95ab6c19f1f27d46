package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// LoginRequest payload, accepted as form fields or JSON.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// SignupRequest payload.
type SignupRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// AuthResponse is the JSON body for successful login/signup AJAX calls.
type AuthResponse struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Session  domain.Session `json:"session"`
	Token    string         `json:"token"`
	Expires  time.Time      `json:"expiresAt"`
	Redirect string         `json:"redirect"`
}
