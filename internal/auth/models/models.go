package models

import (
	"strings"
	"time"

	dErrors "govdash/pkg/domain-errors"
)

// LoginRequest is the body of POST /api/session.
type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// Validate implements httputil.Validatable.
func (r *LoginRequest) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// User is the signed-in identity echoed back to the client.
type User struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Name string `json:"name"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
