package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/domain"
)

// RegisterRequest is the body of POST /api/users.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
}

// LoginRequest is the body of POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user. It never includes the password
// hash or the session tokens.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// CreateRecordRequest is the body of POST /api/financials. Value accepts a
// number or a numeric string. Any owner field in the body is ignored.
type CreateRecordRequest struct {
	Type        string          `json:"type" validate:"required,record_type"`
	Value       json.RawMessage `json:"value" validate:"required"`
	Description string          `json:"description"`
}

// RecordResponse is the public view of a record.
type RecordResponse struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user"`
	Type        string    `json:"type"`
	Value       float64   `json:"value"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func recordToResponse(r *domain.Record) RecordResponse {
	return RecordResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		Type:        string(r.Type),
		Value:       r.Value,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func recordsToResponse(records []*domain.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, recordToResponse(r))
	}
	return out
}
