package models

import "time"

// AuthResponse represents the response after successful registration or login
type AuthResponse struct {
	UserID    string    `json:"user_id"` // UUID
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Token     string    `json:"token"` // JWT token
}
