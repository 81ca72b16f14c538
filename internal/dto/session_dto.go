package dto

import "time"

// SessionRequest picks a user from the roster.
type SessionRequest struct {
	UserID   uint   `json:"user_id" validate:"required,gt=0"`
	UserType string `json:"user_type" validate:"required,oneof=student teacher"`
}

// SessionUser is the identity encoded in the issued token.
type SessionUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

// SessionResponse returns a signed bearer token.
type SessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      SessionUser `json:"user"`
}

// SeedRosterResponse reports how many demo records were created.
type SeedRosterResponse struct {
	Teachers    int `json:"teachers"`
	Students    int `json:"students"`
	Classes     int `json:"classes"`
	Assignments int `json:"assignments"`
}
