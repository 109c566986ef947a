package model

import "time"

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID    string
	Email     string
	IsDoner   bool
	TokenID   string
	ExpiresAt time.Time
}
