package core

import (
	"context"
	"time"
)

// User authenticated caller
type User struct {
	Identity  string    `json:"identity"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Session user session
type Session interface {
	// Login resolve the caller behind an access token
	Login(ctx context.Context, accessToken string) (*User, error)
	// Issue sign an access token for identity
	Issue(ctx context.Context, identity string, ttl time.Duration) (string, error)
}
