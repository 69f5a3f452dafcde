package domain

import (
	"context"
	"time"
)

// Session is an unlocked browser session for the HTTP API.
type Session struct {
	Token     string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, token, userAgent string, expiresAt time.Time) error
	// GetByToken returns nil, nil for unknown or expired tokens.
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
