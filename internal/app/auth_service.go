package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bodylog/internal/domain"
)

// SessionTTL is how long an unlocked session stays valid.
const SessionTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials indicates that the provided password was incorrect.
	ErrInvalidCredentials = errors.New("invalid password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired or moved to
	// another client.
	ErrSessionExpired = errors.New("session expired")
)

// AuthService implements the optional single-owner password lock. With an
// empty hash the lock is disabled and every request is allowed.
type AuthService struct {
	hash     []byte
	sessions domain.SessionRepository
	now      func() time.Time
}

// NewAuthService creates an AuthService for the given bcrypt hash.
func NewAuthService(passwordHash string, sessions domain.SessionRepository) *AuthService {
	return &AuthService{hash: []byte(passwordHash), sessions: sessions, now: time.Now}
}

// Enabled reports whether a password is configured.
func (s *AuthService) Enabled() bool {
	return len(s.hash) > 0
}

// Login checks the password and creates a session bound to userAgent.
func (s *AuthService) Login(ctx context.Context, password, userAgent string) (string, error) {
	if !s.Enabled() {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.sessions.Create(ctx, token, userAgent, s.now().Add(SessionTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks that token is live and was issued to userAgent.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) error {
	if token == "" {
		return ErrSessionNotFound
	}
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) || !ConstantTimeCompare(session.UserAgent, userAgent) {
		_ = s.sessions.Delete(ctx, token)
		return ErrSessionExpired
	}
	return nil
}

// PurgeExpired removes every expired session.
func (s *AuthService) PurgeExpired(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

// HashPassword returns the bcrypt hash to put in the configuration.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", &domain.ValidationError{Field: "password", Reason: "is required"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
