package domain

import (
	"context"
	"time"
)

// PasswordHasher hashes and verifies the organizer password.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues admin session tokens (e.g. JWT).
type TokenIssuer interface {
	Issue(subject string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

// AuthService authenticates the organizer and issues session tokens.
type AuthService interface {
	// Login compares the password against the configured admin password and
	// returns a bearer token on success. Errors: ErrUnauthorized.
	Login(ctx context.Context, password string) (token string, err error)
}
