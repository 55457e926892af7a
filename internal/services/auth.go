package services

import (
	"context"
	"fmt"
	"time"

	"slotbooking/internal/domain"
)

// adminSubject is the token subject for the single organizer account.
const adminSubject = "admin"

type authService struct {
	passwordHash string
	hasher       domain.PasswordHasher
	issuer       domain.TokenIssuer
	tokenExpiry  time.Duration
}

// NewAuthService creates an AuthService. adminPassword is the plaintext from
// configuration; it is hashed once here so only the hash is retained.
func NewAuthService(adminPassword string, hasher domain.PasswordHasher, issuer domain.TokenIssuer, tokenExpiry time.Duration) (domain.AuthService, error) {
	hash, err := hasher.Hash(adminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &authService{
		passwordHash: hash,
		hasher:       hasher,
		issuer:       issuer,
		tokenExpiry:  tokenExpiry,
	}, nil
}

func (s *authService) Login(ctx context.Context, password string) (string, error) {
	if err := s.hasher.Compare(s.passwordHash, password); err != nil {
		return "", domain.ErrUnauthorized
	}
	token, err := s.issuer.Issue(adminSubject, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
