package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"slotbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePasswordHasher hashes by prefixing; Compare checks the prefix.
type fakePasswordHasher struct {
	hashErr error
}

func (f *fakePasswordHasher) Hash(password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "hashed:" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer records the last subject and expiry it was asked to sign.
type fakeTokenIssuer struct {
	subject string
	expiry  time.Duration
	err     error
}

func (f *fakeTokenIssuer) Issue(subject string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.subject = subject
	f.expiry = expiry
	return "token-for-" + subject, nil
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("correct password issues an admin token", func(t *testing.T) {
		issuer := &fakeTokenIssuer{}
		svc, err := NewAuthService("s3cret", &fakePasswordHasher{}, issuer, 12*time.Hour)
		require.NoError(t, err)

		token, err := svc.Login(ctx, "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "token-for-admin", token)
		assert.Equal(t, "admin", issuer.subject)
		assert.Equal(t, 12*time.Hour, issuer.expiry)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, err := NewAuthService("s3cret", &fakePasswordHasher{}, &fakeTokenIssuer{}, 12*time.Hour)
		require.NoError(t, err)

		token, err := svc.Login(ctx, "nope")
		require.True(t, errors.Is(err, domain.ErrUnauthorized))
		assert.Empty(t, token)
	})

	t.Run("issuer failure", func(t *testing.T) {
		svc, err := NewAuthService("s3cret", &fakePasswordHasher{}, &fakeTokenIssuer{err: errors.New("sign failed")}, 12*time.Hour)
		require.NoError(t, err)

		_, err = svc.Login(ctx, "s3cret")
		require.Error(t, err)
		require.False(t, errors.Is(err, domain.ErrUnauthorized))
	})
}

func TestNewAuthService_HashFailure(t *testing.T) {
	_, err := NewAuthService("s3cret", &fakePasswordHasher{hashErr: errors.New("cost out of range")}, &fakeTokenIssuer{}, time.Hour)
	require.Error(t, err)
}
