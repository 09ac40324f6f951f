// Package auth implements user registration and session management.
//
// Sessions are opaque random tokens mapped to user ids in the key-value
// cache under "auth_<token>" with a fixed 24-hour expiry. Every resolve
// round-trips to the cache; there is no local session caching and no
// sliding expiry window.
//
// Passwords are stored only as one-way SHA-1 hashes. SHA-1 is not a
// password KDF, but it is the scheme the stored credentials use; changing
// it would invalidate every existing account.
package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/cache"
	"github.com/marmos91/dittodrive/pkg/metadata"
)

// SessionTTL is the fixed lifetime of a session token.
const SessionTTL = 24 * time.Hour

// sessionKeyPrefix namespaces session entries in the shared cache.
const sessionKeyPrefix = "auth_"

var (
	// ErrUnauthorized covers every authentication failure: unknown or
	// expired token, unknown email, wrong password. Callers never learn
	// which one it was.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMissingEmail indicates registration without an email.
	ErrMissingEmail = errors.New("missing email")

	// ErrMissingPassword indicates registration without a password.
	ErrMissingPassword = errors.New("missing password")

	// ErrEmailExists indicates the email is already registered.
	ErrEmailExists = errors.New("already exist")
)

// Service provides registration, credential exchange and the session token
// lifecycle. It holds no state of its own; users live in the metadata store
// and sessions in the cache.
type Service struct {
	store metadata.MetadataStore
	cache cache.Cache
}

// NewService creates an auth service over the given stores.
func NewService(store metadata.MetadataStore, sessionCache cache.Cache) *Service {
	return &Service{store: store, cache: sessionCache}
}

// HashPassword returns the hex-encoded SHA-1 hash of a password.
func HashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Register creates a new user with a hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (*metadata.User, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}

	user, err := s.store.CreateUser(ctx, email, HashPassword(password))
	if err != nil {
		if metadata.IsAlreadyExists(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("Welcome %s!", user.Email)
	return user, nil
}

// CreateSession exchanges credentials for a fresh session token.
//
// The token is a random UUID; given its entropy no collision detection is
// performed. The mapping expires after SessionTTL.
func (s *Service) CreateSession(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrUnauthorized
	}

	user, err := s.store.GetUserByCredentials(ctx, email, HashPassword(password))
	if err != nil {
		if metadata.IsNotFound(err) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to look up credentials: %w", err)
	}

	token := uuid.NewString()
	if err := s.cache.Set(ctx, sessionKeyPrefix+token, string(user.ID), SessionTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// ResolveSession returns the user id a token proves, or ErrUnauthorized if
// the token is absent or expired. Resolving does not refresh the expiry.
func (s *Service) ResolveSession(ctx context.Context, token string) (metadata.UserID, error) {
	if token == "" {
		return "", ErrUnauthorized
	}

	value, err := s.cache.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to resolve session: %w", err)
	}
	return metadata.UserID(value), nil
}

// DestroySession removes the token's mapping unconditionally. Destroying an
// absent session is not an error.
func (s *Service) DestroySession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.cache.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// GetUser returns the user record for an id, or ErrUnauthorized if no such
// user exists (a resolved session pointing at a missing user is treated as
// an invalid session).
func (s *Service) GetUser(ctx context.Context, id metadata.UserID) (*metadata.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if metadata.IsNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
