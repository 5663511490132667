package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banmai/schoolgate/internal/cache"
	"github.com/banmai/schoolgate/internal/token"
)

// Cache key prefixes for the session record
const (
	accessKeyPrefix  = "access:"
	refreshKeyPrefix = "refresh:"
)

// Session lifecycle errors
var (
	// ErrNoActiveSession indicates no stored refresh token for the user.
	ErrNoActiveSession = errors.New("session: no active session")

	// ErrInvalidSession indicates the stored refresh token failed
	// verification.
	ErrInvalidSession = errors.New("session: invalid session")

	// ErrNothingToRevoke indicates sign-out found no live access entry.
	ErrNothingToRevoke = errors.New("session: nothing to revoke")
)

// Directory is the slice of the user store the session service needs for
// account-verification links
type Directory interface {
	MarkVerifiedByEmail(ctx context.Context, email string, asTeacher bool) error
}

// Pair is the result of a sign-in
type Pair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Service owns the session record lifecycle: one live access/refresh pair
// per user, stored in the cache under kind-prefixed keys with TTLs matching
// the token lifetimes. The cache is the single source of truth; nothing is
// held in process memory, so concurrent sign-ins are last-write-wins.
type Service struct {
	tokens    *token.Service
	store     cache.Store
	directory Directory
}

// NewService creates a new session service
func NewService(tokens *token.Service, store cache.Store, directory Directory) *Service {
	return &Service{
		tokens:    tokens,
		store:     store,
		directory: directory,
	}
}

// AccessKey returns the cache key holding a user's live access token
func AccessKey(userID string) string { return accessKeyPrefix + userID }

// RefreshKey returns the cache key holding a user's live refresh token
func RefreshKey(userID string) string { return refreshKeyPrefix + userID }

// SignIn materializes a session for a verified identity: both tokens are
// minted and written to the cache with TTLs matching their lifetimes. A
// prior session for the same user is overwritten, not merged. A partial
// write failure is surfaced as-is; the caller retries from scratch, there is
// no compensating rollback.
func (s *Service) SignIn(ctx context.Context, identity token.Identity) (*Pair, error) {
	accessToken, accessExpiry, err := s.tokens.IssueAccess(identity)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshExpiry, err := s.tokens.IssueRefresh(identity)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, AccessKey(identity.ID), accessToken, s.tokens.AccessTTL()); err != nil {
		return nil, fmt.Errorf("failed to store access token: %w", err)
	}

	if err := s.store.Set(ctx, RefreshKey(identity.ID), refreshToken, s.tokens.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &Pair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExpiry,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// Refresh re-validates the stored refresh token and mints a new, shorter
// lived access token. The refresh token itself is untouched (no rotation).
// The new access token overwrites the session record's access entry, keeping
// a single live pair per user.
func (s *Service) Refresh(ctx context.Context, userID string) (string, time.Time, error) {
	stored, err := s.store.Get(ctx, RefreshKey(userID))
	if errors.Is(err, cache.ErrNotFound) {
		return "", time.Time{}, ErrNoActiveSession
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to read refresh token: %w", err)
	}

	claims, err := s.tokens.VerifyRefresh(stored)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	accessToken, expiry, err := s.tokens.IssueAccessFor(claims.Identity, s.tokens.RefreshedAccessTTL())
	if err != nil {
		return "", time.Time{}, err
	}

	if err := s.store.Set(ctx, AccessKey(userID), accessToken, s.tokens.RefreshedAccessTTL()); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store access token: %w", err)
	}

	return accessToken, expiry, nil
}

// SignOut destroys the session record. If no live access entry exists there
// is nothing to revoke and the caller is told so; cookies are cleared at the
// transport layer regardless.
func (s *Service) SignOut(ctx context.Context, userID string) error {
	_, err := s.store.Get(ctx, AccessKey(userID))
	if errors.Is(err, cache.ErrNotFound) {
		return ErrNothingToRevoke
	}
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}

	if err := s.store.Delete(ctx, AccessKey(userID)); err != nil {
		return fmt.Errorf("failed to delete access token: %w", err)
	}

	if err := s.store.Delete(ctx, RefreshKey(userID)); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}

	return nil
}

// VerifyAccountToken validates an access-kind token from an email
// verification link and marks the account it names as verified. This is a
// side effect on the user directory, not on the session record.
func (s *Service) VerifyAccountToken(ctx context.Context, tokenString string, asTeacher bool) (token.Identity, error) {
	claims, err := s.tokens.VerifyAccess(tokenString)
	if err != nil {
		return token.Identity{}, err
	}

	if err := s.directory.MarkVerifiedByEmail(ctx, claims.Identity.Email, asTeacher); err != nil {
		return token.Identity{}, fmt.Errorf("failed to mark account verified: %w", err)
	}

	return claims.Identity, nil
}
