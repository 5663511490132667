package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/banmai/schoolgate/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Typed verification errors, mapped to HTTP statuses at the transport layer
var (
	// ErrSigning indicates a configuration problem (missing or unusable
	// secret), never a payload problem.
	ErrSigning = errors.New("token: signing failed")

	// ErrExpired indicates the embedded expiry has passed.
	ErrExpired = errors.New("token: expired")

	// ErrInvalid indicates a bad signature, malformed structure, or a token
	// of the wrong kind.
	ErrInvalid = errors.New("token: invalid")
)

const issuer = "schoolgate"

// Service mints and verifies signed, time-bound tokens. It holds no state
// beyond its configuration; persistence of issued tokens is the session
// store's job.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	cfg           config.TokenConfig
}

// NewService creates a new token service from explicit configuration
func NewService(cfg config.TokenConfig) *Service {
	return &Service{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		cfg:           cfg,
	}
}

// AccessTTL returns the configured access token lifetime
func (s *Service) AccessTTL() time.Duration { return s.cfg.AccessTTL }

// RefreshTTL returns the configured refresh token lifetime
func (s *Service) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// RefreshedAccessTTL returns the lifetime of access tokens minted on refresh
func (s *Service) RefreshedAccessTTL() time.Duration { return s.cfg.RefreshedAccessTTL }

// VerifiedAccessTTL returns the lifetime of the post-OTP access token
func (s *Service) VerifiedAccessTTL() time.Duration { return s.cfg.VerifiedAccessTTL }

// IssueAccess mints an access token with the configured access lifetime
func (s *Service) IssueAccess(identity Identity) (string, time.Time, error) {
	return s.issue(KindAccess, identity, s.cfg.AccessTTL)
}

// IssueAccessFor mints an access token with an explicit lifetime, used by
// the refresh path (30m) and the post-OTP verification path (5m)
func (s *Service) IssueAccessFor(identity Identity, ttl time.Duration) (string, time.Time, error) {
	return s.issue(KindAccess, identity, ttl)
}

// IssueRefresh mints a refresh token with the configured refresh lifetime
func (s *Service) IssueRefresh(identity Identity) (string, time.Time, error) {
	return s.issue(KindRefresh, identity, s.cfg.RefreshTTL)
}

func (s *Service) issue(kind Kind, identity Identity, ttl time.Duration) (string, time.Time, error) {
	secret := s.secretFor(kind)
	if len(secret) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: no secret configured for %s tokens", ErrSigning, kind)
	}

	now := time.Now()
	expiry := now.Add(ttl)

	claims := Claims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   identity.ID,
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrSigning, err)
	}

	return signed, expiry, nil
}

// VerifyAccess validates an access token and returns its claims
func (s *Service) VerifyAccess(tokenString string) (*Claims, error) {
	return s.verify(KindAccess, tokenString)
}

// VerifyRefresh validates a refresh token and returns its claims
func (s *Service) VerifyRefresh(tokenString string) (*Claims, error) {
	return s.verify(KindRefresh, tokenString)
}

func (s *Service) verify(kind Kind, tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretFor(kind), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalid)
	}

	return claims, nil
}

func (s *Service) secretFor(kind Kind) []byte {
	if kind == KindRefresh {
		return s.refreshSecret
	}
	return s.accessSecret
}
