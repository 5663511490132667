package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/banmai/schoolgate/internal/cache"
	"github.com/banmai/schoolgate/internal/config"
	"github.com/banmai/schoolgate/internal/ratelimit"
	"github.com/banmai/schoolgate/internal/sms"
)

const keyPrefix = "otp:"

// Typed verification errors
var (
	// ErrChallengeGone indicates there is no live challenge for the user,
	// either because none was issued or because its TTL elapsed.
	ErrChallengeGone = errors.New("otp: challenge expired or missing")

	// ErrCodeMismatch indicates the candidate did not match; the stored
	// challenge stays live so the user can retry until it expires.
	ErrCodeMismatch = errors.New("otp: code mismatch")

	// ErrDeliveryFailed indicates the outbound SMS could not be sent.
	ErrDeliveryFailed = errors.New("otp: delivery failed")

	// ErrTooManyAttempts indicates the verification limiter locked the user
	// out.
	ErrTooManyAttempts = errors.New("otp: too many attempts")
)

// Service issues and verifies one-time numeric codes. Codes are single-use:
// a successful verification consumes the stored challenge before returning.
// At most one challenge is live per user; issuing again overwrites.
type Service struct {
	store   cache.Store
	sender  sms.Sender
	limiter *ratelimit.Limiter // nil disables attempt throttling
	length  int
	ttl     time.Duration
}

// NewService creates a new OTP service. limiter may be nil.
func NewService(store cache.Store, sender sms.Sender, limiter *ratelimit.Limiter, cfg config.OTPConfig) *Service {
	return &Service{
		store:   store,
		sender:  sender,
		limiter: limiter,
		length:  cfg.Length,
		ttl:     cfg.TTL,
	}
}

// Issue generates a fresh code for the user and stores it with the
// configured TTL, replacing any prior challenge. The code is returned for
// delivery.
func (s *Service) Issue(ctx context.Context, userID string) (string, error) {
	code, err := generateCode(s.length)
	if err != nil {
		return "", err
	}

	if err := s.store.Set(ctx, keyPrefix+userID, code, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store challenge: %w", err)
	}

	return code, nil
}

// IssueAndSend issues a code and delivers it over SMS
func (s *Service) IssueAndSend(ctx context.Context, userID, phone string) (string, error) {
	code, err := s.Issue(ctx, userID)
	if err != nil {
		return "", err
	}

	text := fmt.Sprintf("Your verification code is %s", code)
	if err := s.sender.Send(ctx, phone, text); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	return code, nil
}

// Verify compares the candidate against the stored challenge. The comparison
// is an exact string match, no normalization. On success the challenge is
// deleted before returning, so a code can never be replayed.
func (s *Service) Verify(ctx context.Context, userID, candidate string) error {
	if s.limiter != nil {
		allowed, _, _, err := s.limiter.Check(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check attempt limit: %w", err)
		}
		if !allowed {
			return ErrTooManyAttempts
		}
	}

	key := keyPrefix + userID
	stored, err := s.store.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return ErrChallengeGone
	}
	if err != nil {
		return fmt.Errorf("failed to read challenge: %w", err)
	}

	if candidate != stored {
		if s.limiter != nil {
			if err := s.limiter.RecordFailure(ctx, userID); err != nil {
				return fmt.Errorf("failed to record attempt: %w", err)
			}
		}
		return ErrCodeMismatch
	}

	// Consume before reporting success so the code is single-use even if
	// the caller fails afterwards.
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to consume challenge: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.RecordSuccess(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear attempt counter: %w", err)
		}
	}

	return nil
}

// generateCode draws a uniform random number below 10^length and zero-pads
// it, so every code in the digit space is equally likely
func generateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length %d", length)
	}

	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}
