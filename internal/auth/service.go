package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banmai/schoolgate/internal/otp"
	"github.com/banmai/schoolgate/internal/sms"
	"github.com/banmai/schoolgate/internal/token"
	"github.com/banmai/schoolgate/internal/user"
	"go.uber.org/zap"
)

// Credential and lookup errors
var (
	// ErrInvalidCredentials covers both unknown phone and wrong password so
	// the response does not leak which one failed.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrUserNotFound indicates no directory account matches the lookup.
	ErrUserNotFound = errors.New("auth: user not found")

	// ErrRateLimited indicates the login limiter locked the subject out.
	ErrRateLimited = errors.New("auth: too many failed attempts")
)

// RateLimiter is the attempt-throttling contract the sign-in path uses
type RateLimiter interface {
	Check(ctx context.Context, subject string) (allowed bool, remaining int, lockoutRemaining time.Duration, err error)
	RecordFailure(ctx context.Context, subject string) error
	RecordSuccess(ctx context.Context, subject string) error
}

// Service handles the local credential adapter: phone/password sign-in, the
// OTP phone-verification flow, and password reset
type Service struct {
	users       *user.Repository
	tokens      *token.Service
	otp         *otp.Service
	limiter     RateLimiter // nil disables throttling
	countryCode string
	logger      *zap.Logger
}

// NewService creates a new authentication service
func NewService(
	users *user.Repository,
	tokens *token.Service,
	otpService *otp.Service,
	limiter RateLimiter,
	countryCode string,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:       users,
		tokens:      tokens,
		otp:         otpService,
		limiter:     limiter,
		countryCode: countryCode,
		logger:      logger,
	}
}

// SignInRequest represents a phone/password sign-in request
type SignInRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthenticatePhonePassword checks a local credential and returns the user
// on success. All credential failures collapse into ErrInvalidCredentials.
func (s *Service) AuthenticatePhonePassword(ctx context.Context, phone, password string) (*user.User, error) {
	phone = SanitizePhone(phone)

	if s.limiter != nil {
		allowed, _, lockoutRemaining, err := s.limiter.Check(ctx, phone)
		if err != nil {
			// A broken limiter must not take sign-in down with it
			s.logger.Warn("rate limiter check failed", zap.Error(err))
		} else if !allowed {
			return nil, fmt.Errorf("%w: locked out for %v", ErrRateLimited, lockoutRemaining.Round(time.Second))
		}
	}

	usr, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if usr == nil {
		s.recordFailure(ctx, phone)
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(password, usr.PasswordDigest); err != nil {
		s.recordFailure(ctx, phone)
		return nil, ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.RecordSuccess(ctx, phone); err != nil {
			s.logger.Warn("failed to clear attempt counter", zap.Error(err))
		}
	}

	if err := s.users.UpdateLastLoggedOn(ctx, usr.ID); err != nil {
		s.logger.Warn("failed to update last_logged_on", zap.Error(err))
	}

	return usr, nil
}

func (s *Service) recordFailure(ctx context.Context, subject string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, subject); err != nil {
		s.logger.Warn("failed to record login attempt", zap.Error(err))
	}
}

// SendOTP looks up the account behind the phone number and dispatches a
// fresh challenge to it
func (s *Service) SendOTP(ctx context.Context, phone string) (*user.User, error) {
	phone = SanitizePhone(phone)

	usr, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if usr == nil {
		return nil, ErrUserNotFound
	}

	destination := sms.FormatPhone(usr.Phone, s.countryCode)
	if _, err := s.otp.IssueAndSend(ctx, usr.ID, destination); err != nil {
		return nil, err
	}

	return usr, nil
}

// VerifyPhone checks an OTP candidate and, on success, mints a short-lived
// access token scoped to the verified-recently window (password reset)
func (s *Service) VerifyPhone(ctx context.Context, userID, candidate string) (string, time.Time, error) {
	if err := s.otp.Verify(ctx, userID, candidate); err != nil {
		return "", time.Time{}, err
	}

	usr, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("database error: %w", err)
	}
	if usr == nil {
		return "", time.Time{}, ErrUserNotFound
	}

	return s.tokens.IssueAccessFor(usr.Identity(), s.tokens.VerifiedAccessTTL())
}

// GetCurrentUser loads the directory record behind a verified claim
func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*user.User, error) {
	usr, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if usr == nil {
		return nil, ErrUserNotFound
	}
	return usr, nil
}

// ResetPassword replaces the password of the account named by a live access
// token (normally the short post-OTP one)
func (s *Service) ResetPassword(ctx context.Context, accessToken, newPassword string) error {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return err
	}

	digest, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, claims.Identity.ID, digest); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	return nil
}
