package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts failed attempts per subject inside a window and locks the
// subject out once the limit is exceeded. Both the login path and OTP
// verification use it, distinguished by scope.
type Limiter struct {
	client          *redis.Client
	scope           string        // key namespace, e.g. "login" or "otp"
	window          time.Duration // time window for counting attempts
	maxAttempts     int           // maximum attempts allowed in window
	lockoutDuration time.Duration // how long to block after exceeding limit
}

// NewLimiter creates a new rate limiter for the given scope
func NewLimiter(client *redis.Client, scope string, window time.Duration, maxAttempts int, lockoutDuration time.Duration) *Limiter {
	return &Limiter{
		client:          client,
		scope:           scope,
		window:          window,
		maxAttempts:     maxAttempts,
		lockoutDuration: lockoutDuration,
	}
}

// AttemptKey returns the Redis key for tracking attempts
func (l *Limiter) AttemptKey(subject string) string {
	return fmt.Sprintf("ratelimit:%s:attempts:%s", l.scope, subject)
}

// LockoutKey returns the Redis key for lockout status
func (l *Limiter) LockoutKey(subject string) string {
	return fmt.Sprintf("ratelimit:%s:lockout:%s", l.scope, subject)
}

// Check reports whether an attempt is allowed.
// Returns: allowed (bool), remainingAttempts (int), lockoutRemaining (time.Duration), error
func (l *Limiter) Check(ctx context.Context, subject string) (bool, int, time.Duration, error) {
	lockoutKey := l.LockoutKey(subject)

	// Check if currently locked out
	ttl, err := l.client.TTL(ctx, lockoutKey).Result()
	if err != nil && err != redis.Nil {
		return false, 0, 0, fmt.Errorf("failed to check lockout status: %w", err)
	}

	if ttl > 0 {
		// Still locked out
		return false, 0, ttl, nil
	}

	// Check attempt count
	attemptKey := l.AttemptKey(subject)
	count, err := l.client.Get(ctx, attemptKey).Int()
	if err != nil && err != redis.Nil {
		return false, 0, 0, fmt.Errorf("failed to get attempt count: %w", err)
	}

	remaining := l.maxAttempts - count
	if remaining <= 0 {
		// Exceeded max attempts, initiate lockout
		if err := l.client.Set(ctx, lockoutKey, "1", l.lockoutDuration).Err(); err != nil {
			return false, 0, 0, fmt.Errorf("failed to set lockout: %w", err)
		}
		if err := l.client.Del(ctx, attemptKey).Err(); err != nil {
			return false, 0, l.lockoutDuration, fmt.Errorf("failed to clear attempt counter: %w", err)
		}
		return false, 0, l.lockoutDuration, nil
	}

	return true, remaining, 0, nil
}

// RecordFailure records a failed attempt
func (l *Limiter) RecordFailure(ctx context.Context, subject string) error {
	attemptKey := l.AttemptKey(subject)

	count, err := l.client.Incr(ctx, attemptKey).Result()
	if err != nil {
		return fmt.Errorf("failed to increment attempt counter: %w", err)
	}

	// Set expiry on first attempt
	if count == 1 {
		if err := l.client.Expire(ctx, attemptKey, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set expiry: %w", err)
		}
	}

	return nil
}

// RecordSuccess clears the attempt counter after a successful attempt
func (l *Limiter) RecordSuccess(ctx context.Context, subject string) error {
	if err := l.client.Del(ctx, l.AttemptKey(subject)).Err(); err != nil {
		return fmt.Errorf("failed to clear attempt counter: %w", err)
	}

	return nil
}

// ClearLockout manually clears a lockout (admin function)
func (l *Limiter) ClearLockout(ctx context.Context, subject string) error {
	if err := l.client.Del(ctx, l.LockoutKey(subject), l.AttemptKey(subject)).Err(); err != nil {
		return fmt.Errorf("failed to clear lockout: %w", err)
	}

	return nil
}
