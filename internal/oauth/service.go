package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/banmai/schoolgate/internal/user"
	"go.uber.org/zap"
)

// ErrNoAccount indicates the Google identity matches no directory account.
// Accounts are provisioned by school administration, never by OAuth sign-in.
var ErrNoAccount = errors.New("oauth: no account for this identity")

// AuthService resolves an OAuth identity to a directory account
type AuthService struct {
	users     *user.Repository
	googleSvc *GoogleService
	logger    *zap.Logger
}

// NewAuthService creates a new OAuth authentication service
func NewAuthService(users *user.Repository, googleSvc *GoogleService, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		googleSvc: googleSvc,
		logger:    logger,
	}
}

// AuthenticateWithGoogle completes the Google callback and returns the
// matched user plus the post-login redirect URL
func (s *AuthService) AuthenticateWithGoogle(ctx context.Context, code, state string) (*user.User, string, error) {
	info, redirectURL, err := s.googleSvc.HandleCallback(ctx, code, state)
	if err != nil {
		return nil, "", err
	}

	usr, err := s.resolveGoogleUser(ctx, info)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.UpdateLastLoggedOn(ctx, usr.ID); err != nil {
		s.logger.Warn("failed to update last_logged_on", zap.Error(err))
	}

	return usr, redirectURL, nil
}

// resolveGoogleUser finds the account behind a Google identity: first by a
// previously linked Google UID, then by email, linking the UID on first use
func (s *AuthService) resolveGoogleUser(ctx context.Context, info *UserInfo) (*user.User, error) {
	usr, err := s.users.FindByGoogleUID(ctx, info.ProviderUserID)
	if err != nil {
		return nil, err
	}
	if usr != nil {
		return usr, nil
	}

	usr, err = s.users.FindByEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}
	if usr == nil {
		return nil, ErrNoAccount
	}

	if err := s.users.LinkGoogleUID(ctx, usr.ID, info.ProviderUserID); err != nil {
		return nil, fmt.Errorf("failed to link Google account: %w", err)
	}

	return usr, nil
}
