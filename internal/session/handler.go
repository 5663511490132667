package session

import (
	"errors"
	"net/http"

	"github.com/banmai/schoolgate/internal/token"
	apperrors "github.com/banmai/schoolgate/pkg/errors"
	"github.com/banmai/schoolgate/pkg/response"
	"github.com/gin-gonic/gin"
)

// Cookie names set on sign-in and cleared on sign-out
const (
	AccessTokenCookie = "access_token"
	UIDCookie         = "uid"
)

// Cookie max-ages in seconds. The access cookie deliberately outlives the
// token inside it: expiry is enforced by verification, not cookie removal.
const (
	accessCookieMaxAge = 60 * 60 * 24 * 365
	uidCookieMaxAge    = 60 * 60 * 24 * 30
)

// Handler handles session HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new session handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Establish signs the identity in and sets the transport cookies. The auth
// and oauth handlers call this after their provider has verified the
// identity claim.
func (h *Handler) Establish(c *gin.Context, identity token.Identity) (*Pair, error) {
	pair, err := h.service.SignIn(c.Request.Context(), identity)
	if err != nil {
		return nil, err
	}

	c.SetCookie(AccessTokenCookie, pair.AccessToken, accessCookieMaxAge, "/", "", false, true)
	c.SetCookie(UIDCookie, identity.ID, uidCookieMaxAge, "/", "", false, true)

	return pair, nil
}

// SetShortLivedAccessCookie sets the access cookie for the post-OTP window
func (h *Handler) SetShortLivedAccessCookie(c *gin.Context, accessToken string, maxAgeSeconds int) {
	c.SetCookie(AccessTokenCookie, accessToken, maxAgeSeconds, "/", "", false, true)
}

// Refresh mints a new access token from the stored refresh token
// GET /auth/refresh-token
func (h *Handler) Refresh(c *gin.Context) {
	userID, err := c.Cookie(UIDCookie)
	if err != nil || userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	accessToken, expiry, err := h.service.Refresh(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoActiveSession):
			response.Error(c, apperrors.ErrNoActiveSession)
		case errors.Is(err, ErrInvalidSession):
			response.Error(c, apperrors.ErrInvalidSession)
		default:
			response.Error(c, err)
		}
		return
	}

	c.SetCookie(AccessTokenCookie, accessToken, accessCookieMaxAge, "/", "", false, true)

	response.Success(c, http.StatusOK, gin.H{
		"access_token": accessToken,
		"expires_at":   expiry,
	})
}

// SignOut revokes the session and clears cookies
// POST /auth/signout
func (h *Handler) SignOut(c *gin.Context) {
	// Cookies are cleared no matter what the revocation outcome is
	defer func() {
		c.SetCookie(AccessTokenCookie, "", -1, "/", "", false, true)
		c.SetCookie(UIDCookie, "", -1, "/", "", false, true)
	}()

	claims := CurrentClaims(c)
	if claims == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.service.SignOut(c.Request.Context(), claims.Identity.ID); err != nil {
		if errors.Is(err, ErrNothingToRevoke) {
			response.Error(c, apperrors.ErrNothingToRevoke)
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{
		"message": "Signed out",
	})
}

// VerifyAccount handles email verification links
// GET /auth/verify?token=TOKEN&user_type=teacher
func (h *Handler) VerifyAccount(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	asTeacher := c.Query("user_type") == "teacher"

	identity, err := h.service.VerifyAccountToken(c.Request.Context(), tokenString, asTeacher)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			response.Error(c, apperrors.ErrTokenExpired)
		case errors.Is(err, token.ErrInvalid):
			response.Error(c, apperrors.ErrInvalidToken)
		default:
			response.Error(c, err)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Account verified",
		"email":   identity.Email,
	})
}

// CurrentClaims returns the claims the auth middleware stored on the
// context, or nil when the request is unauthenticated
func CurrentClaims(c *gin.Context) *token.Claims {
	value, exists := c.Get("claims")
	if !exists {
		return nil
	}

	claims, ok := value.(*token.Claims)
	if !ok {
		return nil
	}

	return claims
}
