package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/banmai/schoolgate/internal/middleware"
	"github.com/banmai/schoolgate/internal/otp"
	"github.com/banmai/schoolgate/internal/session"
	"github.com/banmai/schoolgate/internal/token"
	apperrors "github.com/banmai/schoolgate/pkg/errors"
	"github.com/banmai/schoolgate/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler handles authentication HTTP requests
type Handler struct {
	service  *Service
	sessions *session.Handler
}

// NewHandler creates a new authentication handler
func NewHandler(service *Service, sessions *session.Handler) *Handler {
	return &Handler{service: service, sessions: sessions}
}

// SignIn handles phone/password sign-in
// POST /auth/signin
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if err := ValidateSignInRequest(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	usr, err := h.service.AuthenticatePhonePassword(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrRateLimited):
			middleware.RecordSignInAttempt("password", "blocked")
			middleware.RecordRateLimitHit()
			response.Error(c, apperrors.ErrRateLimitExceeded)
		case errors.Is(err, ErrInvalidCredentials):
			middleware.RecordSignInAttempt("password", "failure")
			response.Error(c, apperrors.ErrInvalidCredentials)
		default:
			response.Error(c, err)
		}
		return
	}

	pair, err := h.sessions.Establish(c, usr.Identity())
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.RecordSignInAttempt("password", "success")

	response.Success(c, http.StatusOK, gin.H{
		"user":  usr,
		"token": pair,
	})
}

// SendOTPRequest represents an OTP dispatch request
type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// SendOTP dispatches a verification code to a registered phone number
// POST /auth/otp
func (h *Handler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	usr, err := h.service.SendOTP(c.Request.Context(), req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, apperrors.ErrUserNotFound)
		case errors.Is(err, otp.ErrDeliveryFailed):
			response.Error(c, apperrors.ErrDeliveryFailed)
		default:
			response.Error(c, err)
		}
		return
	}

	middleware.RecordOTPIssued()

	response.Success(c, http.StatusOK, gin.H{
		"user_id": usr.ID,
		"message": "Verification code sent",
	})
}

// VerifyPhoneRequest represents an OTP verification request
type VerifyPhoneRequest struct {
	VerifyCode string `json:"verifyCode" binding:"required"`
}

// VerifyPhone checks a verification code and grants a short-lived access
// token for the verified-recently window
// POST /auth/otp/:userId/verify
func (h *Handler) VerifyPhone(c *gin.Context) {
	userID := c.Param("userId")

	var req VerifyPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	accessToken, expiry, err := h.service.VerifyPhone(c.Request.Context(), userID, req.VerifyCode)
	if err != nil {
		switch {
		case errors.Is(err, otp.ErrChallengeGone):
			middleware.RecordOTPVerification("gone")
			response.Error(c, apperrors.ErrCodeGone)
		case errors.Is(err, otp.ErrCodeMismatch):
			middleware.RecordOTPVerification("mismatch")
			response.Error(c, apperrors.ErrCodeIncorrect)
		case errors.Is(err, otp.ErrTooManyAttempts):
			middleware.RecordOTPVerification("blocked")
			middleware.RecordRateLimitHit()
			response.Error(c, apperrors.ErrRateLimitExceeded)
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, apperrors.ErrUserNotFound)
		default:
			response.Error(c, err)
		}
		return
	}

	middleware.RecordOTPVerification("success")

	maxAge := int(time.Until(expiry).Seconds())
	h.sessions.SetShortLivedAccessCookie(c, accessToken, maxAge)

	response.Success(c, http.StatusOK, gin.H{
		"access_token": accessToken,
		"is_success":   true,
	})
}

// ResetPasswordRequest represents a password reset request
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required"`
}

// ResetPassword replaces the caller's password, gated by the short access
// token set after OTP verification
// POST /auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	accessToken, err := c.Cookie(session.AccessTokenCookie)
	if err != nil || accessToken == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err.Error())
		return
	}

	if len(req.NewPassword) < minPasswordLength {
		response.ValidationError(c, "Password is too short")
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), accessToken, req.NewPassword); err != nil {
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
		"message": "Password updated",
	})
}

// Me returns the directory record for the authenticated caller
// GET /auth/me
func (h *Handler) Me(c *gin.Context) {
	claims := session.CurrentClaims(c)
	if claims == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	usr, err := h.service.GetCurrentUser(c.Request.Context(), claims.Identity.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, apperrors.ErrUserNotFound)
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": usr,
	})
}
