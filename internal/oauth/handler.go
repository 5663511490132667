package oauth

import (
	"net/http"

	"github.com/banmai/schoolgate/internal/middleware"
	"github.com/banmai/schoolgate/internal/session"
	"github.com/banmai/schoolgate/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles OAuth HTTP requests
type Handler struct {
	service   *AuthService
	googleSvc *GoogleService
	sessions  *session.Handler
	clientURL string
	logger    *zap.Logger
}

// NewHandler creates a new OAuth handler
func NewHandler(service *AuthService, googleSvc *GoogleService, sessions *session.Handler, clientURL string, logger *zap.Logger) *Handler {
	return &Handler{
		service:   service,
		googleSvc: googleSvc,
		sessions:  sessions,
		clientURL: clientURL,
		logger:    logger,
	}
}

// GoogleLogin starts the Google OAuth flow
// GET /auth/google
func (h *Handler) GoogleLogin(c *gin.Context) {
	redirectURL := c.Query("redirect")
	if redirectURL == "" {
		redirectURL = h.clientURL + "/signin/success"
	}

	authURL, err := h.googleSvc.GetAuthURL(c.Request.Context(), redirectURL)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback completes the Google OAuth flow and establishes a session
// GET /auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	usr, redirectURL, err := h.service.AuthenticateWithGoogle(c.Request.Context(), code, state)
	if err != nil {
		middleware.RecordSignInAttempt("google", "failure")
		h.logger.Warn("Google sign-in failed", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, h.clientURL+"/signin")
		return
	}

	if _, err := h.sessions.Establish(c, usr.Identity()); err != nil {
		h.logger.Error("failed to establish session", zap.Error(err))
		c.Redirect(http.StatusTemporaryRedirect, h.clientURL+"/signin")
		return
	}

	middleware.RecordSignInAttempt("google", "success")

	if redirectURL == "" {
		redirectURL = h.clientURL + "/signin/success"
	}

	c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}
