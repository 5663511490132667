package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/banmai/schoolgate/internal/session"
	"github.com/banmai/schoolgate/internal/token"
	"github.com/gin-gonic/gin"
)

// Auth creates an authentication middleware. The access token is taken from
// the Authorization header when present, falling back to the http-only
// cookie set at sign-in. The cookie may outlive the token inside it, so
// validity is decided here, not by cookie presence.
func Auth(tokens *token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			tokenString, _ = c.Cookie(session.AccessTokenCookie)
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Missing access token",
				},
			})
			return
		}

		claims, err := tokens.VerifyAccess(tokenString)
		if err != nil {
			code := "INVALID_TOKEN"
			if errors.Is(err, token.ErrExpired) {
				code = "TOKEN_EXPIRED"
			}
			RecordTokenVerification("failure")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    code,
					"message": "Invalid or expired access token",
				},
			})
			return
		}

		RecordTokenVerification("success")

		c.Set("claims", claims)
		c.Set("user_id", claims.Identity.ID)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
