package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roadlines/internal/service"
)

const (
	jobKeyHeader = "X-Job-Key"

	userIDKey    = "user_id"
	userEmailKey = "user_email"
)

// TokenParser verifies access tokens.
type TokenParser interface {
	ParseToken(token string) (*service.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token. Websocket
// upgrades may pass the token as the "token" query parameter instead,
// since browsers cannot set headers on them.
func RequireAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" && c.IsWebsocket() {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		claims, err := parser.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userEmailKey, claims.Email)
		c.Next()
	}
}

// RequireAuthOrJobKey accepts either a valid bearer token or the scheduler's
// job key in the X-Job-Key header. An empty jobKey disables the header.
func RequireAuthOrJobKey(parser TokenParser, jobKey string) gin.HandlerFunc {
	requireAuth := RequireAuth(parser)

	return func(c *gin.Context) {
		if jobKey != "" {
			if key := c.GetHeader(jobKeyHeader); key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(jobKey)) == 1 {
				c.Next()
				return
			}
		}
		requireAuth(c)
	}
}

// GetUserID returns the authenticated user's ID, or "" for job-key callers.
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
