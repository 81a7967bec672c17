package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderpay/internal/domain/model"
	pkgAuth "github.com/polkiloo/orderpay/internal/pkg/auth"
	"github.com/polkiloo/orderpay/internal/server/http/dto"
)

const (
	// UserIDContextKey is a gin context key for authenticated user identifier.
	UserIDContextKey = "userID"
	// RoleContextKey is a gin context key for the authenticated user's role.
	RoleContextKey = "role"
	authCookieName = "orderpay_token"
	tokenQueryName = "token"
)

// TokenParser resolves the principal behind a bearer token.
type TokenParser interface {
	ParseToken(token string) (pkgAuth.Principal, error)
}

// AuthRequired ensures user is authenticated before accessing handler.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error("authentication required"))
			return
		}

		principal, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error("invalid token"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Error("internal server error"))
			return
		}

		c.Set(UserIDContextKey, principal.UserID)
		c.Set(RoleContextKey, principal.Role)
		c.Next()
	}
}

// AdminRequired rejects principals without the admin role. It must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(RoleContextKey)
		if r, ok := role.(model.Role); !ok || r != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Error("admin role required"))
			return
		}
		c.Next()
	}
}

// extractToken looks at the Authorization header, then the auth cookie, then the
// token query parameter used by EventSource clients that cannot set headers.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil && cookie != "" {
		return cookie
	}
	return c.Query(tokenQueryName)
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
