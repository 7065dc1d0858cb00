package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/labormap/core/internal/pkg/jwt"
	"github.com/labormap/core/internal/pkg/response"
)

const ContextKeyAdmin = "is_admin"

// Auth returns a middleware that requires a valid admin token.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !validAdminToken(extractToken(c)) {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyAdmin, true)
		c.Next()
	}
}

// OptionalAuth marks the request as admin when a valid token is present, but
// never blocks. Public handlers use this to decide submitter-field visibility
// and the published filter.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if validAdminToken(extractToken(c)) {
			c.Set(ContextKeyAdmin, true)
		}
		c.Next()
	}
}

// IsAuthenticated reports whether the request carries a valid admin token.
func IsAuthenticated(c *gin.Context) bool {
	v, _ := c.Get(ContextKeyAdmin)
	ok, _ := v.(bool)
	return ok
}

func validAdminToken(token string) bool {
	if token == "" {
		return false
	}
	claims, err := jwt.Parse(token)
	return err == nil && claims.Scope == jwt.ScopeAdmin
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
