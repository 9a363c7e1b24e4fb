package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/errors"
)

// ClaimsKey is the gin context key holding the caller's *Claims.
const ClaimsKey = "claims"

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireRole gates a route on a valid bearer token whose role is in roles.
// With no roles it only requires authentication.
func RequireRole(guard *Guard, roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := guard.RequireRole(BearerToken(c), roles...)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.Set(ClaimsKey, claims)
		c.Set("username", claims.Subject)
		c.Set("role", string(claims.Role))
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by RequireRole.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
