package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	apperrors "eventforge.io/eventforge/internal/pkg/errors"
)

// RequireRole returns middleware that admits only users holding role.
// It must run after JWTAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, exists := c.Get("roles")
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": apperrors.CodeForbidden, "message": "no roles in context",
			})
			return
		}
		roleList, ok := roles.([]string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": apperrors.CodeForbidden, "message": "invalid roles type",
			})
			return
		}

		if slices.Contains(roleList, role) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code": apperrors.CodeForbidden, "message": "insufficient role",
		})
	}
}
