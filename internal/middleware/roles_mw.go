package middleware

import (
	"net/http"

	"learnstudio/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware allows the request through only when the freshly loaded user
// has one of the roles. Authenticate must run first.
func RoleMiddleware(denied string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		for _, role := range allowedRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": denied})
	}
}

// RequireAdmin checks the stored role, not the token claim
func RequireAdmin() gin.HandlerFunc {
	return RoleMiddleware("Admin access required", model.RoleAdmin)
}
