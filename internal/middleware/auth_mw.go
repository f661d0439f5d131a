package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"learnstudio/internal/model"
	"learnstudio/internal/service"
	"learnstudio/internal/utils"

	"github.com/gin-gonic/gin"
)

const AuthUserKey = "authUser"

// UserResolver turns a bearer token into the current user
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (*model.User, error)
}

// Authenticate validates the bearer token and loads the user fresh from the store
func Authenticate(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrExpiredToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			case errors.Is(err, utils.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			case errors.Is(err, service.ErrUserNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			default:
				slog.ErrorContext(c.Request.Context(), "failed to resolve current user", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.Set(AuthUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate, or nil outside an authenticated route
func CurrentUser(c *gin.Context) *model.User {
	val, exists := c.Get(AuthUserKey)
	if !exists {
		return nil
	}
	user, _ := val.(*model.User)
	return user
}
