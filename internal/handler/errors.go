package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"learnstudio/internal/avatar"
	"learnstudio/internal/llm"
	"learnstudio/internal/service"
	"learnstudio/internal/utils"

	"github.com/gin-gonic/gin"
)

// errorStatuses maps domain errors to the status returned with their message.
// Routes that need a different status for the same error pass an override.
// The body always carries the matched error's own text, never the wrap chain.
var errorStatuses = []struct {
	err    error
	status int
}{
	{service.ErrEmailTaken, http.StatusBadRequest},
	{service.ErrBadAdminCode, http.StatusBadRequest},
	{service.ErrAdminQuotaExceeded, http.StatusBadRequest},
	{service.ErrWeakPassword, http.StatusBadRequest},
	{service.ErrWrongPassword, http.StatusBadRequest},
	{service.ErrSameEmail, http.StatusBadRequest},
	{service.ErrNoActiveRequest, http.StatusBadRequest},
	{service.ErrOTPExpired, http.StatusBadRequest},
	{service.ErrOTPMismatch, http.StatusBadRequest},
	{service.ErrInvalidDay, http.StatusBadRequest},
	{service.ErrNotIntern, http.StatusBadRequest},
	{avatar.ErrInvalidAvatar, http.StatusBadRequest},
	{avatar.ErrAvatarTooLarge, http.StatusBadRequest},

	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrUserNotFound, http.StatusUnauthorized},
	{utils.ErrExpiredToken, http.StatusUnauthorized},
	{utils.ErrInvalidToken, http.StatusUnauthorized},

	{service.ErrWrongPortal, http.StatusForbidden},
	{service.ErrNotAdmin, http.StatusForbidden},

	{service.ErrChatNotConfigured, http.StatusInternalServerError},
}

type statusOverride map[error]int

func respondError(c *gin.Context, err error, overrides ...statusOverride) {
	for _, o := range overrides {
		for target, status := range o {
			if errors.Is(err, target) {
				c.JSON(status, gin.H{"error": target.Error()})
				return
			}
		}
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			c.JSON(e.status, gin.H{"error": e.err.Error()})
			return
		}
	}

	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		slog.WarnContext(c.Request.Context(), "chat provider failed", "kind", perr.Kind, "error", perr.Err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Chat provider error", "kind": perr.Kind})
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		slog.WarnContext(c.Request.Context(), "request timed out", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		return
	}

	slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// bindJSON writes a 400 and returns false when the body does not match obj
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return false
	}
	return true
}
