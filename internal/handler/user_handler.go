package handler

import (
	"net/http"

	"learnstudio/internal/middleware"
	"learnstudio/internal/model"
	"learnstudio/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler lets the signed-in user change their own account
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{users: s}
}

func (h *UserHandler) UpdateEmail(c *gin.Context) {
	var req model.UpdateEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateEmail(c.Request.Context(), middleware.CurrentUser(c), req.CurrentPassword, req.NewEmail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email updated successfully", "user": user.Public()})
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req model.UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.UpdatePassword(c.Request.Context(), middleware.CurrentUser(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	var req model.UpdateAvatarRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.UpdateAvatar(c.Request.Context(), middleware.CurrentUser(c), req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Avatar updated successfully", "avatar": user.Avatar})
}

// RegisterUserRoutes registers account routes behind authMW
func (h *UserHandler) RegisterUserRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	userGroup := rg.Group("/user", authMW)
	{
		userGroup.PUT("/email", h.UpdateEmail)
		userGroup.PUT("/password", h.UpdatePassword)
		userGroup.PUT("/avatar", h.UpdateAvatar)
	}
}
