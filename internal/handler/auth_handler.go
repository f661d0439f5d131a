package handler

import (
	"net/http"

	"learnstudio/internal/middleware"
	"learnstudio/internal/model"
	"learnstudio/internal/service"

	"github.com/gin-gonic/gin"
)

const resetAck = "If the email exists, a reset code has been sent"

// AuthHandler handles authentication requests
type AuthHandler struct {
	auth   service.AuthService
	resets service.ResetService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth service.AuthService, resets service.ResetService) *AuthHandler {
	return &AuthHandler{auth: auth, resets: resets}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.AuthResponse{Token: token, User: user.Public()})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.AuthResponse{Token: token, User: user.Public()})
}

func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.auth.AdminLogin(c.Request.Context(), req.Email, req.Password, req.AdminCode)
	if err != nil {
		respondError(c, err, statusOverride{service.ErrBadAdminCode: http.StatusUnauthorized})
		return
	}
	c.JSON(http.StatusOK, model.AuthResponse{Token: token, User: user.Public()})
}

// ForgotPassword always answers with the same message so account existence does not leak
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resets.RequestReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": resetAck})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.resets.ConfirmReset(c.Request.Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		respondError(c, err, statusOverride{service.ErrUserNotFound: http.StatusNotFound})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c).Public())
}

// RegisterAuthRoutes registers auth routes. limit guards the login and password reset endpoints.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW, limit gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", limit, h.Login)
		authGroup.POST("/admin-login", limit, h.AdminLogin)
		authGroup.POST("/forgot-password", limit, h.ForgotPassword)
		authGroup.POST("/reset-password", limit, h.ResetPassword)
		authGroup.GET("/me", authMW, h.Me)
	}
}
