package handler

import (
	"net/http"
	"strconv"

	"learnstudio/internal/middleware"
	"learnstudio/internal/model"
	"learnstudio/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin dashboard
type AdminHandler struct {
	admin service.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(s service.AdminService) *AdminHandler {
	return &AdminHandler{admin: s}
}

var notFoundOnAdmin = statusOverride{service.ErrUserNotFound: http.StatusNotFound}

func (h *AdminHandler) ListInterns(c *gin.Context) {
	interns, err := h.admin.ListInterns(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, interns)
}

func (h *AdminHandler) UserProgress(c *gin.Context) {
	progress, err := h.admin.UserProgress(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err, notFoundOnAdmin)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *AdminHandler) OverrideDay(c *gin.Context) {
	day, err := strconv.Atoi(c.Param("day_number"))
	if err != nil {
		respondError(c, service.ErrInvalidDay)
		return
	}

	var req model.DayOverrideRequest
	if !bindJSON(c, &req) {
		return
	}

	progress, err := h.admin.OverrideDay(c.Request.Context(), middleware.CurrentUser(c), c.Param("user_id"), day, *req.IsCompleted)
	if err != nil {
		respondError(c, err, notFoundOnAdmin)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// RegisterAdminRoutes registers admin routes behind authMW and the admin role check
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	adminGroup := rg.Group("/admin", authMW, adminMW)
	{
		adminGroup.GET("/users", h.ListInterns)
		adminGroup.GET("/users/:user_id/progress", h.UserProgress)
		adminGroup.PUT("/users/:user_id/progress/:day_number", h.OverrideDay)
	}
}
