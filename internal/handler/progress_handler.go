package handler

import (
	"net/http"

	"learnstudio/internal/middleware"
	"learnstudio/internal/model"
	"learnstudio/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler serves the signed-in user's curriculum progress
type ProgressHandler struct {
	progress service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(s service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: s}
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	progress, err := h.progress.GetProgress(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *ProgressHandler) CompleteTask(c *gin.Context) {
	var req model.CompleteTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	progress, err := h.progress.CompleteTask(c.Request.Context(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *ProgressHandler) CompleteDay(c *gin.Context) {
	var req model.CompleteDayRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.progress.CompleteDay(c.Request.Context(), middleware.CurrentUser(c).ID, req.DayNumber); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Day completed", "day_number": req.DayNumber})
}

// RegisterProgressRoutes registers progress routes behind authMW
func (h *ProgressHandler) RegisterProgressRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	progressGroup := rg.Group("/progress", authMW)
	{
		progressGroup.GET("", h.GetProgress)
		progressGroup.POST("/complete-task", h.CompleteTask)
		progressGroup.POST("/complete-day", h.CompleteDay)
	}
}
