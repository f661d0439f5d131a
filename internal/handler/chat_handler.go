package handler

import (
	"net/http"

	"learnstudio/internal/model"
	"learnstudio/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler proxies tutoring conversations
type ChatHandler struct {
	chat service.ChatService
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(s service.ChatService) *ChatHandler {
	return &ChatHandler{chat: s}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.chat.Reply(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ChatResponse{Reply: reply})
}

// RegisterChatRoutes registers the chat route behind authMW
func (h *ChatHandler) RegisterChatRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/chat", authMW, h.Chat)
}
