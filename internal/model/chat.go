package model

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// MaxChatHistory is how many prior turns are forwarded to the provider
const MaxChatHistory = 10

// ChatMessage is one turn of a conversation
type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content"`
}

// ChatRequest is the payload of POST /chat
type ChatRequest struct {
	Message string        `json:"message" binding:"required"`
	History []ChatMessage `json:"history" binding:"omitempty,dive"`
}

// ChatResponse carries the assistant's reply
type ChatResponse struct {
	Reply string `json:"reply"`
}
