package api

import "time"

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationId *uint  `json:"conversation_id,omitempty"`
}

type ChatResponse struct {
	Response       string `json:"response"`
	ConversationId uint   `json:"conversation_id"`
}

type ConversationSummary struct {
	Id        uint      `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Preview   string    `json:"preview"`
}

type Message struct {
	Content   string    `json:"content"`
	Role      string    `json:"role"` // "user" or "assistant"
	Timestamp time.Time `json:"timestamp"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
